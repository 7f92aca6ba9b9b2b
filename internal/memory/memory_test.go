package memory

import "testing"

type stubPPU struct {
	reads  []uint16
	writes map[uint16]uint8
}

func newStubPPU() *stubPPU { return &stubPPU{writes: map[uint16]uint8{}} }

func (s *stubPPU) ReadRegister(address uint16) uint8 {
	s.reads = append(s.reads, address)
	return uint8(address)
}

func (s *stubPPU) WriteRegister(address uint16, value uint8) {
	s.writes[address] = value
}

type stubAPU struct {
	status  uint8
	writes  map[uint16]uint8
}

func newStubAPU() *stubAPU { return &stubAPU{writes: map[uint16]uint8{}} }

func (s *stubAPU) WriteRegister(address uint16, value uint8) { s.writes[address] = value }
func (s *stubAPU) ReadStatus() uint8                          { return s.status }

func TestRAMMirroring(t *testing.T) {
	mem := New(newStubPPU(), newStubAPU(), nil)
	mem.Write(0x0000, 0x42)
	for _, mirror := range []uint16{0x0000, 0x0800, 0x1000, 0x1800} {
		if got := mem.Read(mirror); got != 0x42 {
			t.Fatalf("Read(%#x) = %#x, want 0x42 (RAM mirror)", mirror, got)
		}
	}
}

func TestPPURegisterMirroring(t *testing.T) {
	ppu := newStubPPU()
	mem := New(ppu, newStubAPU(), nil)
	mem.Read(0x2001)
	mem.Read(0x3FF9) // 0x3FF9 mod 8 + 0x2000 = 0x2001
	if len(ppu.reads) != 2 || ppu.reads[0] != 0x2001 || ppu.reads[1] != 0x2001 {
		t.Fatalf("expected both reads decoded to 0x2001, got %v", ppu.reads)
	}
}

func TestOAMDMATrigger(t *testing.T) {
	var triggered uint8
	called := false
	mem := New(newStubPPU(), newStubAPU(), nil)
	mem.SetDMACallback(func(page uint8) {
		triggered = page
		called = true
	})
	mem.Write(0x4014, 0x07)
	if !called || triggered != 0x07 {
		t.Fatalf("expected DMA callback with page 0x07, got called=%v page=%#x", called, triggered)
	}
}

func TestAPUStatusRead(t *testing.T) {
	apu := newStubAPU()
	apu.status = 0x1F
	mem := New(newStubPPU(), apu, nil)
	if got := mem.Read(0x4015); got != 0x1F {
		t.Fatalf("Read(0x4015) = %#x, want 0x1F", got)
	}
}

func TestPaletteEntryZeroMirroring(t *testing.T) {
	ppuMem := NewPPUMemory(nil, 0)
	ppuMem.Write(0x3F00, 0x11)
	if got := ppuMem.Read(0x3F10); got != 0x11 {
		t.Fatalf("Read(0x3F10) = %#x, want mirror of 0x3F00 (0x11)", got)
	}
	ppuMem.Write(0x3F0C, 0x22)
	if got := ppuMem.Read(0x3F1C); got != 0x22 {
		t.Fatalf("Read(0x3F1C) = %#x, want mirror of 0x3F0C (0x22)", got)
	}
}

func TestPaletteMirrorRange(t *testing.T) {
	ppuMem := NewPPUMemory(nil, 0)
	ppuMem.Write(0x3F05, 0x33)
	if got := ppuMem.Read(0x3F25); got != 0x33 {
		t.Fatalf("Read(0x3F25) = %#x, want mirror of 0x3F05 (0x33)", got)
	}
}

func TestNametableVerticalMirroring(t *testing.T) {
	ppuMem := NewPPUMemory(nil, 1) // MirrorVertical
	ppuMem.Write(0x2000, 0xAA)
	if got := ppuMem.Read(0x2800); got != 0xAA {
		t.Fatalf("vertical mirror: Read(0x2800) = %#x, want 0xAA", got)
	}
	ppuMem.Write(0x2400, 0xBB)
	if got := ppuMem.Read(0x2C00); got != 0xBB {
		t.Fatalf("vertical mirror: Read(0x2C00) = %#x, want 0xBB", got)
	}
}

func TestNametableHorizontalMirroring(t *testing.T) {
	ppuMem := NewPPUMemory(nil, 0) // MirrorHorizontal
	ppuMem.Write(0x2000, 0xCC)
	if got := ppuMem.Read(0x2400); got != 0xCC {
		t.Fatalf("horizontal mirror: Read(0x2400) = %#x, want 0xCC", got)
	}
	ppuMem.Write(0x2800, 0xDD)
	if got := ppuMem.Read(0x2C00); got != 0xDD {
		t.Fatalf("horizontal mirror: Read(0x2C00) = %#x, want 0xDD", got)
	}
}

func TestNametableMirrorAt0x3000(t *testing.T) {
	ppuMem := NewPPUMemory(nil, 1)
	ppuMem.Write(0x2000, 0xEE)
	if got := ppuMem.Read(0x3000); got != 0xEE {
		t.Fatalf("Read(0x3000) = %#x, want mirror of 0x2000 (0xEE)", got)
	}
}
