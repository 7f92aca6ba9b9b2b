package cartridge

import (
	"errors"
	"testing"
)

func TestLoadFromBytesRejectsBadMagic(t *testing.T) {
	data := make([]byte, 16+16384)
	copy(data[0:4], "BAD\x1A")
	if _, err := LoadFromBytes(data); err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestLoadFromBytesRejectsZeroPRG(t *testing.T) {
	cfg := NewROMConfig()
	cfg.PRGSize = 0
	if _, err := cfg.Build(); err == nil {
		t.Fatal("expected error building a zero-size PRG ROM")
	}

	data := make([]byte, 16+16384)
	copy(data[0:4], "NES\x1A") // data[4] (PRG banks) left at 0
	if _, err := LoadFromBytes(data); err == nil {
		t.Fatal("expected LoadFromBytes to reject a header with zero PRG banks")
	}
}

func TestLoadFromBytesRejectsUnsupportedMapper(t *testing.T) {
	data := make([]byte, 16+16384)
	copy(data[0:4], "NES\x1A")
	data[4] = 1
	data[6] = 0x10 // mapper low nibble = 1
	_, err := LoadFromBytes(data)
	var unsupported *UnsupportedMapperError
	if err == nil {
		t.Fatal("expected unsupported mapper error")
	}
	if !errors.As(err, &unsupported) {
		t.Fatalf("expected *UnsupportedMapperError, got %T: %v", err, err)
	}
	if unsupported.MapperID != 1 {
		t.Fatalf("expected mapper ID 1, got %d", unsupported.MapperID)
	}
}

func TestNROM128MirrorsPRGBank(t *testing.T) {
	cfg := NewROMConfig()
	cfg.Instructions = []uint8{0xA9, 0x42} // LDA #$42
	cart, err := cfg.BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge: %v", err)
	}
	if got := cart.ReadPRG(0x8000); got != 0xA9 {
		t.Fatalf("ReadPRG(0x8000) = %#x, want 0xA9", got)
	}
	if got := cart.ReadPRG(0xC000); got != 0xA9 {
		t.Fatalf("ReadPRG(0xC000) = %#x, want mirrored 0xA9", got)
	}
}

func TestSRAMReadWrite(t *testing.T) {
	cfg := NewROMConfig()
	cart, err := cfg.BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge: %v", err)
	}
	cart.WritePRG(0x6000, 0xAA)
	cart.WritePRG(0x7FFF, 0xBB)
	if got := cart.ReadPRG(0x6000); got != 0xAA {
		t.Fatalf("SRAM[0x6000] = %#x, want 0xAA", got)
	}
	if got := cart.ReadPRG(0x7FFF); got != 0xBB {
		t.Fatalf("SRAM[0x7FFF] = %#x, want 0xBB", got)
	}
}

func TestCHRRAMWritable(t *testing.T) {
	cfg := NewROMConfig()
	cfg.CHRSize = 0
	cart, err := cfg.BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge: %v", err)
	}
	if !cart.HasCHRRAM() {
		t.Fatal("expected CHR RAM when CHRSize is 0")
	}
	cart.WriteCHR(0x0010, 0x77)
	if got := cart.ReadCHR(0x0010); got != 0x77 {
		t.Fatalf("CHR RAM[0x0010] = %#x, want 0x77", got)
	}
}

func TestCHRROMNotWritable(t *testing.T) {
	cfg := NewROMConfig()
	cfg.CHRSize = 1
	cart, err := cfg.BuildCartridge()
	if err != nil {
		t.Fatalf("BuildCartridge: %v", err)
	}
	cart.WriteCHR(0x0010, 0x77)
	if got := cart.ReadCHR(0x0010); got != 0 {
		t.Fatalf("CHR ROM[0x0010] = %#x, want unchanged 0", got)
	}
}
