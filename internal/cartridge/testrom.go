package cartridge

import "fmt"

// ROMConfig describes a synthetic iNES image. It exists so CPU, PPU and Bus
// tests elsewhere in this module can build minimal ROMs without hand-writing
// iNES headers.
type ROMConfig struct {
	PRGSize      uint8 // 16KiB units
	CHRSize      uint8 // 8KiB units (0 = CHR RAM)
	Mirroring    MirrorMode
	HasBattery   bool
	Instructions []uint8
	ResetVector  uint16
	NMIVector    uint16
	IRQVector    uint16
}

// NewROMConfig returns a config with NROM-128 defaults: one 16KiB PRG bank,
// one 8KiB CHR bank, all vectors pointed at the start of PRG ROM.
func NewROMConfig() ROMConfig {
	return ROMConfig{
		PRGSize:     1,
		CHRSize:     1,
		ResetVector: 0x8000,
		NMIVector:   0x8000,
		IRQVector:   0x8000,
	}
}

// Build renders the config into an iNES byte image.
func (c ROMConfig) Build() ([]byte, error) {
	if c.PRGSize == 0 {
		return nil, fmt.Errorf("PRG size cannot be zero")
	}

	header := make([]byte, 16)
	copy(header[0:4], "NES\x1A")
	header[4] = c.PRGSize
	header[5] = c.CHRSize
	flags6 := uint8(0)
	if c.Mirroring == MirrorVertical {
		flags6 |= 0x01
	}
	if c.HasBattery {
		flags6 |= 0x02
	}
	if c.Mirroring == MirrorFourScreen {
		flags6 |= 0x08
	}
	header[6] = flags6

	prgSize := int(c.PRGSize) * 16384
	prg := make([]byte, prgSize)
	if len(c.Instructions) > prgSize {
		return nil, fmt.Errorf("instructions too large for PRG ROM: %d > %d", len(c.Instructions), prgSize)
	}
	copy(prg, c.Instructions)

	vecOff := prgSize - 6
	prg[vecOff] = uint8(c.NMIVector)
	prg[vecOff+1] = uint8(c.NMIVector >> 8)
	prg[vecOff+2] = uint8(c.ResetVector)
	prg[vecOff+3] = uint8(c.ResetVector >> 8)
	prg[vecOff+4] = uint8(c.IRQVector)
	prg[vecOff+5] = uint8(c.IRQVector >> 8)

	out := append(header, prg...)
	if c.CHRSize > 0 {
		out = append(out, make([]byte, int(c.CHRSize)*8192)...)
	}
	return out, nil
}

// BuildCartridge renders and loads the config in one step.
func (c ROMConfig) BuildCartridge() (*Cartridge, error) {
	data, err := c.Build()
	if err != nil {
		return nil, err
	}
	return LoadFromBytes(data)
}
