package memory

import "nesgo/internal/cartridge"

// PPUMemory implements the PPU's 14-bit internal address space: pattern
// tables (delegated to the cartridge's CHR space), four nametables mirrored
// down to two physical 1KiB banks per the cartridge's mirroring mode, and
// 32 bytes of palette RAM with entry-0 mirroring across subpalettes.
type PPUMemory struct {
	nametables [0x0800]uint8 // two physical 1KiB nametables
	palette    [32]uint8

	cart   Cartridge
	mirror cartridge.MirrorMode
}

// NewPPUMemory creates a PPU memory decoder bound to a cartridge. The
// cartridge may be nil until a ROM is loaded.
func NewPPUMemory(cart Cartridge, mirror cartridge.MirrorMode) *PPUMemory {
	return &PPUMemory{cart: cart, mirror: mirror}
}

func (m *PPUMemory) SetCartridge(cart Cartridge, mirror cartridge.MirrorMode) {
	m.cart = cart
	m.mirror = mirror
}

// Read decodes a 14-bit PPU address.
func (m *PPUMemory) Read(address uint16) uint8 {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if m.cart != nil {
			return m.cart.ReadCHR(address)
		}
		return 0
	case address < 0x3F00:
		return m.nametables[m.nametableIndex(address)]
	default:
		return m.palette[m.paletteIndex(address)]
	}
}

// Write decodes a 14-bit PPU address.
func (m *PPUMemory) Write(address uint16, value uint8) {
	address &= 0x3FFF
	switch {
	case address < 0x2000:
		if m.cart != nil {
			m.cart.WriteCHR(address, value)
		}
	case address < 0x3F00:
		m.nametables[m.nametableIndex(address)] = value
	default:
		m.palette[m.paletteIndex(address)] = value
	}
}

// nametableIndex maps a CPU-visible 0x2000-0x3EFF nametable address (after
// the 0x3000-0x3EFF mirror of 0x2000-0x2EFF) down into the two physical
// 1KiB banks according to the cartridge's mirroring mode.
func (m *PPUMemory) nametableIndex(address uint16) uint16 {
	offset := (address - 0x2000) & 0x0FFF
	table := offset / 0x0400 // 0..3
	cell := offset % 0x0400

	var bank uint16
	switch m.mirror {
	case cartridge.MirrorVertical:
		bank = table % 2
	case cartridge.MirrorHorizontal:
		bank = table / 2
	case cartridge.MirrorSingleScreen0:
		bank = 0
	case cartridge.MirrorSingleScreen1:
		bank = 1
	case cartridge.MirrorFourScreen:
		// Four-screen needs 4KiB of nametable RAM; this emulator only
		// targets mapper 0 cartridges, none of which wire four-screen, so
		// fall back to two physical banks rather than growing the array.
		bank = table % 2
	default:
		bank = table % 2
	}
	return bank*0x0400 + cell
}

// paletteIndex applies the 0x3F20-0x3FFF mirror of 0x3F00-0x3F1F and the
// entry-0 mirroring of each 4-byte subpalette (0x3F10/14/18/1C alias
// 0x3F00/04/08/0C).
func (m *PPUMemory) paletteIndex(address uint16) uint16 {
	idx := (address - 0x3F00) & 0x1F
	if idx&0x13 == 0x10 {
		idx &= 0x0F
	}
	return idx
}
