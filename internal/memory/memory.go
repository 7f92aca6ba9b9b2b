// Package memory implements the CPU- and PPU-side address decoders for the
// NES memory map.
package memory

// PPURegisters is the CPU-facing register interface the PPU exposes at
// 0x2000-0x2007 (mirrored every 8 bytes through 0x3FFF).
type PPURegisters interface {
	ReadRegister(address uint16) uint8
	WriteRegister(address uint16, value uint8)
}

// APURegisters is the CPU-facing register interface the APU exposes at
// 0x4000-0x4013, 0x4015 (status) and 0x4017 (frame counter write).
type APURegisters interface {
	WriteRegister(address uint16, value uint8)
	ReadStatus() uint8
}

// Input is the CPU-facing controller port interface at 0x4016/0x4017.
type Input interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// Cartridge is the CPU- and PPU-facing cartridge interface: PRG space for
// the CPU, CHR space for the PPU.
type Cartridge interface {
	ReadPRG(address uint16) uint8
	WritePRG(address uint16, value uint8)
	ReadCHR(address uint16) uint8
	WriteCHR(address uint16, value uint8)
}

// CPUMemory implements the 16-bit CPU address space: 2KiB internal RAM
// mirrored every 0x0800, PPU/APU register windows, controller ports, and
// the cartridge's PRG window, with an open-bus latch for unmapped reads.
type CPUMemory struct {
	ram [0x0800]uint8

	ppu   PPURegisters
	apu   APURegisters
	input Input
	cart  Cartridge

	dmaCallback func(page uint8)

	// openBus holds the last byte placed on the data bus: the value
	// returned for genuinely unmapped addresses (cartridge expansion ROM
	// on an NROM cartridge has none).
	openBus uint8
}

// New creates a CPU memory decoder. The cartridge may be nil at
// construction time and set later via SetCartridge once a ROM is loaded.
func New(ppu PPURegisters, apu APURegisters, cart Cartridge) *CPUMemory {
	m := &CPUMemory{ppu: ppu, apu: apu, cart: cart}
	m.initializePowerUpRAM()
	return m
}

// initializePowerUpRAM seeds RAM with the semi-random pattern real NES
// hardware leaves behind at power-on, rather than all zeros; several test
// ROMs rely on RAM not being pre-zeroed.
func (m *CPUMemory) initializePowerUpRAM() {
	for i := range m.ram {
		if i&0x04 != 0 {
			m.ram[i] = 0xFF
		}
	}
}

func (m *CPUMemory) SetCartridge(cart Cartridge)          { m.cart = cart }
func (m *CPUMemory) SetInput(input Input)                 { m.input = input }
func (m *CPUMemory) SetDMACallback(cb func(page uint8))   { m.dmaCallback = cb }

// Read decodes a CPU-addressed read and updates the open-bus latch.
func (m *CPUMemory) Read(address uint16) uint8 {
	var value uint8
	switch {
	case address < 0x2000:
		value = m.ram[address&0x07FF]
	case address < 0x4000:
		value = m.ppu.ReadRegister(0x2000 + address&0x0007)
	case address == 0x4015:
		value = m.apu.ReadStatus()
	case address == 0x4016:
		if m.input != nil {
			value = m.input.Read(0x4016)
		}
	case address == 0x4017:
		if m.input != nil {
			value = m.input.Read(0x4017)
		}
	case address < 0x4020:
		value = m.openBus
	case address < 0x6000:
		value = m.openBus // cartridge expansion; NROM has none
	case address < 0x8000:
		if m.cart != nil {
			value = m.cart.ReadPRG(address)
		}
	default:
		if m.cart != nil {
			value = m.cart.ReadPRG(address)
		}
	}
	m.openBus = value
	return value
}

// Write decodes a CPU-addressed write and updates the open-bus latch.
func (m *CPUMemory) Write(address uint16, value uint8) {
	m.openBus = value
	switch {
	case address < 0x2000:
		m.ram[address&0x07FF] = value
	case address < 0x4000:
		m.ppu.WriteRegister(0x2000+address&0x0007, value)
	case address == 0x4014:
		if m.dmaCallback != nil {
			m.dmaCallback(value)
		}
	case address == 0x4016:
		if m.input != nil {
			m.input.Write(0x4016, value)
		}
	case address == 0x4017:
		m.apu.WriteRegister(0x4017, value)
		if m.input != nil {
			m.input.Write(0x4017, value)
		}
	case address < 0x4020:
		m.apu.WriteRegister(address, value)
	case address < 0x6000:
		// cartridge expansion; NROM ignores writes here
	case address < 0x8000:
		if m.cart != nil {
			m.cart.WritePRG(address, value)
		}
	default:
		if m.cart != nil {
			m.cart.WritePRG(address, value)
		}
	}
}

// OpenBus returns the last byte placed on the CPU data bus.
func (m *CPUMemory) OpenBus() uint8 { return m.openBus }
