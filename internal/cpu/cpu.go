// Package cpu implements the Ricoh 2A03 CPU core: a 6502 derivative with
// decimal mode wired off.
package cpu

import "fmt"

// AddressingMode identifies how an opcode's operand is located.
type AddressingMode int

const (
	Implied AddressingMode = iota
	Accumulator
	Immediate
	ZeroPage
	ZeroPageX
	ZeroPageY
	Relative
	Absolute
	AbsoluteX
	AbsoluteY
	Indirect
	IndirectX // (zp,X)
	IndirectY // (zp),Y
)

const (
	stackBase   = 0x0100
	nmiVector   = 0xFFFA
	resetVector = 0xFFFC
	irqVector   = 0xFFFE
)

// IRQ source bits. Multiple collaborators (the APU frame sequencer, the
// DMC channel, a mapper) can assert IRQ independently; the line is a level
// that stays asserted until every source clears it.
const (
	IRQSourceFrameCounter uint8 = 1 << iota
	IRQSourceDMC
	IRQSourceMapper
)

// MemoryInterface is the sole channel the CPU uses to touch the outside
// world. In this emulator it is satisfied by the Bus, which is the
// mediator for PPU/APU/cartridge/controller access.
type MemoryInterface interface {
	Read(address uint16) uint8
	Write(address uint16, value uint8)
}

// CPU is the 6502-derivative core driving NES execution.
type CPU struct {
	A  uint8
	X  uint8
	Y  uint8
	SP uint8
	PC uint16

	// Status flags, from bit 7 to bit 0: N V - B D I Z C. Modeled as a
	// struct of booleans rather than a raw byte so each flag reads as an
	// intention-revealing name; Status/SetStatus below round-trip it through
	// the wire representation the stack and PHP/PLP use.
	C, Z, I, D, B, V, N bool

	memory MemoryInterface
	cycles uint64

	instructions [256]*instruction

	nmiLine     bool // current level of the PPU's NMI output
	nmiPending  bool
	irqLines    uint8

	// haltErr is set when an undecoded opcode is fetched. There is no
	// recovery path: the scheduler must observe this and tear down.
	haltErr error
}

// New creates a CPU wired to the given memory interface. Reset should be
// called once the memory interface's cartridge is attached.
func New(memory MemoryInterface) *CPU {
	c := &CPU{memory: memory, SP: 0xFD}
	c.buildInstructionTable()
	return c
}

// Reset performs the 6502 reset sequence: PC loads from the reset vector,
// SP drops by 3 (as if three bytes were pushed and discarded), and I is
// set. Flags otherwise keep their power-on values.
func (c *CPU) Reset() {
	c.SP -= 3
	c.I = true
	c.PC = c.read16(resetVector)
	c.cycles = 0
}

// SetPC forcibly sets the program counter; used by the nestest automation
// harness, which starts execution at 0xC000 rather than the reset vector.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

func (c *CPU) PCValue() uint16   { return c.PC }
func (c *CPU) Cycles() uint64    { return c.cycles }
func (c *CPU) Accumulator() uint8 { return c.A }
func (c *CPU) XReg() uint8        { return c.X }
func (c *CPU) YReg() uint8        { return c.Y }
func (c *CPU) StackPointer() uint8 { return c.SP }
func (c *CPU) HaltError() error   { return c.haltErr }
func (c *CPU) Halted() bool       { return c.haltErr != nil }

// SetNMI updates the level of the PPU's NMI output line. The CPU latches a
// pending NMI on the rising edge, as real hardware does.
func (c *CPU) SetNMI(level bool) {
	if level && !c.nmiLine {
		c.nmiPending = true
	}
	c.nmiLine = level
}

// SetIRQ asserts or clears one IRQ source. The CPU sees a pending IRQ
// whenever any source's bit is set.
func (c *CPU) SetIRQ(source uint8, assert bool) {
	if assert {
		c.irqLines |= source
	} else {
		c.irqLines &^= source
	}
}

func (c *CPU) irqPending() bool { return c.irqLines != 0 }

// Status packs the flags into the wire byte used by PHP/BRK (B=1) and by
// PLP/read-back, with bit 5 always set.
func (c *CPU) Status(breakFlag bool) uint8 {
	var s uint8
	if c.N {
		s |= 0x80
	}
	if c.V {
		s |= 0x40
	}
	s |= 0x20
	if breakFlag {
		s |= 0x10
	}
	if c.D {
		s |= 0x08
	}
	if c.I {
		s |= 0x04
	}
	if c.Z {
		s |= 0x02
	}
	if c.C {
		s |= 0x01
	}
	return s
}

// SetStatus unpacks a status byte (as pulled by PLP/RTI) into the flags.
// Bit 5 and bit 4 (the "unused" and break bits) are not stored as flags at
// all — the 2A03 has no physical latch for them — so SetStatus simply
// ignores those two bits on the way in.
func (c *CPU) SetStatus(s uint8) {
	c.N = s&0x80 != 0
	c.V = s&0x40 != 0
	c.D = s&0x08 != 0
	c.I = s&0x04 != 0
	c.Z = s&0x02 != 0
	c.C = s&0x01 != 0
}

func (c *CPU) setZN(v uint8) {
	c.Z = v == 0
	c.N = v&0x80 != 0
}

func (c *CPU) push(v uint8) {
	c.memory.Write(stackBase+uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.memory.Read(stackBase + uint16(c.SP))
}

func (c *CPU) push16(v uint16) {
	c.push(uint8(v >> 8))
	c.push(uint8(v))
}

func (c *CPU) pull16() uint16 {
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	return hi<<8 | lo
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.memory.Read(addr))
	hi := uint16(c.memory.Read(addr + 1))
	return hi<<8 | lo
}

// read16bug reproduces the indirect-JMP page-wrap bug: the high byte is
// fetched from (addr & 0xFF00) | ((addr+1) & 0x00FF), never crossing into
// the next page.
func (c *CPU) read16bug(addr uint16) uint16 {
	lo := uint16(c.memory.Read(addr))
	hiAddr := (addr & 0xFF00) | uint16(uint8(addr)+1)
	hi := uint16(c.memory.Read(hiAddr))
	return hi<<8 | lo
}

func pagesDiffer(a, b uint16) bool { return a&0xFF00 != b&0xFF00 }

// serviceInterrupt pushes PC and status and vectors to the given address,
// charging the fixed 7-cycle interrupt sequence.
func (c *CPU) serviceInterrupt(vector uint16, breakFlag bool) int {
	c.push16(c.PC)
	c.push(c.Status(breakFlag))
	c.I = true
	c.PC = c.read16(vector)
	c.cycles += 7
	return 7
}

// Step either services one pending interrupt or executes exactly one
// instruction, and returns the number of CPU cycles consumed.
func (c *CPU) Step() int {
	if c.haltErr != nil {
		return 0
	}

	if c.nmiPending {
		c.nmiPending = false
		return c.serviceInterrupt(nmiVector, false)
	}
	if c.irqPending() && !c.I {
		return c.serviceInterrupt(irqVector, false)
	}

	opcode := c.memory.Read(c.PC)
	inst := c.instructions[opcode]
	if inst == nil {
		c.haltErr = fmt.Errorf("illegal opcode $%02X at $%04X", opcode, c.PC)
		return 0
	}
	c.PC++

	addr, crossed := c.resolveAddress(inst.mode)
	extra := inst.fn(c, inst.mode, addr)

	total := int(inst.cycles) + extra
	if inst.pageCrossExtra && crossed {
		total++
	}
	c.cycles += uint64(total)
	return total
}
