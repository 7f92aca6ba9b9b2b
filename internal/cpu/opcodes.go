package cpu

// instruction is one row of the opcode decode table: a data-driven
// description of how to route a fetched byte rather than a 256-arm
// switch. This keeps the cycle-accuracy audit (every entry's `cycles` and
// `pageCrossExtra` against the canonical 6502 reference) a matter of
// reading a table, not tracing control flow.
type instruction struct {
	name           string
	mode           AddressingMode
	cycles         uint8
	pageCrossExtra bool // only read-type instructions on indexed/indirect-Y modes
	fn             func(c *CPU, mode AddressingMode, addr uint16) int
}

func (c *CPU) buildInstructionTable() {
	add := func(op uint8, name string, mode AddressingMode, cycles uint8, pageCrossExtra bool, fn func(c *CPU, mode AddressingMode, addr uint16) int) {
		c.instructions[op] = &instruction{name: name, mode: mode, cycles: cycles, pageCrossExtra: pageCrossExtra, fn: fn}
	}

	// Load/store
	add(0xA9, "LDA", Immediate, 2, false, opLDA)
	add(0xA5, "LDA", ZeroPage, 3, false, opLDA)
	add(0xB5, "LDA", ZeroPageX, 4, false, opLDA)
	add(0xAD, "LDA", Absolute, 4, false, opLDA)
	add(0xBD, "LDA", AbsoluteX, 4, true, opLDA)
	add(0xB9, "LDA", AbsoluteY, 4, true, opLDA)
	add(0xA1, "LDA", IndirectX, 6, false, opLDA)
	add(0xB1, "LDA", IndirectY, 5, true, opLDA)

	add(0xA2, "LDX", Immediate, 2, false, opLDX)
	add(0xA6, "LDX", ZeroPage, 3, false, opLDX)
	add(0xB6, "LDX", ZeroPageY, 4, false, opLDX)
	add(0xAE, "LDX", Absolute, 4, false, opLDX)
	add(0xBE, "LDX", AbsoluteY, 4, true, opLDX)

	add(0xA0, "LDY", Immediate, 2, false, opLDY)
	add(0xA4, "LDY", ZeroPage, 3, false, opLDY)
	add(0xB4, "LDY", ZeroPageX, 4, false, opLDY)
	add(0xAC, "LDY", Absolute, 4, false, opLDY)
	add(0xBC, "LDY", AbsoluteX, 4, true, opLDY)

	add(0x85, "STA", ZeroPage, 3, false, opSTA)
	add(0x95, "STA", ZeroPageX, 4, false, opSTA)
	add(0x8D, "STA", Absolute, 4, false, opSTA)
	add(0x9D, "STA", AbsoluteX, 5, false, opSTA)
	add(0x99, "STA", AbsoluteY, 5, false, opSTA)
	add(0x81, "STA", IndirectX, 6, false, opSTA)
	add(0x91, "STA", IndirectY, 6, false, opSTA)

	add(0x86, "STX", ZeroPage, 3, false, opSTX)
	add(0x96, "STX", ZeroPageY, 4, false, opSTX)
	add(0x8E, "STX", Absolute, 4, false, opSTX)

	add(0x84, "STY", ZeroPage, 3, false, opSTY)
	add(0x94, "STY", ZeroPageX, 4, false, opSTY)
	add(0x8C, "STY", Absolute, 4, false, opSTY)

	// Register transfers
	add(0xAA, "TAX", Implied, 2, false, opTAX)
	add(0xA8, "TAY", Implied, 2, false, opTAY)
	add(0xBA, "TSX", Implied, 2, false, opTSX)
	add(0x8A, "TXA", Implied, 2, false, opTXA)
	add(0x9A, "TXS", Implied, 2, false, opTXS)
	add(0x98, "TYA", Implied, 2, false, opTYA)

	// Stack
	add(0x48, "PHA", Implied, 3, false, opPHA)
	add(0x08, "PHP", Implied, 3, false, opPHP)
	add(0x68, "PLA", Implied, 4, false, opPLA)
	add(0x28, "PLP", Implied, 4, false, opPLP)

	// Logical
	add(0x29, "AND", Immediate, 2, false, opAND)
	add(0x25, "AND", ZeroPage, 3, false, opAND)
	add(0x35, "AND", ZeroPageX, 4, false, opAND)
	add(0x2D, "AND", Absolute, 4, false, opAND)
	add(0x3D, "AND", AbsoluteX, 4, true, opAND)
	add(0x39, "AND", AbsoluteY, 4, true, opAND)
	add(0x21, "AND", IndirectX, 6, false, opAND)
	add(0x31, "AND", IndirectY, 5, true, opAND)

	add(0x49, "EOR", Immediate, 2, false, opEOR)
	add(0x45, "EOR", ZeroPage, 3, false, opEOR)
	add(0x55, "EOR", ZeroPageX, 4, false, opEOR)
	add(0x4D, "EOR", Absolute, 4, false, opEOR)
	add(0x5D, "EOR", AbsoluteX, 4, true, opEOR)
	add(0x59, "EOR", AbsoluteY, 4, true, opEOR)
	add(0x41, "EOR", IndirectX, 6, false, opEOR)
	add(0x51, "EOR", IndirectY, 5, true, opEOR)

	add(0x09, "ORA", Immediate, 2, false, opORA)
	add(0x05, "ORA", ZeroPage, 3, false, opORA)
	add(0x15, "ORA", ZeroPageX, 4, false, opORA)
	add(0x0D, "ORA", Absolute, 4, false, opORA)
	add(0x1D, "ORA", AbsoluteX, 4, true, opORA)
	add(0x19, "ORA", AbsoluteY, 4, true, opORA)
	add(0x01, "ORA", IndirectX, 6, false, opORA)
	add(0x11, "ORA", IndirectY, 5, true, opORA)

	add(0x24, "BIT", ZeroPage, 3, false, opBIT)
	add(0x2C, "BIT", Absolute, 4, false, opBIT)

	// Arithmetic
	add(0x69, "ADC", Immediate, 2, false, opADC)
	add(0x65, "ADC", ZeroPage, 3, false, opADC)
	add(0x75, "ADC", ZeroPageX, 4, false, opADC)
	add(0x6D, "ADC", Absolute, 4, false, opADC)
	add(0x7D, "ADC", AbsoluteX, 4, true, opADC)
	add(0x79, "ADC", AbsoluteY, 4, true, opADC)
	add(0x61, "ADC", IndirectX, 6, false, opADC)
	add(0x71, "ADC", IndirectY, 5, true, opADC)

	add(0xE9, "SBC", Immediate, 2, false, opSBC)
	add(0xE5, "SBC", ZeroPage, 3, false, opSBC)
	add(0xF5, "SBC", ZeroPageX, 4, false, opSBC)
	add(0xED, "SBC", Absolute, 4, false, opSBC)
	add(0xFD, "SBC", AbsoluteX, 4, true, opSBC)
	add(0xF9, "SBC", AbsoluteY, 4, true, opSBC)
	add(0xE1, "SBC", IndirectX, 6, false, opSBC)
	add(0xF1, "SBC", IndirectY, 5, true, opSBC)

	// Shifts
	add(0x0A, "ASL", Accumulator, 2, false, opASL)
	add(0x06, "ASL", ZeroPage, 5, false, opASL)
	add(0x16, "ASL", ZeroPageX, 6, false, opASL)
	add(0x0E, "ASL", Absolute, 6, false, opASL)
	add(0x1E, "ASL", AbsoluteX, 7, false, opASL)

	add(0x4A, "LSR", Accumulator, 2, false, opLSR)
	add(0x46, "LSR", ZeroPage, 5, false, opLSR)
	add(0x56, "LSR", ZeroPageX, 6, false, opLSR)
	add(0x4E, "LSR", Absolute, 6, false, opLSR)
	add(0x5E, "LSR", AbsoluteX, 7, false, opLSR)

	add(0x2A, "ROL", Accumulator, 2, false, opROL)
	add(0x26, "ROL", ZeroPage, 5, false, opROL)
	add(0x36, "ROL", ZeroPageX, 6, false, opROL)
	add(0x2E, "ROL", Absolute, 6, false, opROL)
	add(0x3E, "ROL", AbsoluteX, 7, false, opROL)

	add(0x6A, "ROR", Accumulator, 2, false, opROR)
	add(0x66, "ROR", ZeroPage, 5, false, opROR)
	add(0x76, "ROR", ZeroPageX, 6, false, opROR)
	add(0x6E, "ROR", Absolute, 6, false, opROR)
	add(0x7E, "ROR", AbsoluteX, 7, false, opROR)

	// Increment/decrement
	add(0xE6, "INC", ZeroPage, 5, false, opINC)
	add(0xF6, "INC", ZeroPageX, 6, false, opINC)
	add(0xEE, "INC", Absolute, 6, false, opINC)
	add(0xFE, "INC", AbsoluteX, 7, false, opINC)
	add(0xE8, "INX", Implied, 2, false, opINX)
	add(0xC8, "INY", Implied, 2, false, opINY)

	add(0xC6, "DEC", ZeroPage, 5, false, opDEC)
	add(0xD6, "DEC", ZeroPageX, 6, false, opDEC)
	add(0xCE, "DEC", Absolute, 6, false, opDEC)
	add(0xDE, "DEC", AbsoluteX, 7, false, opDEC)
	add(0xCA, "DEX", Implied, 2, false, opDEX)
	add(0x88, "DEY", Implied, 2, false, opDEY)

	// Compare
	add(0xC9, "CMP", Immediate, 2, false, opCMP)
	add(0xC5, "CMP", ZeroPage, 3, false, opCMP)
	add(0xD5, "CMP", ZeroPageX, 4, false, opCMP)
	add(0xCD, "CMP", Absolute, 4, false, opCMP)
	add(0xDD, "CMP", AbsoluteX, 4, true, opCMP)
	add(0xD9, "CMP", AbsoluteY, 4, true, opCMP)
	add(0xC1, "CMP", IndirectX, 6, false, opCMP)
	add(0xD1, "CMP", IndirectY, 5, true, opCMP)

	add(0xE0, "CPX", Immediate, 2, false, opCPX)
	add(0xE4, "CPX", ZeroPage, 3, false, opCPX)
	add(0xEC, "CPX", Absolute, 4, false, opCPX)

	add(0xC0, "CPY", Immediate, 2, false, opCPY)
	add(0xC4, "CPY", ZeroPage, 3, false, opCPY)
	add(0xCC, "CPY", Absolute, 4, false, opCPY)

	// Branches
	add(0x90, "BCC", Relative, 2, false, opBranch(func(c *CPU) bool { return !c.C }))
	add(0xB0, "BCS", Relative, 2, false, opBranch(func(c *CPU) bool { return c.C }))
	add(0xF0, "BEQ", Relative, 2, false, opBranch(func(c *CPU) bool { return c.Z }))
	add(0xD0, "BNE", Relative, 2, false, opBranch(func(c *CPU) bool { return !c.Z }))
	add(0x30, "BMI", Relative, 2, false, opBranch(func(c *CPU) bool { return c.N }))
	add(0x10, "BPL", Relative, 2, false, opBranch(func(c *CPU) bool { return !c.N }))
	add(0x50, "BVC", Relative, 2, false, opBranch(func(c *CPU) bool { return !c.V }))
	add(0x70, "BVS", Relative, 2, false, opBranch(func(c *CPU) bool { return c.V }))

	// Jumps
	add(0x4C, "JMP", Absolute, 3, false, opJMP)
	add(0x6C, "JMP", Indirect, 5, false, opJMP)
	add(0x20, "JSR", Absolute, 6, false, opJSR)
	add(0x60, "RTS", Implied, 6, false, opRTS)
	add(0x40, "RTI", Implied, 6, false, opRTI)

	// Flags
	add(0x18, "CLC", Implied, 2, false, opCLC)
	add(0x38, "SEC", Implied, 2, false, opSEC)
	add(0xD8, "CLD", Implied, 2, false, opCLD)
	add(0xF8, "SED", Implied, 2, false, opSED)
	add(0x58, "CLI", Implied, 2, false, opCLI)
	add(0x78, "SEI", Implied, 2, false, opSEI)
	add(0xB8, "CLV", Implied, 2, false, opCLV)

	add(0x00, "BRK", Implied, 7, false, opBRK)
	add(0xEA, "NOP", Implied, 2, false, opNOP)

	// Common unofficial NOPs emitted by widely-used test ROMs.
	for _, op := range []uint8{0x1A, 0x3A, 0x5A, 0x7A, 0xDA, 0xFA} {
		add(op, "*NOP", Implied, 2, false, opNOP)
	}
	for _, op := range []uint8{0x04, 0x44, 0x64} {
		add(op, "*NOP", ZeroPage, 3, false, opNOP)
	}
	for _, op := range []uint8{0x14, 0x34, 0x54, 0x74, 0xD4, 0xF4} {
		add(op, "*NOP", ZeroPageX, 4, false, opNOP)
	}
	for _, op := range []uint8{0x80, 0x82, 0x89, 0xC2, 0xE2} {
		add(op, "*NOP", Immediate, 2, false, opNOP)
	}
	add(0x0C, "*NOP", Absolute, 4, false, opNOP)
	for _, op := range []uint8{0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC} {
		add(op, "*NOP", AbsoluteX, 4, true, opNOP)
	}
}

func opLDA(c *CPU, mode AddressingMode, addr uint16) int {
	c.A = c.memory.Read(addr)
	c.setZN(c.A)
	return 0
}

func opLDX(c *CPU, mode AddressingMode, addr uint16) int {
	c.X = c.memory.Read(addr)
	c.setZN(c.X)
	return 0
}

func opLDY(c *CPU, mode AddressingMode, addr uint16) int {
	c.Y = c.memory.Read(addr)
	c.setZN(c.Y)
	return 0
}

func opSTA(c *CPU, mode AddressingMode, addr uint16) int { c.memory.Write(addr, c.A); return 0 }
func opSTX(c *CPU, mode AddressingMode, addr uint16) int { c.memory.Write(addr, c.X); return 0 }
func opSTY(c *CPU, mode AddressingMode, addr uint16) int { c.memory.Write(addr, c.Y); return 0 }

func opTAX(c *CPU, mode AddressingMode, addr uint16) int { c.X = c.A; c.setZN(c.X); return 0 }
func opTAY(c *CPU, mode AddressingMode, addr uint16) int { c.Y = c.A; c.setZN(c.Y); return 0 }
func opTSX(c *CPU, mode AddressingMode, addr uint16) int { c.X = c.SP; c.setZN(c.X); return 0 }
func opTXA(c *CPU, mode AddressingMode, addr uint16) int { c.A = c.X; c.setZN(c.A); return 0 }
func opTXS(c *CPU, mode AddressingMode, addr uint16) int { c.SP = c.X; return 0 }
func opTYA(c *CPU, mode AddressingMode, addr uint16) int { c.A = c.Y; c.setZN(c.A); return 0 }

func opPHA(c *CPU, mode AddressingMode, addr uint16) int { c.push(c.A); return 0 }
func opPHP(c *CPU, mode AddressingMode, addr uint16) int { c.push(c.Status(true)); return 0 }
func opPLA(c *CPU, mode AddressingMode, addr uint16) int { c.A = c.pull(); c.setZN(c.A); return 0 }
func opPLP(c *CPU, mode AddressingMode, addr uint16) int { c.SetStatus(c.pull()); return 0 }

func opAND(c *CPU, mode AddressingMode, addr uint16) int {
	c.A &= c.memory.Read(addr)
	c.setZN(c.A)
	return 0
}

func opEOR(c *CPU, mode AddressingMode, addr uint16) int {
	c.A ^= c.memory.Read(addr)
	c.setZN(c.A)
	return 0
}

func opORA(c *CPU, mode AddressingMode, addr uint16) int {
	c.A |= c.memory.Read(addr)
	c.setZN(c.A)
	return 0
}

func opBIT(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.memory.Read(addr)
	c.Z = c.A&v == 0
	c.N = v&0x80 != 0
	c.V = v&0x40 != 0
	return 0
}

// adc implements the shared ADC path: carry out of the unsigned 9-bit sum,
// overflow when both inputs agree in sign but the result disagrees.
func (c *CPU) adc(m uint8) {
	a := c.A
	carry := uint16(0)
	if c.C {
		carry = 1
	}
	sum := uint16(a) + uint16(m) + carry
	c.C = sum > 0xFF
	result := uint8(sum)
	c.V = (a^result)&(m^result)&0x80 != 0
	c.A = result
	c.setZN(c.A)
}

func opADC(c *CPU, mode AddressingMode, addr uint16) int {
	c.adc(c.memory.Read(addr))
	return 0
}

// sbc is defined as ADC of the one's complement of the operand, the
// canonical 6502 identity.
func opSBC(c *CPU, mode AddressingMode, addr uint16) int {
	c.adc(^c.memory.Read(addr))
	return 0
}

func (c *CPU) loadOperand(mode AddressingMode, addr uint16) uint8 {
	if mode == Accumulator {
		return c.A
	}
	return c.memory.Read(addr)
}

func (c *CPU) storeOperand(mode AddressingMode, addr uint16, v uint8) {
	if mode == Accumulator {
		c.A = v
		return
	}
	c.memory.Write(addr, v)
}

func opASL(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.loadOperand(mode, addr)
	c.C = v&0x80 != 0
	v <<= 1
	c.setZN(v)
	c.storeOperand(mode, addr, v)
	return 0
}

func opLSR(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.loadOperand(mode, addr)
	c.C = v&0x01 != 0
	v >>= 1
	c.setZN(v)
	c.storeOperand(mode, addr, v)
	return 0
}

func opROL(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.loadOperand(mode, addr)
	oldCarry := c.C
	c.C = v&0x80 != 0
	v <<= 1
	if oldCarry {
		v |= 0x01
	}
	c.setZN(v)
	c.storeOperand(mode, addr, v)
	return 0
}

func opROR(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.loadOperand(mode, addr)
	oldCarry := c.C
	c.C = v&0x01 != 0
	v >>= 1
	if oldCarry {
		v |= 0x80
	}
	c.setZN(v)
	c.storeOperand(mode, addr, v)
	return 0
}

func opINC(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.memory.Read(addr) + 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func opINX(c *CPU, mode AddressingMode, addr uint16) int { c.X++; c.setZN(c.X); return 0 }
func opINY(c *CPU, mode AddressingMode, addr uint16) int { c.Y++; c.setZN(c.Y); return 0 }

func opDEC(c *CPU, mode AddressingMode, addr uint16) int {
	v := c.memory.Read(addr) - 1
	c.memory.Write(addr, v)
	c.setZN(v)
	return 0
}

func opDEX(c *CPU, mode AddressingMode, addr uint16) int { c.X--; c.setZN(c.X); return 0 }
func opDEY(c *CPU, mode AddressingMode, addr uint16) int { c.Y--; c.setZN(c.Y); return 0 }

func (c *CPU) compare(reg, m uint8) {
	c.C = reg >= m
	c.setZN(reg - m)
}

func opCMP(c *CPU, mode AddressingMode, addr uint16) int { c.compare(c.A, c.memory.Read(addr)); return 0 }
func opCPX(c *CPU, mode AddressingMode, addr uint16) int { c.compare(c.X, c.memory.Read(addr)); return 0 }
func opCPY(c *CPU, mode AddressingMode, addr uint16) int { c.compare(c.Y, c.memory.Read(addr)); return 0 }

// opBranch returns an exec function implementing the shared branch timing
// rule: 2 cycles baseline, +1 if taken, +1 more if the taken branch
// crosses a page.
func opBranch(taken func(c *CPU) bool) func(c *CPU, mode AddressingMode, addr uint16) int {
	return func(c *CPU, mode AddressingMode, addr uint16) int {
		if !taken(c) {
			return 0
		}
		crossed := pagesDiffer(c.PC, addr)
		c.PC = addr
		if crossed {
			return 2
		}
		return 1
	}
}

func opJMP(c *CPU, mode AddressingMode, addr uint16) int { c.PC = addr; return 0 }

func opJSR(c *CPU, mode AddressingMode, addr uint16) int {
	c.push16(c.PC - 1)
	c.PC = addr
	return 0
}

func opRTS(c *CPU, mode AddressingMode, addr uint16) int {
	c.PC = c.pull16() + 1
	return 0
}

func opRTI(c *CPU, mode AddressingMode, addr uint16) int {
	c.SetStatus(c.pull())
	c.PC = c.pull16()
	return 0
}

func opCLC(c *CPU, mode AddressingMode, addr uint16) int { c.C = false; return 0 }
func opSEC(c *CPU, mode AddressingMode, addr uint16) int { c.C = true; return 0 }
func opCLD(c *CPU, mode AddressingMode, addr uint16) int { c.D = false; return 0 }
func opSED(c *CPU, mode AddressingMode, addr uint16) int { c.D = true; return 0 }
func opCLI(c *CPU, mode AddressingMode, addr uint16) int { c.I = false; return 0 }
func opSEI(c *CPU, mode AddressingMode, addr uint16) int { c.I = true; return 0 }
func opCLV(c *CPU, mode AddressingMode, addr uint16) int { c.V = false; return 0 }

func opBRK(c *CPU, mode AddressingMode, addr uint16) int {
	c.PC++ // BRK's operand byte is a padding byte, skipped, then PC+2 total is pushed
	c.push16(c.PC)
	c.push(c.Status(true))
	c.I = true
	c.PC = c.read16(irqVector)
	return 0
}

func opNOP(c *CPU, mode AddressingMode, addr uint16) int { return 0 }
