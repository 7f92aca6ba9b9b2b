package cpu

// resolveAddress advances PC past the operand bytes for the given mode and
// returns the effective address together with whether a page boundary was
// crossed while forming it (relevant only to the indexed/indirect-indexed
// read penalties on the indexed/indirect-indexed modes). Implied and Accumulator modes
// return a zero address; callers for those modes never use it.
func (c *CPU) resolveAddress(mode AddressingMode) (uint16, bool) {
	switch mode {
	case Implied, Accumulator:
		return 0, false

	case Immediate:
		addr := c.PC
		c.PC++
		return addr, false

	case ZeroPage:
		addr := uint16(c.memory.Read(c.PC))
		c.PC++
		return addr, false

	case ZeroPageX:
		base := c.memory.Read(c.PC)
		c.PC++
		return uint16(base + c.X), false

	case ZeroPageY:
		base := c.memory.Read(c.PC)
		c.PC++
		return uint16(base + c.Y), false

	case Relative:
		offset := int8(c.memory.Read(c.PC))
		c.PC++
		target := uint16(int32(c.PC) + int32(offset))
		return target, pagesDiffer(c.PC, target)

	case Absolute:
		addr := c.read16(c.PC)
		c.PC += 2
		return addr, false

	case AbsoluteX:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.X)
		return addr, pagesDiffer(base, addr)

	case AbsoluteY:
		base := c.read16(c.PC)
		c.PC += 2
		addr := base + uint16(c.Y)
		return addr, pagesDiffer(base, addr)

	case Indirect:
		ptr := c.read16(c.PC)
		c.PC += 2
		return c.read16bug(ptr), false

	case IndirectX:
		base := c.memory.Read(c.PC)
		c.PC++
		ptr := base + c.X
		lo := uint16(c.memory.Read(uint16(ptr)))
		hi := uint16(c.memory.Read(uint16(ptr + 1)))
		return hi<<8 | lo, false

	case IndirectY:
		base := c.memory.Read(c.PC)
		c.PC++
		lo := uint16(c.memory.Read(uint16(base)))
		hi := uint16(c.memory.Read(uint16(base + 1)))
		ptr := hi<<8 | lo
		addr := ptr + uint16(c.Y)
		return addr, pagesDiffer(ptr, addr)

	default:
		return 0, false
	}
}
