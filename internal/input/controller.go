// Package input implements the NES's 8-button controller shift registers
// and their $4016/$4017 port wiring.
package input

// Button identifies one of the eight buttons on a standard NES pad.
type Button uint8

const (
	ButtonA Button = 1 << iota
	ButtonB
	ButtonSelect
	ButtonStart
	ButtonUp
	ButtonDown
	ButtonLeft
	ButtonRight
)

// Controller models one controller's button latch and output shift
// register. Strobing $4016 high continuously reloads the register from
// live button state; strobing it low latches the current state and the
// register then shifts one bit out per read.
type Controller struct {
	buttons       uint8
	shiftRegister uint8
	strobe        bool
}

func New() *Controller { return &Controller{} }

func (c *Controller) SetButton(button Button, pressed bool) {
	if pressed {
		c.buttons |= uint8(button)
	} else {
		c.buttons &^= uint8(button)
	}
}

// SetButtons replaces all eight button states at once, in NES order: A, B,
// Select, Start, Up, Down, Left, Right.
func (c *Controller) SetButtons(buttons [8]bool) {
	c.buttons = 0
	order := [8]Button{ButtonA, ButtonB, ButtonSelect, ButtonStart, ButtonUp, ButtonDown, ButtonLeft, ButtonRight}
	for i, pressed := range buttons {
		if pressed {
			c.buttons |= uint8(order[i])
		}
	}
}

func (c *Controller) IsPressed(button Button) bool { return c.buttons&uint8(button) != 0 }

// Write latches $4016's strobe bit. While strobe is high the shift
// register continuously reloads from live button state; the falling edge
// freezes it for the read sequence that follows.
func (c *Controller) Write(value uint8) {
	c.strobe = value&1 != 0
	if c.strobe {
		c.shiftRegister = c.buttons
	}
}

// Read shifts one bit out of the register. Past the 8th read the line
// reads back 1, matching real hardware's open-bus-like behavior for a
// standard controller.
func (c *Controller) Read() uint8 {
	if c.strobe {
		c.shiftRegister = c.buttons
	}
	bit := c.shiftRegister & 1
	c.shiftRegister = c.shiftRegister>>1 | 0x80
	return bit
}

func (c *Controller) Reset() {
	c.buttons = 0
	c.shiftRegister = 0
	c.strobe = false
}

// InputState wires both controller ports into the CPU's $4016/$4017
// addresses. Writes to $4016 strobe both controllers simultaneously, as
// on real hardware; each controller's shift register is otherwise
// independent.
type InputState struct {
	Controller1 *Controller
	Controller2 *Controller
}

func NewInputState() *InputState {
	return &InputState{Controller1: New(), Controller2: New()}
}

func (is *InputState) Reset() {
	is.Controller1.Reset()
	is.Controller2.Reset()
}

func (is *InputState) SetButtons1(buttons [8]bool) { is.Controller1.SetButtons(buttons) }
func (is *InputState) SetButtons2(buttons [8]bool) { is.Controller2.SetButtons(buttons) }

// Read serves $4016 (controller 1) and $4017 (controller 2). Bit 6 of the
// $4017 read is always set, the open-bus artifact real NES hardware shows
// on that port.
func (is *InputState) Read(address uint16) uint8 {
	switch address {
	case 0x4016:
		return is.Controller1.Read()
	case 0x4017:
		return is.Controller2.Read() | 0x40
	default:
		return 0
	}
}

// Write strobes both controller ports from $4016. $4017 writes go to the
// APU frame counter, not here; the bus routes that address separately.
func (is *InputState) Write(address uint16, value uint8) {
	if address == 0x4016 {
		is.Controller1.Write(value)
		is.Controller2.Write(value)
	}
}
