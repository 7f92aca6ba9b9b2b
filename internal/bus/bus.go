// Package bus implements the system bus mediating between the CPU, PPU,
// APU, cartridge, and controllers, and drives their shared clock.
package bus

import (
	"nesgo/internal/apu"
	"nesgo/internal/cartridge"
	"nesgo/internal/cpu"
	"nesgo/internal/input"
	"nesgo/internal/memory"
	"nesgo/internal/ppu"
)

// Bus owns every component and is the sole driver of the master clock:
// one CPU instruction, then 3n PPU dots and n APU cycles for its cycle
// count n, then interrupt lines are resampled before the next instruction.
type Bus struct {
	CPU    *cpu.CPU
	PPU    *ppu.PPU
	APU    *apu.APU
	Memory *memory.CPUMemory
	Input  *input.InputState
	Cart   *cartridge.Cartridge

	cpuCycles  uint64
	frameCount uint64

	dmaSuspendCycles uint64
	dmaInProgress    bool
}

// New creates a bus with no cartridge loaded; LoadCartridge must be
// called before Step produces meaningful execution.
func New() *Bus {
	b := &Bus{
		PPU:   ppu.New(),
		APU:   apu.New(),
		Input: input.NewInputState(),
	}
	b.Memory = memory.New(b.PPU, b.APU, nil)
	b.Memory.SetInput(b.Input)
	b.Memory.SetDMACallback(b.triggerOAMDMA)
	b.APU.SetMemoryReader(b.Memory.Read)
	b.CPU = cpu.New(b.Memory)
	return b
}

// LoadCartridge wires a cartridge into memory and the PPU's nametable
// mirroring, then resets the CPU from the new reset vector.
func (b *Bus) LoadCartridge(cart *cartridge.Cartridge) {
	b.Cart = cart
	b.Memory.SetCartridge(cart)
	b.PPU.SetMemory(memory.NewPPUMemory(cart, cart.MirrorMode()))
	b.Reset()
}

func (b *Bus) Reset() {
	b.CPU.Reset()
	b.PPU.Reset()
	b.APU.Reset()
	b.Input.Reset()
	b.cpuCycles = 0
	b.frameCount = 0
	b.dmaSuspendCycles = 0
	b.dmaInProgress = false
}

// Step advances the system by one CPU instruction (or, while an OAM DMA
// transfer is stalling the CPU, by one stalled cycle), then steps the PPU
// and APU in lockstep and resamples the interrupt lines. It returns the
// number of CPU cycles the step consumed.
func (b *Bus) Step() uint64 {
	var cycles uint64
	if b.dmaSuspendCycles > 0 {
		cycles = 1
		b.dmaSuspendCycles--
		if b.dmaSuspendCycles == 0 {
			b.dmaInProgress = false
		}
	} else {
		cycles = uint64(b.CPU.Step())
		if cycles == 0 {
			cycles = 1 // CPU halted on an illegal opcode; keep the clock moving
		}
	}

	for i := uint64(0); i < cycles*3; i++ {
		b.PPU.Step()
		if b.PPU.GetScanline() == -1 && b.PPU.GetCycle() == 0 {
			b.frameCount = b.PPU.GetFrameCount()
		}
	}
	for i := uint64(0); i < cycles; i++ {
		b.APU.Step()
	}
	b.cpuCycles += cycles

	b.CPU.SetNMI(b.PPU.NMILine())
	b.CPU.SetIRQ(cpu.IRQSourceFrameCounter, b.APU.GetFrameIRQ())
	b.CPU.SetIRQ(cpu.IRQSourceDMC, b.APU.GetDMCIRQ())

	return cycles
}

// triggerOAMDMA stalls the CPU for 513 (or 514, on an odd CPU cycle) and
// copies 256 bytes from sourcePage<<8 into OAM.
func (b *Bus) triggerOAMDMA(sourcePage uint8) {
	if b.dmaInProgress {
		return
	}
	b.dmaInProgress = true
	b.dmaSuspendCycles = 513
	if b.cpuCycles%2 == 1 {
		b.dmaSuspendCycles = 514
	}

	base := uint16(sourcePage) << 8
	for i := 0; i < 256; i++ {
		b.PPU.WriteOAM(uint8(i), b.Memory.Read(base+uint16(i)))
	}
}

// RunFrame runs until one more frame has completed.
func (b *Bus) RunFrame() {
	target := b.frameCount + 1
	for b.frameCount < target {
		b.Step()
		if b.CPU.Halted() {
			return
		}
	}
}

func (b *Bus) FrameBuffer() [256 * 240]uint32 { return b.PPU.GetFrameBuffer() }
func (b *Bus) AudioSamples() []float32         { return b.APU.GetSamples() }
func (b *Bus) CycleCount() uint64              { return b.cpuCycles }
func (b *Bus) FrameCount() uint64              { return b.frameCount }
func (b *Bus) IsDMAInProgress() bool           { return b.dmaInProgress }

func (b *Bus) SetControllerButtons(controller int, buttons [8]bool) {
	switch controller {
	case 0:
		b.Input.SetButtons1(buttons)
	case 1:
		b.Input.SetButtons2(buttons)
	}
}
