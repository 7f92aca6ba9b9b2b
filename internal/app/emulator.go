// Package app provides emulator integration for the main application.
package app

import (
	"fmt"
	"time"

	"nesgo/internal/bus"
)

// Emulator drives the Bus one NTSC frame (29,781 CPU cycles) per Update
// call and tracks the timing an interactive frontend needs to pace itself.
type Emulator struct {
	bus    *bus.Bus
	config *Config

	cyclesPerFrame  uint64
	targetFrameTime time.Duration

	frameBuffer  []uint32
	audioSamples []float32

	isRunning     bool
	lastResetTime time.Time

	frameCount      uint64
	cycleCount      uint64
	emulationTime   time.Duration
	actualFrameTime time.Duration

	lastFrameTime    time.Time
	lastFPSTime      time.Time
	frameCountAtFPS  uint64
	currentFPS       float64
	averageFPS       float64
}

// NewEmulator creates a new emulator instance bound to bus and config.
func NewEmulator(bus *bus.Bus, config *Config) *Emulator {
	e := &Emulator{
		bus:             bus,
		config:          config,
		targetFrameTime: time.Second / 60,
		cyclesPerFrame:  29781,
		frameBuffer:     make([]uint32, 256*240),
		audioSamples:    make([]float32, 0, 1024),
	}
	e.Reset()
	return e
}

// Reset clears frame/cycle counters and output buffers without touching
// the bus; the bus has its own Reset for that.
func (e *Emulator) Reset() {
	e.lastResetTime = time.Now()
	e.frameCount = 0
	e.cycleCount = 0
	e.emulationTime = 0
	e.actualFrameTime = 0
	for i := range e.frameBuffer {
		e.frameBuffer[i] = 0
	}
	e.audioSamples = e.audioSamples[:0]
}

func (e *Emulator) Start() { e.isRunning = true }
func (e *Emulator) Stop()  { e.isRunning = false }

// Update runs exactly one frame of emulation (CPU instructions interleaved
// with PPU dots and APU cycles at their true ratio) and refreshes the
// video/audio output buffers.
func (e *Emulator) Update() error {
	if !e.isRunning {
		return nil
	}

	frameStart := time.Now()
	if err := e.runOneFrame(); err != nil {
		return err
	}
	e.actualFrameTime = time.Since(frameStart)
	e.updateFPS()
	return nil
}

func (e *Emulator) runOneFrame() error {
	emulationStart := time.Now()

	startCycles := e.bus.CycleCount()
	target := startCycles + e.cyclesPerFrame
	for e.bus.CycleCount() < target {
		e.bus.Step()
		if e.bus.CPU.Halted() {
			return fmt.Errorf("cpu halted: %v", e.bus.CPU.HaltError())
		}
	}
	e.frameCount++

	nesFrame := e.bus.FrameBuffer()
	copy(e.frameBuffer, nesFrame[:])

	if samples := e.bus.AudioSamples(); len(samples) > 0 {
		if cap(e.audioSamples) < len(samples) {
			e.audioSamples = make([]float32, len(samples))
		} else {
			e.audioSamples = e.audioSamples[:len(samples)]
		}
		copy(e.audioSamples, samples)
	}

	e.emulationTime = time.Since(emulationStart)
	e.cycleCount = e.bus.CycleCount()
	return nil
}

// StepInstruction executes a single CPU instruction, used by headless
// automation and tests that need finer granularity than a whole frame.
func (e *Emulator) StepInstruction() error {
	if e.bus == nil {
		return fmt.Errorf("bus not initialized")
	}
	e.bus.Step()
	e.cycleCount = e.bus.CycleCount()
	return nil
}

func (e *Emulator) updateFPS() {
	now := time.Now()
	if e.lastFPSTime.IsZero() {
		e.lastFPSTime = now
		e.frameCountAtFPS = e.frameCount
		e.lastFrameTime = now
		return
	}
	if now.Sub(e.lastFPSTime) >= time.Second {
		elapsed := now.Sub(e.lastFPSTime).Seconds()
		e.currentFPS = float64(e.frameCount-e.frameCountAtFPS) / elapsed
		if total := now.Sub(e.lastResetTime).Seconds(); total > 0 {
			e.averageFPS = float64(e.frameCount) / total
		}
		e.lastFPSTime = now
		e.frameCountAtFPS = e.frameCount
	}
	e.lastFrameTime = now
}

func (e *Emulator) GetFrameBuffer() []uint32    { return e.frameBuffer }
func (e *Emulator) GetAudioSamples() []float32  { return e.audioSamples }
func (e *Emulator) GetFrameCount() uint64       { return e.frameCount }
func (e *Emulator) GetCycleCount() uint64       { return e.cycleCount }
func (e *Emulator) GetEmulationTime() time.Duration  { return e.emulationTime }
func (e *Emulator) GetActualFrameTime() time.Duration { return e.actualFrameTime }
func (e *Emulator) GetTargetFrameTime() time.Duration { return e.targetFrameTime }
func (e *Emulator) GetFPS() float64              { return e.currentFPS }
func (e *Emulator) GetAverageFPS() float64       { return e.averageFPS }
func (e *Emulator) IsRunning() bool              { return e.isRunning }
func (e *Emulator) GetUptime() time.Duration     { return time.Since(e.lastResetTime) }

// GetEmulationSpeed reports emulation speed as a percentage of real time:
// 100% means one frame of NES time elapsed per wall-clock frame.
func (e *Emulator) GetEmulationSpeed() float64 {
	if e.actualFrameTime == 0 {
		return 0
	}
	return float64(e.targetFrameTime) / float64(e.actualFrameTime) * 100.0
}

// SetCyclesPerFrame overrides the NTSC default, used by tests that want a
// shorter or longer scheduling quantum.
func (e *Emulator) SetCyclesPerFrame(cycles uint64) { e.cyclesPerFrame = cycles }

func (e *Emulator) Cleanup() error {
	e.Stop()
	e.frameBuffer = nil
	e.audioSamples = nil
	return nil
}
