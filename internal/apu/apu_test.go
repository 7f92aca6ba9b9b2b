package apu

import "testing"

func TestFrameCounterIRQOnFourStepMode(t *testing.T) {
	a := New()
	a.Reset()
	a.writeFrameCounter(0x00) // 4-step, IRQ enabled
	for i := 0; i < 29830; i++ {
		a.stepFrameCounter()
	}
	if !a.GetFrameIRQ() {
		t.Fatalf("expected frame IRQ flag set after 29830 APU cycles in 4-step mode")
	}
}

func TestFrameCounterIRQSuppressedWhenDisabled(t *testing.T) {
	a := New()
	a.Reset()
	a.writeFrameCounter(0x40) // 4-step, IRQ disabled
	for i := 0; i < 29830; i++ {
		a.stepFrameCounter()
	}
	if a.GetFrameIRQ() {
		t.Fatalf("frame IRQ should stay clear when disabled via bit 6")
	}
}

func TestReadStatusClearsFrameIRQ(t *testing.T) {
	a := New()
	a.Reset()
	a.frameIRQFlag = true
	status := a.ReadStatus()
	if status&0x40 == 0 {
		t.Fatalf("status read should report the frame IRQ that was pending")
	}
	if a.GetFrameIRQ() {
		t.Fatalf("reading $4015 should clear the frame IRQ flag")
	}
}

func TestMixerZeroInputsProduceSilence(t *testing.T) {
	a := New()
	sample := a.mixChannels(0, 0, 0, 0, 0)
	want := float32(0)
	if sample != want {
		t.Fatalf("mixChannels(0,0,0,0,0) = %v, want %v (silence)", sample, want)
	}
}

func TestPulseTimerBelowEightIsSilent(t *testing.T) {
	a := New()
	a.Reset()
	a.pulse1.lengthCounter = 10
	a.pulse1.timer = 5
	a.pulse1.envelopeCounter = 15
	a.pulse1.sequencerPos = 1 // dutyTable[0][1] == 1, so only the timer<8 guard can mute
	if got := a.getPulseOutput(&a.pulse1); got != 0 {
		t.Fatalf("pulse timer < 8 should mute, got %d", got)
	}
}

func TestChannelEnableClearsLengthCounters(t *testing.T) {
	a := New()
	a.Reset()
	a.pulse1.lengthCounter = 20
	a.writeChannelEnable(0x00)
	if a.pulse1.lengthCounter != 0 {
		t.Fatalf("disabling pulse1 via $4015 should zero its length counter")
	}
}

func TestDMCReadsSampleFromWiredMemory(t *testing.T) {
	a := New()
	a.Reset()
	mem := map[uint16]uint8{0xC000: 0xAA}
	a.SetMemoryReader(func(addr uint16) uint8 { return mem[addr] })
	a.dmc.bytesRemaining = 1
	a.dmc.currentAddress = 0xC000
	a.dmc.sampleBufferEmpty = true
	a.dmc.timerCounter = 0
	a.dmc.rateIndex = 0
	a.stepDMCTimer(&a.dmc)
	if a.dmc.sampleBuffer != 0xAA {
		t.Fatalf("DMC sample buffer = %#x, want 0xAA fetched via wired memory reader", a.dmc.sampleBuffer)
	}
}
