package apu

import (
	"testing"

	"github.com/bdwalton/nesgo/dma"
)

func TestPulseLengthCounterLoadedOnTimerHighWrite(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(Status, StatusPulse1)
	a.WriteRegister(Pulse1TimerHigh, 0x08) // length index 1 -> 254
	if a.pulse1.lengthCounter != 254 {
		t.Errorf("length counter = %d, want 254", a.pulse1.lengthCounter)
	}
}

func TestDisablingChannelClearsLengthCounter(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(Status, StatusPulse1)
	a.WriteRegister(Pulse1TimerHigh, 0x08)
	a.WriteRegister(Status, 0)
	if a.pulse1.lengthCounter != 0 {
		t.Errorf("length counter = %d, want 0 after disabling the channel", a.pulse1.lengthCounter)
	}
}

func TestStatusReadReportsActiveChannelsAndClearsFrameIRQ(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(Status, StatusPulse1|StatusTriangle)
	a.WriteRegister(Pulse1TimerHigh, 0x08)
	a.WriteRegister(TriangleTimerHi, 0x08)
	a.frameIRQFlag = true

	v := a.ReadStatus()
	if v&StatusPulse1 == 0 {
		t.Errorf("status should report pulse1 active")
	}
	if v&StatusTriangle == 0 {
		t.Errorf("status should report triangle active")
	}
	if v&StatusFrameIRQ == 0 {
		t.Errorf("status should report the frame IRQ that was pending")
	}
	if a.frameIRQFlag {
		t.Errorf("reading status should clear the frame IRQ flag")
	}
}

func TestFrameSequencer4StepFiresIRQAtEndOfSequence(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	for i := 0; i < 29830; i++ {
		a.Step()
	}
	if !a.frameIRQFlag {
		t.Fatal("frame IRQ should be set at the end of a 4-step sequence")
	}
	if !a.IRQAsserted() {
		t.Errorf("IRQAsserted should reflect the pending frame IRQ")
	}
}

func TestFrameSequencer5StepNeverFiresIRQ(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(FrameCounter, 0x80) // 5-step mode
	for i := 0; i < 40000; i++ {
		a.Step()
	}
	if a.frameIRQFlag {
		t.Errorf("5-step mode must never assert the frame IRQ")
	}
}

func TestWritingFrameCounterWithIRQInhibitClearsFlag(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.frameIRQFlag = true
	a.WriteRegister(FrameCounter, 0x40) // inhibit bit set
	if a.frameIRQFlag {
		t.Errorf("setting the IRQ-inhibit bit should clear a pending frame IRQ")
	}
}

func TestTriangleSilentBelowMinimumTimer(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(Status, StatusTriangle)
	a.triangle.lengthCounter = 10
	a.triangle.linearCounter = 10
	if got := a.triangle.output(); got != 0 {
		t.Errorf("triangle output = %d, want 0 with a timer period below 2", got)
	}
	a.triangle.timer = 2
	// sequencerPos starts at 0 -> triangleTable[0] == 15, non-zero
	if got := a.triangle.output(); got != 15 {
		t.Errorf("triangle output = %d, want 15 at reset sequencer position", got)
	}
}

func TestNoiseShiftRegisterNeverGoesToZero(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.noise.writePeriod(0x00)
	for i := 0; i < 5000; i++ {
		a.noise.stepTimer()
		if a.noise.shiftRegister == 0 {
			t.Fatal("LFSR reached the illegal all-zero state")
		}
	}
}

func TestDMCRequestsDMAWhenBufferEmpty(t *testing.T) {
	var d dma.Controller
	a := New(&d)
	a.WriteRegister(DMCSampleAddr, 0x00) // 0xC000
	a.WriteRegister(DMCSampleLength, 0x00)
	a.WriteRegister(Status, StatusDMC)

	for i := 0; i < int(dmcRateTable[0])+1; i++ {
		a.dmc.stepTimer()
	}
	if !d.Pending() {
		t.Fatal("DMC should have activated a DMA fetch once its buffer ran dry")
	}
}
