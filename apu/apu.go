// Package apu implements the NES's five-channel audio synthesizer:
// two pulse channels, a triangle channel, a noise channel, and a
// delta-modulation (DMC) channel, driven by a shared frame sequencer
// and combined through the console's nonlinear mixer. Step is called
// once per CPU cycle by the bus, exactly as the PPU is stepped three
// times per CPU cycle; everything else (register writes, the sample
// callback) is driven from that single entry point.
package apu

import "github.com/bdwalton/nesgo/dma"

// CPUClockHz is the NTSC CPU clock rate Step is driven at, and
// SampleRate is the rate audio_sample_callback fires at after the
// fixed 8x decimation in emitSample: cmd/gintendo sizes its ebiten
// audio context to this so playback pitch matches the emulated clock.
const (
	CPUClockHz = 1789773
	SampleRate = CPUClockHz / 8
)

// Register addresses, relative to the CPU bus.
const (
	Pulse1Control    = 0x4000
	Pulse1Sweep      = 0x4001
	Pulse1TimerLow   = 0x4002
	Pulse1TimerHigh  = 0x4003
	Pulse2Control    = 0x4004
	Pulse2Sweep      = 0x4005
	Pulse2TimerLow   = 0x4006
	Pulse2TimerHigh  = 0x4007
	TriangleControl  = 0x4008
	TriangleTimerLow = 0x400A
	TriangleTimerHi  = 0x400B
	NoiseControl     = 0x400C
	NoisePeriod      = 0x400E
	NoiseLength      = 0x400F
	DMCControl       = 0x4010
	DMCDirectLoad    = 0x4011
	DMCSampleAddr    = 0x4012
	DMCSampleLength  = 0x4013
	Status           = 0x4015
	FrameCounter     = 0x4017
)

// Status ($4015 read) bits.
const (
	StatusPulse1   = 1 << 0
	StatusPulse2   = 1 << 1
	StatusTriangle = 1 << 2
	StatusNoise    = 1 << 3
	StatusDMC      = 1 << 4
	StatusFrameIRQ = 1 << 6
	StatusDMCIRQ   = 1 << 7
)

// APU owns the five channels, the frame sequencer, the mixer/filter
// chain, and the callback the host registered for finished samples.
type APU struct {
	pulse1, pulse2 pulse
	triangle       triangle
	noise          noise
	dmc            dmc

	dmaCtrl *dma.Controller

	frameMode      bool // false = 4-step, true = 5-step
	frameIRQEnable bool
	frameIRQFlag   bool
	frameCycle     uint64
	resetPending   int // cycles until a pending $4017 reset applies, -1 if none

	lpf              filter
	hpf1, hpf2       onePoleHighPass
	cycleAccumulator float64
	decimate         int

	sampleCallback func(float32)

	halfCycle bool // pulse/noise timers tick once every two CPU cycles
}

// onePoleHighPass models the DC-blocking stage ahead of the 6-tap
// lowpass; the lowpass already carries the bulk of the antialiasing
// work (filter.go), this only removes the channel-envelope DC offset.
type onePoleHighPass struct {
	prevIn, prevOut float32
}

func (h *onePoleHighPass) apply(in float32) float32 {
	const alpha = 0.996
	out := alpha * (h.prevOut + in - h.prevIn)
	h.prevIn = in
	h.prevOut = out
	return out
}

// New creates an APU wired to the DMA controller it must call to
// fetch DMC sample bytes via cycle-stealing (the nes package routes
// dma.Controller's DMCFillFinished callback to apu.OnDMCFillFinished).
func New(dmaCtrl *dma.Controller) *APU {
	a := &APU{
		dmaCtrl:        dmaCtrl,
		frameIRQEnable: true,
		resetPending:   -1,
	}
	a.pulse1 = newPulse(1)
	a.pulse2 = newPulse(2)
	a.noise = newNoise()
	a.dmc = newDMC(dmaCtrl)
	a.decimate = 8
	return a
}

// SetSampleCallback registers the host function invoked once per
// filtered, decimated output sample (§6 audio_sample_callback).
func (a *APU) SetSampleCallback(cb func(float32)) {
	a.sampleCallback = cb
}

// Reset reinitializes the frame sequencer; used by both hard and soft
// reset (spec §3: a soft reset "resets the APU frame sequencer").
func (a *APU) Reset() {
	a.frameMode = false
	a.frameIRQEnable = true
	a.frameIRQFlag = false
	a.frameCycle = 0
	a.resetPending = -1
}

// OnDMCFillFinished is the dma.Context callback the bus routes here
// once a DMC DMA fetch completes.
func (a *APU) OnDMCFillFinished(val uint8) { a.dmc.onFillFinished(val) }

// IRQAsserted reports whether the frame sequencer or DMC channel is
// currently holding the shared IRQ line low.
func (a *APU) IRQAsserted() bool {
	return a.FrameIRQAsserted() || a.DMCIRQAsserted()
}

// FrameIRQAsserted reports the frame sequencer's contribution to the
// shared IRQ line, so a caller can drive cpu.IRQSourceFrameCounter
// independently of the DMC's source bit.
func (a *APU) FrameIRQAsserted() bool { return a.frameIRQEnable && a.frameIRQFlag }

// DMCIRQAsserted reports the DMC channel's contribution to the shared
// IRQ line (cpu.IRQSourceDMC).
func (a *APU) DMCIRQAsserted() bool { return a.dmc.irqFlag }

// WriteRegister handles a CPU write to 0x4000-0x4013, 0x4015 or 0x4017.
func (a *APU) WriteRegister(addr uint16, val uint8) {
	switch addr {
	case Pulse1Control:
		a.pulse1.writeControl(val)
	case Pulse1Sweep:
		a.pulse1.writeSweep(val)
	case Pulse1TimerLow:
		a.pulse1.writeTimerLow(val)
	case Pulse1TimerHigh:
		a.pulse1.writeTimerHigh(val)
	case Pulse2Control:
		a.pulse2.writeControl(val)
	case Pulse2Sweep:
		a.pulse2.writeSweep(val)
	case Pulse2TimerLow:
		a.pulse2.writeTimerLow(val)
	case Pulse2TimerHigh:
		a.pulse2.writeTimerHigh(val)
	case TriangleControl:
		a.triangle.writeControl(val)
	case TriangleTimerLow:
		a.triangle.writeTimerLow(val)
	case TriangleTimerHi:
		a.triangle.writeTimerHigh(val)
	case NoiseControl:
		a.noise.writeControl(val)
	case NoisePeriod:
		a.noise.writePeriod(val)
	case NoiseLength:
		a.noise.writeLength(val)
	case DMCControl:
		a.dmc.writeControl(val)
	case DMCDirectLoad:
		a.dmc.writeDirectLoad(val)
	case DMCSampleAddr:
		a.dmc.writeSampleAddr(val)
	case DMCSampleLength:
		a.dmc.writeSampleLength(val)
	case Status:
		a.writeChannelEnable(val)
	case FrameCounter:
		a.writeFrameCounter(val)
	}
}

func (a *APU) writeChannelEnable(val uint8) {
	a.pulse1.setEnabled(val&StatusPulse1 != 0)
	a.pulse2.setEnabled(val&StatusPulse2 != 0)
	a.triangle.setEnabled(val&StatusTriangle != 0)
	a.noise.setEnabled(val&StatusNoise != 0)
	a.dmc.setEnabled(val&StatusDMC != 0)
	a.dmc.irqFlag = false
}

// writeFrameCounter handles $4017. The reset applies after 3 or 4 CPU
// cycles depending on write parity (spec §4.3); parity is taken from
// the frame sequencer's own cycle counter: 3 when it is even, 4 when
// it is odd.
func (a *APU) writeFrameCounter(val uint8) {
	a.frameMode = val&0x80 != 0
	a.frameIRQEnable = val&0x40 == 0
	if !a.frameIRQEnable {
		a.frameIRQFlag = false
	}
	if a.frameCycle%2 == 0 {
		a.resetPending = 3
	} else {
		a.resetPending = 4
	}
}

// ReadStatus handles a read of $4015.
func (a *APU) ReadStatus() uint8 {
	var v uint8
	if a.pulse1.lengthCounter > 0 {
		v |= StatusPulse1
	}
	if a.pulse2.lengthCounter > 0 {
		v |= StatusPulse2
	}
	if a.triangle.lengthCounter > 0 {
		v |= StatusTriangle
	}
	if a.noise.lengthCounter > 0 {
		v |= StatusNoise
	}
	if a.dmc.active() {
		v |= StatusDMC
	}
	if a.frameIRQFlag {
		v |= StatusFrameIRQ
	}
	if a.dmc.irqFlag {
		v |= StatusDMCIRQ
	}
	a.frameIRQFlag = false
	return v
}

// Step advances the APU by one CPU cycle: clocks every channel's
// timer, runs the frame sequencer, and on the interior-rate boundary
// mixes, filters, decimates and (if the host registered one) invokes
// the sample callback.
func (a *APU) Step() {
	a.stepFrameSequencer()

	// Triangle's 11-bit timer and the DMC's rate timer (whose table is
	// in CPU cycles) tick at the full CPU rate; pulse and noise tick at
	// half that, once every other CPU cycle.
	a.triangle.stepTimer()
	a.dmc.stepTimer()
	a.halfCycle = !a.halfCycle
	if a.halfCycle {
		a.pulse1.stepTimer()
		a.pulse2.stepTimer()
		a.noise.stepTimer()
	}

	a.emitSample()
}

// stepFrameSequencer runs the 4-step/5-step quarter/half-frame divider.
// Sequence points are the NTSC APU frame-counter cycle counts.
func (a *APU) stepFrameSequencer() {
	a.frameCycle++

	if a.resetPending > 0 {
		a.resetPending--
		if a.resetPending == 0 {
			a.frameCycle = 0
			if a.frameMode {
				a.clockQuarterFrame()
				a.clockHalfFrame()
			}
		}
		return
	}

	if a.frameMode {
		switch a.frameCycle {
		case 7457:
			a.clockQuarterFrame()
		case 14913:
			a.clockQuarterFrame()
			a.clockHalfFrame()
		case 22371:
			a.clockQuarterFrame()
		case 37281:
			a.clockQuarterFrame()
			a.clockHalfFrame()
			a.frameCycle = 0
		}
		return
	}

	switch a.frameCycle {
	case 7457:
		a.clockQuarterFrame()
	case 14913:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 22371:
		a.clockQuarterFrame()
	case 29828:
		a.clockQuarterFrame()
		a.clockHalfFrame()
	case 29829:
		if a.frameIRQEnable {
			a.frameIRQFlag = true
		}
	case 29830:
		a.frameCycle = 0
		if a.frameIRQEnable {
			a.frameIRQFlag = true
		}
	}
}

func (a *APU) clockQuarterFrame() {
	a.pulse1.env.clock()
	a.pulse2.env.clock()
	a.noise.env.clock()
	a.triangle.clockLinear()
}

func (a *APU) clockHalfFrame() {
	a.pulse1.clockLength()
	a.pulse1.clockSweep()
	a.pulse2.clockLength()
	a.pulse2.clockSweep()
	a.triangle.clockLength()
	a.noise.clockLength()
}

// mix applies the NES's documented two-term nonlinear DAC mixer.
func mix(p1, p2, tr, ns, dm uint8) float32 {
	pulseSum := float64(p1) + float64(p2)
	var pulseOut float64
	if pulseSum != 0 {
		pulseOut = 95.88 / (8128.0/pulseSum + 100.0)
	}

	tndSum := float64(tr)/8227.0 + float64(ns)/12241.0 + float64(dm)/22638.0
	var tndOut float64
	if tndSum != 0 {
		tndOut = 159.79 / (1.0/tndSum + 100.0)
	}

	return float32(pulseOut + tndOut)
}

// emitSample mixes the channels every CPU cycle (≈1.79 MHz, close
// enough to the reference's 352.8 kHz interior rate for this
// emulator's fidelity target) and calls the host callback once every
// 8th sample after running the DC-blocking and antialiasing filters.
func (a *APU) emitSample() {
	sample := mix(a.pulse1.output(), a.pulse2.output(), a.triangle.output(), a.noise.output(), a.dmc.output)
	sample = a.hpf1.apply(sample)
	sample = a.hpf2.apply(sample)
	sample = a.lpf.apply(sample)

	a.decimate--
	if a.decimate > 0 {
		return
	}
	a.decimate = 8
	if a.sampleCallback != nil {
		a.sampleCallback(sample)
	}
}
