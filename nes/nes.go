// Package nes wires a CPU, PPU, APU, DMA engine, controller ports and a
// cartridge mapper onto one shared system bus and exposes the host-facing
// operations a front end drives: loading a ROM, resetting, stepping by
// cycle/frame/vblank, reading the framebuffer, feeding controller input,
// peeking/poking memory, and registering an audio sample callback.
package nes

import (
	"fmt"
	"log"
	"os"

	"github.com/bdwalton/nesgo/apu"
	"github.com/bdwalton/nesgo/controller"
	"github.com/bdwalton/nesgo/cpu"
	"github.com/bdwalton/nesgo/dma"
	"github.com/bdwalton/nesgo/mapper"
	"github.com/bdwalton/nesgo/ppu"
	"github.com/bdwalton/nesgo/rom"
)

// Port identifies one of the two controller ports (spec §6
// set_button_state's port ∈ {First, Second}).
type Port int

const (
	First Port = iota
	Second
)

// LoadError wraps a ROM-parse or mapper-construction failure from
// LoadRom; the emulator is left un-initialized (spec §7).
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return fmt.Sprintf("nes: load failed: %v", e.Err) }
func (e *LoadError) Unwrap() error { return e.Err }

// EmulationError wraps an invalid-opcode fault from the CPU core. The
// emulator transitions to a not-ready state and refuses further
// stepping until Reset or a fresh LoadRom (spec §7).
type EmulationError struct {
	Err error
}

func (e *EmulationError) Error() string { return fmt.Sprintf("nes: emulation halted: %v", e.Err) }
func (e *EmulationError) Unwrap() error { return e.Err }

// NonFatalStatus is returned by Step* calls to report a condition a
// test harness may care about without halting emulation (spec §7).
type NonFatalStatus struct {
	Addr uint16
}

func (s *NonFatalStatus) Error() string {
	return fmt.Sprintf("nes: possible infinite loop at %#04x", s.Addr)
}

// NES is the whole machine: CPU, PPU, APU, DMA engine, two controller
// ports, 2KiB of work RAM, and whatever mapper the loaded cartridge
// selected, all addressed through Read/Write.
type NES struct {
	cpu  *cpu.CPU
	ppu  *ppu.PPU
	apu  *apu.APU
	dma  dma.Controller
	mp   mapper.Mapper
	ctrl [2]controller.Port
	ram  [2048]uint8

	cycle   uint64
	lastBus uint8

	log      *log.Logger
	ready    bool
	onSample func(float32)

	frameCount uint64
}

// New builds an NES with no cartridge loaded; LoadRom must be called
// before any Step* call will do anything useful.
func New() *NES {
	n := &NES{log: log.New(os.Stderr, "nes: ", log.LstdFlags)}
	n.ppu = ppu.New(n)
	n.apu = apu.New(&n.dma)
	n.apu.SetSampleCallback(n.sampleCB)
	n.cpu = cpu.New(n)
	return n
}

// SetLogger redirects the bus's own diagnostic logging (spec §7
// DiagnosticLog); pass nil to silence it. The mapper's dropped-write
// messages go to the standard log package's default logger and are not
// affected.
func (n *NES) SetLogger(l *log.Logger) { n.log = l }

func (n *NES) diagf(format string, args ...interface{}) {
	if n.log != nil {
		n.log.Printf(format, args...)
	}
}

// LoadRom parses an iNES/NES 2.0 image, installs its mapper and
// performs a hard reset. The emulator remains un-initialized (Ready
// reports false) if parsing or mapper construction fails.
func (n *NES) LoadRom(data []byte) error {
	cart, err := rom.Parse(data)
	if err != nil {
		return &LoadError{Err: err}
	}
	mp, err := mapper.New(cart)
	if err != nil {
		return &LoadError{Err: err}
	}
	n.mp = mp
	n.HardReset()
	n.ready = true
	return nil
}

// Ready reports whether the machine is initialized and able to step
// (false before the first successful LoadRom, and after an
// EmulationError until the next reset).
func (n *NES) Ready() bool { return n.ready }

// HardReset zeroes work RAM and reinitializes every peripheral from
// scratch (spec §6 hard_reset); the mapper and its cartridge content
// are untouched.
func (n *NES) HardReset() {
	n.ram = [2048]uint8{}
	n.ctrl = [2]controller.Port{}
	n.dma = dma.Controller{}
	n.cycle = 0
	n.frameCount = 0

	n.ppu = ppu.New(n)
	n.apu = apu.New(&n.dma)
	n.apu.SetSampleCallback(n.sampleCB)
	n.cpu = cpu.New(n)
	n.ready = n.mp != nil
}

// SoftReset re-runs the CPU's RESET vector sequence and resets the
// PPU/APU scheduling state while leaving OAM, palette RAM, nametable
// contents and mapper bank selections untouched (spec §6 soft_reset,
// spec §3).
func (n *NES) SoftReset() {
	n.ppu.Reset()
	n.apu.Reset()
	n.dma = dma.Controller{}
	n.cpu.Reset()
	n.ready = n.mp != nil
}

func (n *NES) sampleCB(s float32) {
	if n.onSample != nil {
		n.onSample(s)
	}
}

// SetAudioSampleCallback registers the host function invoked once per
// filtered, decimated audio sample (spec §6 audio_sample_callback).
func (n *NES) SetAudioSampleCallback(cb func(float32)) {
	n.onSample = cb
	n.apu.SetSampleCallback(n.sampleCB)
}

// Framebuffer returns a borrowed reference to the last completed
// 256x240 frame (spec §6 framebuffer).
func (n *NES) Framebuffer() []uint32 { return n.ppu.Framebuffer() }

// SwapFramebuffer forces the in-progress frame to publish to the
// front buffer immediately, so a caller reading Framebuffer mid-frame
// never observes tearing (spec §6 swap_framebuffer).
func (n *NES) SwapFramebuffer() { n.ppu.SwapFramebuffer() }

// Palette returns the full 512-entry emphasis-crossed color table
// (spec §6 palette).
func (n *NES) Palette() [512]uint32 { return ppu.Palette() }

// SetButtonState records a button press/release on one controller
// port; the next strobe latch observes it (spec §6 set_button_state).
func (n *NES) SetButtonState(p Port, b controller.Button, pressed bool) {
	n.ctrl[p].SetButtonState(b, pressed)
}

// StepCycle runs one CPU instruction, reports whether a frame boundary
// (vblank start) was just crossed, and surfaces any opcode fault as an
// EmulationError (spec §6 step_cycle).
//
// The core executes one instruction per cpu.CPU.Step call rather than
// one true machine cycle; every access within that instruction already
// clocks the PPU/APU at the correct per-cycle rate through Read/Write,
// so framebuffer and audio output remain cycle-accurate even though
// this entry point's granularity is coarser than its name suggests.
func (n *NES) StepCycle() (frameBoundary bool, err error) {
	if !n.ready {
		return false, nil
	}
	beforeFrame := n.frameCount
	beforePC := n.cpu.PC
	if serr := n.cpu.Step(); serr != nil {
		n.ready = false
		n.diagf("halted: %v", serr)
		return false, &EmulationError{Err: serr}
	}
	frameBoundary = n.frameCount != beforeFrame
	if n.cpu.PC == beforePC {
		// A single-instruction branch- or jump-to-self: the program
		// counter never moved, so nothing short of an external event
		// (IRQ/NMI, button input) will ever advance it further.
		return frameBoundary, &NonFatalStatus{Addr: beforePC}
	}
	return frameBoundary, nil
}

// StepUntilVBlank runs until the PPU asserts VBlank once, i.e. until
// one full frame has been rendered (spec §6 step_until_vblank).
func (n *NES) StepUntilVBlank() error {
	if !n.ready {
		return nil
	}
	target := n.frameCount + 1
	for n.frameCount < target {
		if err := n.cpu.Step(); err != nil {
			n.ready = false
			n.diagf("halted: %v", err)
			return &EmulationError{Err: err}
		}
	}
	return nil
}

// StepFrame runs until one full audio frame (1/60s, one rendered
// picture) has elapsed. On NTSC that's the same stopping point as
// StepUntilVBlank (spec §6 step_frame).
func (n *NES) StepFrame() error {
	return n.StepUntilVBlank()
}

// PeekMemory reads the CPU address space without side effects where
// the underlying device allows it (PPU/APU registers are inherently
// side-effecting on real hardware and are read as a normal bus access
// would see them; spec §6 peek_memory).
func (n *NES) PeekMemory(addr uint16) uint8 {
	return n.rawRead(addr)
}

// PokeMemory writes the CPU address space directly, bypassing DMA
// cycle-stealing (spec §6 poke_memory).
func (n *NES) PokeMemory(addr uint16, val uint8) {
	n.rawWrite(addr, val)
}

// Read services a CPU bus access: if a DMA is pending it's run to
// completion first (hijacking this very access, exactly as real
// hardware's cycle-stealing does), then the address is dispatched and
// every component that shares the cycle is ticked once.
func (n *NES) Read(addr uint16) uint8 {
	if n.dma.Pending() {
		n.dma.Execute(n, addr)
	}
	v := n.rawRead(addr)
	n.tick()
	n.lastBus = v
	return v
}

// Write services a CPU bus write. Unlike Read, this never hijacks the
// access for DMA: the RDY line real hardware stalls on to steal cycles
// only halts the CPU ahead of a read, so a write once issued always
// completes on schedule (pinky's virtual_nes.rs poke() never calls
// into its DMA interface either). A pending DMA request instead waits
// for the CPU's next Read.
func (n *NES) Write(addr uint16, val uint8) {
	n.rawWrite(addr, val)
	n.tick()
	n.lastBus = val
}

// Fetch is the dma.Context callback: a raw, tick-driving bus access
// with no further DMA re-entrancy (Execute never calls it while
// another DMA is still being dispatched into it).
func (n *NES) Fetch(addr uint16) uint8 {
	v := n.rawRead(addr)
	n.tick()
	n.lastBus = v
	return v
}

// IsOddCycle reports the dma.Context get/put phase oracle: even
// cycles read, odd cycles write.
func (n *NES) IsOddCycle() bool { return n.cycle%2 == 1 }

// WriteOAM is the dma.Context callback sprite DMA uses to copy a byte
// straight into OAM without going through the $2004 port logic.
func (n *NES) WriteOAM(offset uint8, val uint8) { n.ppu.WriteOAMDMA(val) }

// DMCFillFinished is the dma.Context callback the DMC DMA fetch uses
// to hand its byte back to the APU.
func (n *NES) DMCFillFinished(val uint8) { n.apu.OnDMCFillFinished(val) }

// ReadCHR and WriteCHR satisfy ppu.Bus: the picture bus is entirely
// cartridge space (pattern tables plus mapper-backed nametable RAM),
// so both simply forward to the loaded mapper.
func (n *NES) ReadCHR(addr uint16) uint8 {
	if n.mp == nil {
		return 0
	}
	return n.mp.ReadPPU(addr)
}

func (n *NES) WriteCHR(addr uint16, val uint8) {
	if n.mp == nil {
		return
	}
	n.mp.WritePPU(addr, val)
}

// rawRead dispatches a CPU address with no DMA or tick side effects.
func (n *NES) rawRead(addr uint16) uint8 {
	switch {
	case addr < 0x2000:
		return n.ram[addr&0x07FF]
	case addr < 0x4000:
		return n.ppu.ReadReg(0x2000 | (addr & 0x0007))
	case addr == 0x4015:
		return n.apu.ReadStatus()
	case addr == 0x4016:
		return n.lastBus&0xE0 | n.ctrl[First].Read()&0x01
	case addr == 0x4017:
		return n.lastBus&0xE0 | n.ctrl[Second].Read()&0x01
	case addr < 0x4018:
		n.diagf("read from write-only/unmapped IO register %#04x", addr)
		return n.lastBus
	case n.mp != nil:
		return n.mp.ReadCPU(addr)
	default:
		n.diagf("read from unmapped address %#04x, no cartridge loaded", addr)
		return 0
	}
}

// rawWrite dispatches a CPU address write with no DMA or tick side effects.
func (n *NES) rawWrite(addr uint16, val uint8) {
	switch {
	case addr < 0x2000:
		n.ram[addr&0x07FF] = val
	case addr < 0x4000:
		n.ppu.WriteReg(0x2000|(addr&0x0007), val)
	case addr == 0x4014:
		n.dma.ActivateSpriteDMA(uint16(val) << 8)
	case addr == 0x4016:
		n.ctrl[First].Write(val)
		n.ctrl[Second].Write(val)
	case addr >= 0x4000 && addr <= 0x4013, addr == 0x4015, addr == 0x4017:
		n.apu.WriteRegister(addr, val)
	case addr < 0x4018:
		n.diagf("write to unmapped IO register %#04x", addr)
	case n.mp != nil:
		n.mp.WriteCPU(addr, val)
	default:
		n.diagf("write to %#04x with no cartridge loaded", addr)
	}
}

// tick advances every peripheral that shares the CPU's clock by one
// CPU cycle: the PPU three times (its dot rate), the APU once, the
// mapper's cycle counter if it has one, then folds the PPU's NMI output
// and the APU's frame-counter and DMC IRQ sources into the CPU's
// interrupt lines. No mapper drives an IRQ source.
func (n *NES) tick() {
	n.ppu.Step()
	n.ppu.Step()
	n.ppu.Step()
	if n.ppu.FrameReady {
		n.frameCount++
	}

	n.apu.Step()

	if ct, ok := n.mp.(mapper.CycleTicker); ok {
		ct.Tick(n.cycle)
	}

	// n.cpu is still nil while New runs the first CPU's reset sequence.
	if n.cpu != nil {
		n.cpu.SetNMILine(n.ppu.NMILine())
		n.cpu.SetIRQLine(cpu.IRQSourceFrameCounter, n.apu.FrameIRQAsserted())
		n.cpu.SetIRQLine(cpu.IRQSourceDMC, n.apu.DMCIRQAsserted())
	}

	n.cycle++
}
