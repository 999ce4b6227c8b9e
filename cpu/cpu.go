// Package cpu implements a cycle-accurate Ricoh 2A03 core: the NES's
// variant of the MOS 6502, wired to the rest of the system entirely
// through the Bus interface. Every real machine cycle the chip would
// spend, including the dummy reads addressing-mode quirks and
// read-modify-write instructions are known for, issues exactly one
// Bus.Read or Bus.Write call, so a Bus that steps other chips inside
// those calls gets them interleaved for free.
package cpu

import "fmt"

// Bus is everything the CPU core touches. The system wiring it to
// RAM, PPU/APU registers, and the cartridge is responsible for
// stepping those peripherals once per access and for folding in any
// DMA stall cycles transparently.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, val uint8)
}

// Status register bits.
const (
	FlagCarry    uint8 = 1 << 0
	FlagZero     uint8 = 1 << 1
	FlagIRQOff   uint8 = 1 << 2
	FlagDecimal  uint8 = 1 << 3
	FlagBreak    uint8 = 1 << 4
	FlagUnused   uint8 = 1 << 5 // always reads back as 1
	FlagOverflow uint8 = 1 << 6
	FlagNegative uint8 = 1 << 7
)

const (
	vectorNMI   uint16 = 0xFFFA
	vectorReset uint16 = 0xFFFC
	vectorIRQ   uint16 = 0xFFFE
	stackBase   uint16 = 0x0100
)

// IRQ sources. The 2A03 has one IRQ line shared by the frame counter,
// the DMC channel, and any mapper IRQ generator (e.g. MMC3); it's
// asserted as long as any source holds it asserted.
const (
	IRQSourceFrameCounter uint8 = 1 << 0
	IRQSourceDMC          uint8 = 1 << 1
	IRQSourceMapper       uint8 = 1 << 2
)


// InvalidInstruction reports a fetch of a byte with no decoding in
// the opcode table.
type InvalidInstruction struct {
	Address uint16
	Opcode  uint8
}

func (e *InvalidInstruction) Error() string {
	return fmt.Sprintf("cpu: invalid opcode %#02x at %#04x", e.Opcode, e.Address)
}

// CPU holds the 2A03's programmer-visible state. Everything else
// (timing, peripherals, memory) lives behind Bus.
type CPU struct {
	A, X, Y uint8
	SP      uint8
	PC      uint16
	P       uint8

	bus Bus

	nmiLine     bool // current level of the PPU's NMI output
	nmiPrevLine bool
	nmiPending  bool // latched rising edge, consumed by the next interrupt service
	irqLines    uint8

	// Halted is set when Step last returned an error; the caller must
	// Reset before stepping again.
	Halted bool
}

func New(bus Bus) *CPU {
	c := &CPU{bus: bus}
	c.Reset()
	return c
}

// Reset runs the documented RESET sequence: three dummy stack
// accesses (SP decrements without writing, since /RESET holds the R/W
// line high) followed by a vector fetch, landing SP at 0xFD.
func (c *CPU) Reset() {
	c.bus.Read(c.PC)
	c.bus.Read(c.PC)
	c.bus.Read(stackBase | uint16(c.SP))
	c.SP--
	c.bus.Read(stackBase | uint16(c.SP))
	c.SP--
	c.bus.Read(stackBase | uint16(c.SP))
	c.SP--
	c.P |= FlagIRQOff | FlagUnused
	lo := uint16(c.bus.Read(vectorReset))
	hi := uint16(c.bus.Read(vectorReset + 1))
	c.PC = hi<<8 | lo
	c.Halted = false
	c.nmiLine, c.nmiPrevLine, c.nmiPending = false, false, false
	c.irqLines = 0
}

// SetNMILine reports the PPU's current NMI output level. A
// low-to-high transition latches a pending NMI regardless of how many
// times the level is sampled before it's serviced, matching the
// edge-triggered behavior of the real pin.
func (c *CPU) SetNMILine(asserted bool) {
	if asserted && !c.nmiPrevLine {
		c.nmiPending = true
	}
	c.nmiPrevLine = asserted
	c.nmiLine = asserted
}

// SetIRQLine asserts or clears one source's hold on the shared,
// level-sensitive IRQ line.
func (c *CPU) SetIRQLine(source uint8, asserted bool) {
	if asserted {
		c.irqLines |= source
	} else {
		c.irqLines &^= source
	}
}

func (c *CPU) irqAsserted() bool { return c.irqLines != 0 }

// Step executes exactly one instruction, or one interrupt-service
// sequence, issuing one Bus access per real machine cycle. It returns
// an error only for InvalidInstruction; the caller is expected to halt
// emulation on any returned error.
func (c *CPU) Step() error {
	if c.Halted {
		return nil
	}

	if c.nmiPending {
		c.nmiPending = false
		c.serviceInterrupt(false, vectorNMI)
		return nil
	}
	if c.irqAsserted() && c.P&FlagIRQOff == 0 {
		c.serviceInterrupt(false, vectorIRQ)
		return nil
	}

	addr := c.PC
	op := c.fetchByte()
	dec, ok := opcodes[op]
	if !ok {
		c.Halted = true
		return &InvalidInstruction{Address: addr, Opcode: op}
	}
	c.execute(dec)
	return nil
}

func (c *CPU) fetchByte() uint8 {
	v := c.bus.Read(c.PC)
	c.PC++
	return v
}

func (c *CPU) push(v uint8) {
	c.bus.Write(stackBase|uint16(c.SP), v)
	c.SP--
}

func (c *CPU) pull() uint8 {
	c.SP++
	return c.bus.Read(stackBase | uint16(c.SP))
}

func (c *CPU) setZN(v uint8) {
	if v == 0 {
		c.P |= FlagZero
	} else {
		c.P &^= FlagZero
	}
	if v&0x80 != 0 {
		c.P |= FlagNegative
	} else {
		c.P &^= FlagNegative
	}
}

// serviceInterrupt runs the 7-cycle interrupt sequence shared by BRK,
// NMI and IRQ. isBRK selects a 2-cycle opcode-like lead-in (reading
// and discarding BRK's padding byte) instead of the 2 dummy program-
// counter reads a hardware interrupt uses, and controls whether the
// pushed status byte carries the break flag. vector is resolved at
// call time from the caller's NMI/IRQ choice, but is still overridden
// by an NMI that lands during the sequence: an NMI's priority over a
// BRK or IRQ already being serviced ("hijacking") falls out naturally
// here because c.nmiPending can flip true partway through, via the
// Bus stepping the PPU inside one of the pushes below.
func (c *CPU) serviceInterrupt(isBRK bool, vector uint16) {
	if isBRK {
		c.fetchByte() // BRK's padding byte, discarded
	} else {
		c.bus.Read(c.PC)
		c.bus.Read(c.PC)
	}

	c.push(uint8(c.PC >> 8))
	c.push(uint8(c.PC))

	flags := c.P | FlagUnused
	if isBRK {
		flags |= FlagBreak
	} else {
		flags &^= FlagBreak
	}
	c.push(flags)
	c.P |= FlagIRQOff

	if c.nmiPending {
		vector = vectorNMI
		c.nmiPending = false
	}
	lo := uint16(c.bus.Read(vector))
	hi := uint16(c.bus.Read(vector + 1))
	c.PC = hi<<8 | lo
}

type accessKind uint8

const (
	accessRead accessKind = iota
	accessWrite
	accessRMW
)

// resolveAddr computes the effective address for every non-implicit,
// non-immediate, non-relative addressing mode, issuing exactly the
// bus accesses real hardware does along the way. kind controls whether
// the indexed-addressing "oops" cycle (a read at the address formed
// before the high-byte carry is resolved) happens unconditionally
// (write and read-modify-write instructions always pay it) or only
// when the index actually crosses a page (plain reads). pageCrossed
// reports whether the index crossed a page.
func (c *CPU) resolveAddr(mode uint8, kind accessKind) (addr uint16, pageCrossed bool) {
	switch mode {
	case modeZeroPage:
		return uint16(c.fetchByte()), false

	case modeZeroPageX:
		base := c.fetchByte()
		c.bus.Read(uint16(base))
		return uint16(base + c.X), false

	case modeZeroPageY:
		base := c.fetchByte()
		c.bus.Read(uint16(base))
		return uint16(base + c.Y), false

	case modeAbsolute:
		lo := uint16(c.fetchByte())
		hi := uint16(c.fetchByte())
		return hi<<8 | lo, false

	case modeAbsoluteX:
		return c.resolveIndexedAbs(c.X, kind)

	case modeAbsoluteY:
		return c.resolveIndexedAbs(c.Y, kind)

	case modeIndirectX:
		ptr := c.fetchByte()
		c.bus.Read(uint16(ptr))
		lo := uint16(c.bus.Read(uint16(ptr + c.X)))
		hi := uint16(c.bus.Read(uint16(ptr + c.X + 1)))
		return hi<<8 | lo, false

	case modeIndirectY:
		ptr := c.fetchByte()
		lo := uint16(c.bus.Read(uint16(ptr)))
		hi := uint16(c.bus.Read(uint16(ptr + 1)))
		base := hi<<8 | lo
		eff := base + uint16(c.Y)
		crossed := eff&0xFF00 != base&0xFF00
		if kind != accessRead || crossed {
			c.bus.Read((base & 0xFF00) | (eff & 0xFF))
		}
		return eff, crossed

	default:
		panic(fmt.Sprintf("cpu: resolveAddr called with non-addressed mode %d", mode))
	}
}

func (c *CPU) resolveIndexedAbs(index uint8, kind accessKind) (addr uint16, pageCrossed bool) {
	lo := uint16(c.fetchByte())
	hi := uint16(c.fetchByte())
	base := hi<<8 | lo
	eff := base + uint16(index)
	crossed := eff&0xFF00 != base&0xFF00
	if kind != accessRead || crossed {
		c.bus.Read((base & 0xFF00) | (eff & 0xFF))
	}
	return eff, crossed
}

// execute dispatches a decoded instruction. Implied/accumulator,
// branch, stack, and control-flow instructions handle their own bus
// timing directly (their cycle patterns don't fit the
// resolveAddr-plus-final-access shape); everything else routes
// through resolveAddr.
func (c *CPU) execute(dec opcode) {
	switch dec.inst {
	case iBRK:
		c.serviceInterrupt(true, vectorIRQ)
		return
	case iJSR:
		c.execJSR()
		return
	case iRTS:
		c.execRTS()
		return
	case iRTI:
		c.execRTI()
		return
	case iJMP:
		c.execJMP(dec.mode)
		return
	case iPHA:
		c.bus.Read(c.PC)
		c.push(c.A)
		return
	case iPHP:
		c.bus.Read(c.PC)
		c.push(c.P | FlagUnused | FlagBreak)
		return
	case iPLA:
		c.bus.Read(c.PC)
		c.bus.Read(stackBase | uint16(c.SP))
		c.A = c.pull()
		c.setZN(c.A)
		return
	case iPLP:
		c.bus.Read(c.PC)
		c.bus.Read(stackBase | uint16(c.SP))
		c.P = (c.pull() &^ FlagBreak) | FlagUnused
		return
	case iBCC:
		c.branch(c.P&FlagCarry == 0)
		return
	case iBCS:
		c.branch(c.P&FlagCarry != 0)
		return
	case iBEQ:
		c.branch(c.P&FlagZero != 0)
		return
	case iBNE:
		c.branch(c.P&FlagZero == 0)
		return
	case iBMI:
		c.branch(c.P&FlagNegative != 0)
		return
	case iBPL:
		c.branch(c.P&FlagNegative == 0)
		return
	case iBVC:
		c.branch(c.P&FlagOverflow == 0)
		return
	case iBVS:
		c.branch(c.P&FlagOverflow != 0)
		return
	}

	if dec.mode == modeImplicit {
		c.bus.Read(c.PC)
		c.execImplicit(dec.inst)
		return
	}

	if dec.mode == modeImmediate {
		v := c.fetchByte()
		c.execRead(dec.inst, v)
		return
	}

	if dec.mode == modeAccumulator {
		c.bus.Read(c.PC)
		c.A = c.execRMWValue(dec.inst, c.A)
		return
	}

	switch classOf(dec.inst) {
	case classRead:
		addr, _ := c.resolveAddr(dec.mode, accessRead)
		v := c.bus.Read(addr)
		c.execRead(dec.inst, v)
	case classWrite:
		addr, _ := c.resolveAddr(dec.mode, accessWrite)
		c.bus.Write(addr, c.execWriteValue(dec.inst))
	case classRMW:
		addr, _ := c.resolveAddr(dec.mode, accessRMW)
		old := c.bus.Read(addr)
		c.bus.Write(addr, old) // dummy write-back of the unmodified value
		nv := c.execRMWValue(dec.inst, old)
		c.bus.Write(addr, nv)
	}
}

type instrClass uint8

const (
	classRead instrClass = iota
	classWrite
	classRMW
)

func classOf(inst uint8) instrClass {
	switch inst {
	case iSTA, iSTX, iSTY, iSAX:
		return classWrite
	case iASL, iLSR, iROL, iROR, iINC, iDEC, iDCP, iISC:
		return classRMW
	default:
		return classRead
	}
}

func (c *CPU) branch(take bool) {
	offset := int8(c.fetchByte())
	if !take {
		return
	}
	c.bus.Read(c.PC)
	newPC := uint16(int32(c.PC) + int32(offset))
	if newPC&0xFF00 != c.PC&0xFF00 {
		wrong := (c.PC & 0xFF00) | (newPC & 0xFF)
		c.bus.Read(wrong)
	}
	c.PC = newPC
}

func (c *CPU) execJMP(mode uint8) {
	lo := uint16(c.fetchByte())
	hi := uint16(c.fetchByte())
	ptr := hi<<8 | lo
	if mode == modeAbsolute {
		c.PC = ptr
		return
	}
	// modeIndirect: JMP ($xxFF) famously fails to cross a page for the
	// high byte fetch, wrapping back to the start of the same page.
	loAddr := ptr
	hiAddr := (ptr & 0xFF00) | ((ptr + 1) & 0xFF)
	tlo := uint16(c.bus.Read(loAddr))
	thi := uint16(c.bus.Read(hiAddr))
	c.PC = thi<<8 | tlo
}

func (c *CPU) execJSR() {
	lo := uint16(c.fetchByte())
	c.bus.Read(stackBase | uint16(c.SP)) // internal cycle, spent on the stack
	ret := c.PC // points at the high byte still to be fetched
	c.push(uint8(ret >> 8))
	c.push(uint8(ret))
	hi := uint16(c.fetchByte())
	c.PC = hi<<8 | lo
}

func (c *CPU) execRTS() {
	c.bus.Read(c.PC)
	c.bus.Read(stackBase | uint16(c.SP))
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	ret := hi<<8 | lo
	c.bus.Read(ret)
	c.PC = ret + 1
}

func (c *CPU) execRTI() {
	c.bus.Read(c.PC)
	c.bus.Read(stackBase | uint16(c.SP))
	c.P = (c.pull() &^ FlagBreak) | FlagUnused
	lo := uint16(c.pull())
	hi := uint16(c.pull())
	c.PC = hi<<8 | lo
}

func (c *CPU) execImplicit(inst uint8) {
	switch inst {
	case iCLC:
		c.P &^= FlagCarry
	case iSEC:
		c.P |= FlagCarry
	case iCLI:
		c.P &^= FlagIRQOff
	case iSEI:
		c.P |= FlagIRQOff
	case iCLD:
		c.P &^= FlagDecimal
	case iSED:
		c.P |= FlagDecimal
	case iCLV:
		c.P &^= FlagOverflow
	case iDEX:
		c.X--
		c.setZN(c.X)
	case iDEY:
		c.Y--
		c.setZN(c.Y)
	case iINX:
		c.X++
		c.setZN(c.X)
	case iINY:
		c.Y++
		c.setZN(c.Y)
	case iTAX:
		c.X = c.A
		c.setZN(c.X)
	case iTAY:
		c.Y = c.A
		c.setZN(c.Y)
	case iTXA:
		c.A = c.X
		c.setZN(c.A)
	case iTYA:
		c.A = c.Y
		c.setZN(c.A)
	case iTSX:
		c.X = c.SP
		c.setZN(c.X)
	case iTXS:
		c.SP = c.X
	case iNOP:
		// no effect
	}
}

func (c *CPU) execRead(inst uint8, v uint8) {
	switch inst {
	case iADC:
		c.adc(v)
	case iSBC:
		c.adc(^v)
	case iAND:
		c.A &= v
		c.setZN(c.A)
	case iORA:
		c.A |= v
		c.setZN(c.A)
	case iEOR:
		c.A ^= v
		c.setZN(c.A)
	case iLDA:
		c.A = v
		c.setZN(c.A)
	case iLDX:
		c.X = v
		c.setZN(c.X)
	case iLDY:
		c.Y = v
		c.setZN(c.Y)
	case iLAX:
		c.A, c.X = v, v
		c.setZN(v)
	case iCMP:
		c.compare(c.A, v)
	case iCPX:
		c.compare(c.X, v)
	case iCPY:
		c.compare(c.Y, v)
	case iBIT:
		c.P = c.P&^(FlagZero|FlagOverflow|FlagNegative) |
			boolFlag(c.A&v == 0, FlagZero) |
			v&FlagOverflow |
			v&FlagNegative
	case iAXS:
		r := uint16(c.A&c.X) - uint16(v)
		c.P = c.P&^FlagCarry | boolFlag(r < 0x100, FlagCarry)
		c.X = uint8(r)
		c.setZN(c.X)
	case iNOP:
		// unofficial NOPs with an addressed operand: read only, discard
	}
}

func boolFlag(cond bool, flag uint8) uint8 {
	if cond {
		return flag
	}
	return 0
}

func (c *CPU) adc(v uint8) {
	sum := uint16(c.A) + uint16(v) + uint16(c.P&FlagCarry)
	result := uint8(sum)
	c.P = c.P&^(FlagCarry|FlagOverflow) |
		boolFlag(sum > 0xFF, FlagCarry) |
		boolFlag((c.A^result)&(v^result)&0x80 != 0, FlagOverflow)
	c.A = result
	c.setZN(c.A)
}

func (c *CPU) compare(reg, v uint8) {
	r := uint16(reg) - uint16(v)
	c.P = c.P&^FlagCarry | boolFlag(reg >= v, FlagCarry)
	c.setZN(uint8(r))
}

func (c *CPU) execWriteValue(inst uint8) uint8 {
	switch inst {
	case iSTA:
		return c.A
	case iSTX:
		return c.X
	case iSTY:
		return c.Y
	case iSAX:
		return c.A & c.X
	}
	return 0
}

func (c *CPU) execRMWValue(inst uint8, old uint8) uint8 {
	switch inst {
	case iASL:
		c.P = c.P&^FlagCarry | boolFlag(old&0x80 != 0, FlagCarry)
		nv := old << 1
		c.setZN(nv)
		return nv
	case iLSR:
		c.P = c.P&^FlagCarry | boolFlag(old&0x01 != 0, FlagCarry)
		nv := old >> 1
		c.setZN(nv)
		return nv
	case iROL:
		carryIn := c.P & FlagCarry
		c.P = c.P&^FlagCarry | boolFlag(old&0x80 != 0, FlagCarry)
		nv := old<<1 | carryIn
		c.setZN(nv)
		return nv
	case iROR:
		carryIn := c.P & FlagCarry
		c.P = c.P&^FlagCarry | boolFlag(old&0x01 != 0, FlagCarry)
		nv := old>>1 | carryIn<<7
		c.setZN(nv)
		return nv
	case iINC:
		nv := old + 1
		c.setZN(nv)
		return nv
	case iDEC:
		nv := old - 1
		c.setZN(nv)
		return nv
	case iDCP:
		nv := old - 1
		c.compare(c.A, nv)
		return nv
	case iISC:
		nv := old + 1
		c.adc(^nv)
		return nv
	}
	return old
}
