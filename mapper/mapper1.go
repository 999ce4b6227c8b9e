package mapper

import "github.com/bdwalton/nesgo/rom"

func init() {
	register(1, newMMC1)
}

const mmc1ShiftDefault = 0b10000

// mmc1 is mapper 1: configured through a 5-bit serial shift register
// fed one bit per write (bit 0 of the value), MSB of the original
// value discarded; the fifth write latches the assembled 5-bit value
// into one of four internal registers selected by address bits
// 13-14. A write with bit 7 set resets the shift register immediately
// instead of shifting.
//
// Open question (spec §9): same-instruction consecutive writes to the
// serial port are unreliable on real hardware. This implementation
// takes the conservative approach the spec names: a write on the CPU
// cycle immediately following another write to this mapper is
// ignored outright.
type mmc1 struct {
	*generic

	shift    uint8
	writeCnt int

	control    uint8 // bits: 0-1 mirroring, 2-3 PRG mode, 4 CHR mode
	chrBank0   uint8
	chrBank1   uint8
	prgBank    uint8

	cycle         uint64
	lastWriteAt   uint64
	haveLastWrite bool
}

func newMMC1(c *rom.Cartridge) (Mapper, error) {
	g := newGeneric(c)
	m := &mmc1{generic: g, shift: mmc1ShiftDefault, control: 0x0C, chrBank1: 1}
	m.mapPRG16K(1, 0)
	m.mapPRG16K(3, m.lastPRG16KBank())
	m.mapCHR8K(0)
	return m, nil
}

func (m *mmc1) Name() string { return "MMC1" }

func (m *mmc1) Tick(cycle uint64) { m.cycle = cycle }

func (m *mmc1) WriteCPU(addr uint16, val uint8) {
	if addr < 0x8000 {
		m.generic.WriteCPU(addr, val)
		return
	}

	if m.haveLastWrite && m.cycle == m.lastWriteAt+1 {
		return
	}
	m.lastWriteAt = m.cycle
	m.haveLastWrite = true

	if val&0x80 != 0 {
		m.shift = mmc1ShiftDefault
		m.writeCnt = 0
		m.control |= 0x0C // reset to PRG mode 3 (fix upper, switch lower) per hardware
		m.applyConfig()
		return
	}

	m.shift = (m.shift >> 1) | ((val & 1) << 4)
	m.writeCnt++
	if m.writeCnt < 5 {
		return
	}

	full := m.shift
	m.shift = mmc1ShiftDefault
	m.writeCnt = 0

	switch (addr >> 13) & 0x03 {
	case 0: // 0x8000-0x9FFF: control
		m.control = full
	case 1: // 0xA000-0xBFFF: CHR bank 0
		m.chrBank0 = full
	case 2: // 0xC000-0xDFFF: CHR bank 1
		m.chrBank1 = full
	case 3: // 0xE000-0xFFFF: PRG bank
		m.prgBank = full
	}
	m.applyConfig()
}

func (m *mmc1) applyConfig() {
	switch m.control & 0x03 {
	case 0:
		m.applyMirroring(rom.MirrorOnlyLower)
	case 1:
		m.applyMirroring(rom.MirrorOnlyUpper)
	case 2:
		m.applyMirroring(rom.MirrorVertical)
	case 3:
		m.applyMirroring(rom.MirrorHorizontal)
	}

	prgBank := int(m.prgBank & 0x0F)
	switch (m.control >> 2) & 0x03 {
	case 0, 1: // 32KiB mode, ignoring the low bit of the bank select
		m.mapPRG32K(prgBank >> 1)
	case 2: // fix lower bank at 0x8000, switch 0xC000
		m.mapPRG16K(1, 0)
		m.mapPRG16K(3, prgBank)
	case 3: // switch 0x8000, fix upper bank at 0xC000
		m.mapPRG16K(1, prgBank)
		m.mapPRG16K(3, m.lastPRG16KBank())
	}

	if m.control&0x10 != 0 {
		m.mapCHR4K(0, int(m.chrBank0))
		m.mapCHR4K(1, int(m.chrBank1))
	} else {
		m.mapCHR8K(int(m.chrBank0 >> 1))
	}
}
