package mapper

import "github.com/bdwalton/nesgo/rom"

func init() {
	register(7, newAxROM)
}

// axrom is mapper 7 (AxROM): a single switchable 32KiB PRG bank
// selected by bits 0-2 of any write to 0x8000-0xFFFF, plus bit 4
// choosing which 1KiB nametable page all four logical nametables
// alias to ("single-screen" mirroring, ignoring the cartridge header's
// mirroring bit entirely).
type axrom struct {
	*generic
}

func newAxROM(c *rom.Cartridge) (Mapper, error) {
	g := newGeneric(c)
	g.mapPRG32K(0)
	g.mapCHR8K(0)
	g.applyMirroring(rom.MirrorOnlyLower)
	return &axrom{generic: g}, nil
}

func (m *axrom) Name() string { return "AxROM" }

func (m *axrom) WriteCPU(addr uint16, val uint8) {
	if addr >= 0x8000 {
		m.mapPRG32K(int(val & 0x07))
		if val&0x10 != 0 {
			m.applyMirroring(rom.MirrorOnlyUpper)
		} else {
			m.applyMirroring(rom.MirrorOnlyLower)
		}
		return
	}
	m.generic.WriteCPU(addr, val)
}
