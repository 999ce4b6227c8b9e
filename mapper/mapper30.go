package mapper

import "github.com/bdwalton/nesgo/rom"

func init() {
	register(30, newUNROM512)
}

// unrom512 is mapper 30 (UNROM-512): up to 512KiB of PRG ROM in
// 16KiB banks (5 select bits), up to 32KiB of CHR RAM/ROM in 8KiB
// banks (2 select bits), and a one-screen-mirroring override bit, all
// selected by a single write to 0x8000-0xFFFF. 0xC000-0xFFFF is fixed
// to the last bank, matching UxROM's windowing.
type unrom512 struct {
	*generic
}

func newUNROM512(c *rom.Cartridge) (Mapper, error) {
	g := newGeneric(c)
	g.mapPRG16K(1, 0)
	g.mapPRG16K(3, g.lastPRG16KBank())
	g.mapCHR8K(0)
	return &unrom512{generic: g}, nil
}

func (m *unrom512) Name() string { return "UNROM-512" }

func (m *unrom512) WriteCPU(addr uint16, val uint8) {
	if addr >= 0x8000 {
		romBank := int(val & 0x1F)
		chrBank := int((val >> 5) & 0x03)
		m.mapPRG16K(1, romBank)
		m.mapCHR8K(chrBank)
		if val&0x80 != 0 {
			m.applyMirroring(rom.MirrorOnlyLower)
		} else {
			m.applyMirroring(m.headerMirror)
		}
		return
	}
	m.generic.WriteCPU(addr, val)
}
