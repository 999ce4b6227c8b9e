package mapper

import "github.com/bdwalton/nesgo/rom"

func init() {
	register(2, newUxROM)
}

// uxrom is mapper 2 (UxROM): 0x8000-0xBFFF is a switchable 16KiB PRG
// bank selected by any write to 0x8000-0xFFFF; 0xC000-0xFFFF is fixed
// to the last PRG bank. CHR is an unbanked 8KiB window: the
// cartridge's CHR ROM when it has one, otherwise CHR RAM.
type uxrom struct {
	*generic
}

func newUxROM(c *rom.Cartridge) (Mapper, error) {
	g := newGeneric(c)
	g.mapPRG16K(1, 0)
	g.mapPRG16K(3, g.lastPRG16KBank())
	g.mapCHR8K(0)
	return &uxrom{generic: g}, nil
}

func (m *uxrom) Name() string { return "UxROM" }

func (m *uxrom) WriteCPU(addr uint16, val uint8) {
	if addr >= 0x8000 {
		m.mapPRG16K(1, int(val))
		return
	}
	m.generic.WriteCPU(addr, val)
}
