package mapper

import "github.com/bdwalton/nesgo/rom"

func init() {
	register(0, newNROM)
}

// nrom is mapper 0: no bank switching. 16KiB PRG ROM is mirrored into
// both halves of 0x8000-0xFFFF; 32KiB PRG ROM fills it directly.
type nrom struct {
	*generic
}

func newNROM(c *rom.Cartridge) (Mapper, error) {
	g := newGeneric(c)
	if g.prgLen <= 16*1024 {
		// Single 16KiB bank: mirror it into both halves of 0x8000-0xFFFF.
		g.mapPRG16K(1, 0)
		g.mapPRG16K(3, 0)
	} else {
		g.mapPRG32K(0)
	}
	g.mapCHR8K(0)
	return &nrom{generic: g}, nil
}

func (m *nrom) Name() string { return "NROM" }
