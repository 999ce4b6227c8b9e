// Package mapper implements the cartridge memory-bank-translation
// logic ("mappers") that sits behind the NES system and picture
// buses. A generic banked backbone (generic.go) models the CPU and
// PPU address spaces as tables of fixed-size banks pointing into one
// arena of cartridge bytes; individual mapper chips (mapper0.go,
// mapper1.go, ...) interpret cartridge-space writes to reconfigure
// that backbone. Only writes pay for the per-chip dispatch - reads
// are one table lookup plus an add.
package mapper

import (
	"fmt"

	"github.com/bdwalton/nesgo/rom"
)

// Mapper is the polymorphic interface every cartridge variant
// satisfies: translate a CPU or PPU address to a byte, honoring
// bank-switch writes into cartridge space.
type Mapper interface {
	// ReadCPU/WriteCPU service CPU addresses 0x6000-0xFFFF.
	ReadCPU(addr uint16) uint8
	WriteCPU(addr uint16, val uint8)
	// ReadPPU/WritePPU service PPU addresses 0x0000-0x2FFF (pattern
	// tables and nametables; 0x3F00+ palette RAM lives in the PPU).
	ReadPPU(addr uint16) uint8
	WritePPU(addr uint16, val uint8)
	// Mirroring reports the current background-tilemap mirroring mode.
	Mirroring() rom.Mirroring
	// Name identifies the mapper chip, for diagnostics.
	Name() string
}

// CycleTicker is implemented by mapper variants (MMC1) that need to
// observe the CPU cycle count to implement same-instruction write
// hazards. The bus calls Tick once per CPU cycle when present.
type CycleTicker interface {
	Tick(cycle uint64)
}

type factory func(*rom.Cartridge) (Mapper, error)

var registry = map[uint16]factory{}

func register(id uint16, f factory) {
	if _, ok := registry[id]; ok {
		panic(fmt.Sprintf("mapper %d already registered", id))
	}
	registry[id] = f
}

// New builds the mapper variant named by the cartridge header,
// failing with rom.UnsupportedMapper for anything this module doesn't
// implement (spec §6).
func New(c *rom.Cartridge) (Mapper, error) {
	f, ok := registry[c.Header.Mapper]
	if !ok {
		return nil, rom.UnsupportedMapper(c.Header.Mapper)
	}
	return f(c)
}
