package mapper

import (
	"log"

	"github.com/bdwalton/nesgo/rom"
)

// CPU address space is modeled as five 8KiB banks starting at
// 0x6000, 0x8000, 0xA000, 0xC000, 0xE000. PPU address space is
// modeled as twelve 1KiB banks covering 0x0000-0x2FFF.
const (
	cpuBankSize  = 8 * 1024
	cpuBankCount = 5
	ppuBankSize  = 1024
	ppuBankCount = 12
)

var cpuBankBase = [cpuBankCount]uint16{0x6000, 0x8000, 0xA000, 0xC000, 0xE000}
var ppuBankBase = [ppuBankCount]uint16{
	0x0000, 0x0400, 0x0800, 0x0C00,
	0x1000, 0x1400, 0x1800, 0x1C00,
	0x2000, 0x2400, 0x2800, 0x2C00,
}

func cpuBankIndex(addr uint16) int { return int(addr-0x6000) / cpuBankSize }
func ppuBankIndex(addr uint16) int { return int(addr) / ppuBankSize }

type bank struct {
	offset   int // offset into arena; -1 when unmapped
	writable bool
}

// generic is the banked memory-translation backbone every mapper
// variant composes. It owns a single arena of bytes (PRG ROM, CHR
// ROM/RAM, and on-board nametable RAM, concatenated) and a table of
// bank descriptors per address region; translating an address is one
// table lookup plus an add.
type generic struct {
	arena []byte

	cpuBanks [cpuBankCount]bank
	ppuBanks [ppuBankCount]bank

	mirror       rom.Mirroring
	headerMirror rom.Mirroring // mirroring mode declared by the iNES header, for variants that can revert to it

	prgOffset   int // arena offset where PRG ROM begins
	prgLen      int
	chrOffset   int // arena offset where CHR ROM/RAM begins
	chrLen      int
	sramOffset  int
	sramLen     int
	nametables  int // arena offset where on-board nametable RAM begins
	ntLen       int
	chrIsRAM    bool
}

func newGeneric(c *rom.Cartridge) *generic {
	g := &generic{mirror: c.Header.Mirror, headerMirror: c.Header.Mirror}

	for i := range g.cpuBanks {
		g.cpuBanks[i].offset = -1
	}
	for i := range g.ppuBanks {
		g.ppuBanks[i].offset = -1
	}

	g.prgOffset = len(g.arena)
	g.arena = append(g.arena, c.PRG...)
	g.prgLen = len(c.PRG)

	g.chrOffset = len(g.arena)
	if len(c.CHR) > 0 {
		g.arena = append(g.arena, c.CHR...)
		g.chrLen = len(c.CHR)
	} else {
		// No CHR ROM on the board: back pattern tables with 8KiB of
		// writable CHR RAM instead (pinky's orphan.rs union).
		g.chrLen = 8 * 1024
		g.arena = append(g.arena, make([]byte, g.chrLen)...)
		g.chrIsRAM = true
	}

	g.sramOffset = len(g.arena)
	g.sramLen = len(c.SRAM)
	if g.sramLen == 0 {
		g.sramLen = 8 * 1024
	}
	g.arena = append(g.arena, make([]byte, g.sramLen)...)
	g.setCPUBank(0, g.sramOffset, true) // 0x6000-0x7FFF save RAM, always writable

	g.nametables = len(g.arena)
	ntSize := 2 * 1024
	if c.Header.Mirror == rom.MirrorFourScreen {
		ntSize = 4 * 1024
	}
	g.ntLen = ntSize
	g.arena = append(g.arena, make([]byte, ntSize)...)
	g.applyMirroring(c.Header.Mirror)

	return g
}

// setCPUBank points the 8KiB CPU bank `slot` (0..4) at arena offset `off`.
func (g *generic) setCPUBank(slot int, off int, writable bool) {
	g.cpuBanks[slot] = bank{offset: off, writable: writable}
}

// setPPU1KBank points the 1KiB PPU bank `slot` (0..11) at arena offset `off`.
func (g *generic) setPPU1KBank(slot int, off int, writable bool) {
	g.ppuBanks[slot] = bank{offset: off, writable: writable}
}

// mapPRG16K points a 16KiB CPU-space window (two adjacent 8KiB banks,
// starting at slot 1=0x8000 or slot 3=0xC000) at the given PRG bank
// number (0-indexed, 16KiB units), wrapping within the PRG ROM.
func (g *generic) mapPRG16K(slot int, prgBank int) {
	banks16k := g.prgLen / (16 * 1024)
	if banks16k == 0 {
		banks16k = 1
	}
	prgBank = ((prgBank % banks16k) + banks16k) % banks16k
	off := g.prgOffset + prgBank*16*1024
	g.setCPUBank(slot, off, false)
	g.setCPUBank(slot+1, off+cpuBankSize, false)
}

// mapPRG32K points all four 0x8000-0xFFFF banks at one 32KiB window.
func (g *generic) mapPRG32K(prgBank int) {
	banks32k := g.prgLen / (32 * 1024)
	if banks32k == 0 {
		banks32k = 1
	}
	prgBank = ((prgBank % banks32k) + banks32k) % banks32k
	off := g.prgOffset + prgBank*32*1024
	for i := 0; i < 4; i++ {
		g.setCPUBank(1+i, off+i*cpuBankSize, false)
	}
}

// lastPRG16KBank returns the 16KiB bank index of the last bank of PRG ROM.
func (g *generic) lastPRG16KBank() int {
	banks16k := g.prgLen / (16 * 1024)
	if banks16k == 0 {
		return 0
	}
	return banks16k - 1
}

// mapCHR8K points all 8KiB of pattern-table space at one CHR window.
func (g *generic) mapCHR8K(chrBank int) {
	unit := 8 * 1024
	banks := g.chrLen / unit
	if banks == 0 {
		banks = 1
	}
	chrBank = ((chrBank % banks) + banks) % banks
	off := g.chrOffset + chrBank*unit
	for i := 0; i < 8; i++ {
		g.setPPU1KBank(i, off+i*ppuBankSize, g.chrIsRAM)
	}
}

// mapCHR4K points a 4KiB pattern-table half (slot group 0 or 4) at a
// 4KiB CHR window.
func (g *generic) mapCHR4K(half int, chrBank int) {
	unit := 4 * 1024
	banks := g.chrLen / unit
	if banks == 0 {
		banks = 1
	}
	chrBank = ((chrBank % banks) + banks) % banks
	off := g.chrOffset + chrBank*unit
	base := half * 4
	for i := 0; i < 4; i++ {
		g.setPPU1KBank(base+i, off+i*ppuBankSize, g.chrIsRAM)
	}
}

// mapCHR1K points a single 1KiB pattern-table bank.
func (g *generic) mapCHR1K(slot int, chrBank int) {
	unit := ppuBankSize
	banks := g.chrLen / unit
	if banks == 0 {
		banks = 1
	}
	chrBank = ((chrBank % banks) + banks) % banks
	g.setPPU1KBank(slot, g.chrOffset+chrBank*unit, g.chrIsRAM)
}

// applyMirroring wires the four nametable-range PPU banks (slots
// 8..11, covering 0x2000-0x2FFF) at 1KiB regions of on-board VRAM per
// the requested mirroring mode.
func (g *generic) applyMirroring(m rom.Mirroring) {
	g.mirror = m
	nt := g.nametables
	set := func(slot int, page int) {
		g.setPPU1KBank(8+slot, nt+page*ppuBankSize, true)
	}
	switch m {
	case rom.MirrorHorizontal:
		set(0, 0)
		set(1, 0)
		set(2, 1)
		set(3, 1)
	case rom.MirrorVertical:
		set(0, 0)
		set(1, 1)
		set(2, 0)
		set(3, 1)
	case rom.MirrorOnlyLower:
		set(0, 0)
		set(1, 0)
		set(2, 0)
		set(3, 0)
	case rom.MirrorOnlyUpper:
		set(0, 1)
		set(1, 1)
		set(2, 1)
		set(3, 1)
	case rom.MirrorFourScreen:
		set(0, 0)
		set(1, 1)
		set(2, 2)
		set(3, 3)
	}
}

func (g *generic) Mirroring() rom.Mirroring { return g.mirror }

// ReadCPU/WriteCPU address the 0x6000-0xFFFF region. Addresses below
// 0x6000 are not this backbone's concern (system RAM and PPU/APU
// registers live on the bus, not the cartridge).
func (g *generic) ReadCPU(addr uint16) uint8 {
	if addr < 0x6000 {
		return 0
	}
	b := g.cpuBanks[cpuBankIndex(addr)]
	if b.offset < 0 {
		return 0
	}
	return g.arena[b.offset+int(addr-cpuBankBase[cpuBankIndex(addr)])]
}

func (g *generic) WriteCPU(addr uint16, val uint8) {
	if addr < 0x6000 {
		return
	}
	idx := cpuBankIndex(addr)
	b := g.cpuBanks[idx]
	if b.offset < 0 || !b.writable {
		log.Printf("mapper: dropped write to read-only cartridge address %#04x", addr)
		return
	}
	g.arena[b.offset+int(addr-cpuBankBase[idx])] = val
}

func (g *generic) ReadPPU(addr uint16) uint8 {
	addr &= 0x2FFF
	idx := ppuBankIndex(addr)
	b := g.ppuBanks[idx]
	if b.offset < 0 {
		return 0
	}
	return g.arena[b.offset+int(addr-ppuBankBase[idx])]
}

func (g *generic) WritePPU(addr uint16, val uint8) {
	addr &= 0x2FFF
	idx := ppuBankIndex(addr)
	b := g.ppuBanks[idx]
	if b.offset < 0 || !b.writable {
		log.Printf("mapper: dropped write to read-only CHR address %#04x", addr)
		return
	}
	g.arena[b.offset+int(addr-ppuBankBase[idx])] = val
}
