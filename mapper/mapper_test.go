package mapper

import (
	"testing"

	"github.com/bdwalton/nesgo/rom"
)

func cart(prgBlocks, chrBlocks int, mirror rom.Mirroring) *rom.Cartridge {
	prg := make([]byte, prgBlocks*16*1024)
	for i := range prg {
		prg[i] = byte(i) + byte(i/(16*1024)) // each 16KiB bank differs at equal offsets
	}
	chr := make([]byte, chrBlocks*8*1024)
	return &rom.Cartridge{
		Header: rom.Header{PrgBlocks: uint16(prgBlocks), ChrBlocks: uint16(chrBlocks), Mirror: mirror},
		PRG:    prg,
		CHR:    chr,
	}
}

func TestNROMMirrorsSingle16KBank(t *testing.T) {
	m, err := New(cart(1, 1, rom.MirrorHorizontal))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if got, want := m.ReadCPU(0x8000), m.ReadCPU(0xC000); got != want {
		t.Errorf("ReadCPU(0x8000) = %d, ReadCPU(0xC000) = %d; want equal (mirrored bank)", got, want)
	}
}

func TestNROMTwoBanksAreDistinct(t *testing.T) {
	m, err := New(cart(2, 1, rom.MirrorHorizontal))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if m.ReadCPU(0x8000) == m.ReadCPU(0xC000) && m.ReadCPU(0x8001) == m.ReadCPU(0xC001) {
		t.Errorf("expected distinct lower/upper 16KiB banks for a 32KiB cartridge")
	}
}

func TestUxROMBankSwitch(t *testing.T) {
	c := cart(4, 1, rom.MirrorVertical)
	c.Header.Mapper = 2
	m, err := New(c)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	u := m.(*uxrom)

	// Upper window is fixed to the last (4th, index 3) 16KiB bank.
	if got, want := m.ReadCPU(0xC000), u.arena[u.prgOffset+3*16*1024]; got != want {
		t.Errorf("ReadCPU(0xC000) = %d, want %d (last bank fixed)", got, want)
	}

	m.WriteCPU(0x8000, 2)
	if got, want := m.ReadCPU(0x8000), u.arena[u.prgOffset+2*16*1024]; got != want {
		t.Errorf("after bank switch: ReadCPU(0x8000) = %d, want %d", got, want)
	}
}

func TestHorizontalNametableMirroring(t *testing.T) {
	// Nametable mirroring wiring: horizontal mirroring means 0x2000
	// and 0x2400 share a physical page, distinct from 0x2800/0x2C00.
	m, err := New(cart(1, 1, rom.MirrorHorizontal))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	m.WritePPU(0x2000, 0x42)
	if got := m.ReadPPU(0x2400); got != 0x42 {
		t.Errorf("horizontal mirroring: ReadPPU(0x2400) = %d, want 0x42 (shares page with 0x2000)", got)
	}
	if got := m.ReadPPU(0x2800); got == 0x42 {
		t.Errorf("horizontal mirroring: ReadPPU(0x2800) should not alias 0x2000's page")
	}
}

func TestMMC1ShiftRegister(t *testing.T) {
	c := cart(8, 0, rom.MirrorHorizontal) // 0 CHR blocks => CHR RAM
	c.Header.Mapper = 1
	m, err := New(c)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mm := m.(*mmc1)

	// Select PRG bank 3 in 16K mode (control defaults to mode 3: switch
	// lower, fix upper) by shifting in 0b00011 over five writes to the
	// PRG-bank register (0xE000-0xFFFF), advancing the cycle counter
	// between writes to dodge the consecutive-write hazard.
	bits := []uint8{1, 1, 0, 0, 0}
	for i, b := range bits {
		mm.Tick(uint64(i * 2))
		m.WriteCPU(0xE000, b)
	}

	if got, want := mm.prgBank, uint8(0b00011); got != want {
		t.Errorf("prgBank = %#x, want %#x", got, want)
	}
}

func TestMMC1IgnoresConsecutiveWrite(t *testing.T) {
	c := cart(8, 0, rom.MirrorHorizontal)
	c.Header.Mapper = 1
	m, err := New(c)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mm := m.(*mmc1)

	mm.Tick(10)
	m.WriteCPU(0xE000, 1)
	mm.Tick(11) // immediately-following cycle: this write must be dropped
	m.WriteCPU(0xE000, 1)

	if mm.writeCnt != 1 {
		t.Errorf("writeCnt = %d, want 1 (second consecutive write should be ignored)", mm.writeCnt)
	}
}

func TestUnsupportedMapperRejected(t *testing.T) {
	c := cart(1, 1, rom.MirrorHorizontal)
	c.Header.Mapper = 255
	if _, err := New(c); err == nil {
		t.Errorf("New() with mapper 255: got nil error, want UnsupportedMapper")
	}
}
