package ppu

import "testing"

type fakeBus struct {
	mem [0x3000]uint8
}

func (b *fakeBus) ReadCHR(addr uint16) uint8      { return b.mem[addr&0x2FFF] }
func (b *fakeBus) WriteCHR(addr uint16, v uint8) { b.mem[addr&0x2FFF] = v }

func TestWriteRegPPUCTRLSetsNametableBitsOfT(t *testing.T) {
	p := New(&fakeBus{})
	p.WriteReg(PPUCTRL, 0b10)
	if got, want := p.t.data, uint16(0b10_00000000_00); got != want {
		t.Errorf("t = %015b, want %015b", got, want)
	}
}

func TestWriteRegPPUSCROLLThenPPUADDRLatchSequence(t *testing.T) {
	p := New(&fakeBus{})

	p.WriteReg(PPUSCROLL, 0x7D) // coarse X = 0x0F, fine X = 5
	if p.x != 5 {
		t.Errorf("fine X = %d, want 5", p.x)
	}
	if !p.w {
		t.Errorf("write latch should be set after first PPUSCROLL write")
	}

	p.WriteReg(PPUSCROLL, 0x5E) // fine Y = 6, coarse Y = 0x0B
	if p.w {
		t.Errorf("write latch should clear after second PPUSCROLL write")
	}
	if got := p.t.fineY(); got != 6 {
		t.Errorf("fine Y = %d, want 6", got)
	}

	p.WriteReg(PPUADDR, 0x21)
	p.WriteReg(PPUADDR, 0x08)
	if p.v.data != 0x2108 {
		t.Errorf("v = %#04x, want 0x2108 (latched on second PPUADDR write)", p.v.data)
	}
}

func TestPPUDATAReadIsBufferedExceptPalette(t *testing.T) {
	p := New(&fakeBus{})
	p.v.data = 0x2000
	p.bus.(*fakeBus).mem[0x2000] = 0xAB
	p.bus.(*fakeBus).mem[0x2001] = 0xCD

	if got := p.ReadReg(PPUDATA); got != 0 {
		t.Errorf("first buffered read = %#02x, want 0 (buffer primed, not yet filled)", got)
	}
	if got := p.ReadReg(PPUDATA); got != 0xAB {
		t.Errorf("second read = %#02x, want 0xAB (returns the primed buffer)", got)
	}

	p.v.data = 0x3F05
	p.writePalette(0x3F05, 0x2A)
	if got := p.ReadReg(PPUDATA); got != 0x2A {
		t.Errorf("palette read = %#02x, want 0x2A (direct, unbuffered)", got)
	}
}

func TestPaletteMirroring(t *testing.T) {
	p := New(&fakeBus{})
	p.writePalette(0x3F00, 0x0F)
	if got := p.readPalette(0x3F10); got != 0x0F {
		t.Errorf("readPalette(0x3F10) = %#02x, want 0x0F (mirrors 0x3F00)", got)
	}
}

func TestVBlankSetAtScanline241Dot1AndClearedOnStatusRead(t *testing.T) {
	p := New(&fakeBus{})
	p.ctrl = CtrlNMIEnable
	p.scanline, p.dot = 241, 1
	p.Step()
	if p.status&StatusVBlank == 0 {
		t.Fatal("VBlank flag should be set at scanline 241 dot 1")
	}
	if !p.NMILine() {
		t.Errorf("NMI line should be high once VBlank is set with NMI enabled")
	}
	if !p.FrameReady {
		t.Errorf("FrameReady should be set for the Step call that enters VBlank")
	}

	v := p.ReadReg(PPUSTATUS)
	if v&StatusVBlank == 0 {
		t.Errorf("status read should still observe VBlank set at the moment of reading")
	}
	if p.status&StatusVBlank != 0 {
		t.Errorf("VBlank flag should clear as a side effect of reading PPUSTATUS")
	}
	if p.NMILine() {
		t.Errorf("NMI line should drop once VBlank is cleared")
	}
}

func TestPreRenderClearsStatusFlags(t *testing.T) {
	p := New(&fakeBus{})
	p.status = StatusVBlank | StatusSprite0 | StatusOverflow
	p.scanline, p.dot = -1, 1
	p.Step()
	if p.status != 0 {
		t.Errorf("status = %#02x, want 0 after dot 1 of the pre-render line", p.status)
	}
}

func TestSpriteEvaluationPicksInRangeSprites(t *testing.T) {
	p := New(&fakeBus{})
	p.oam[0] = 10 // sprite 0, Y=10
	p.oam[4] = 200 // sprite 1, far offscreen for this line
	p.scanline = 12
	p.evaluateSprites()
	if p.secondaryN != 1 {
		t.Fatalf("secondaryN = %d, want 1", p.secondaryN)
	}
	if !p.spriteZeroOnLine {
		t.Errorf("sprite 0 should be flagged present on this line")
	}
}

func TestSpriteOverflowFlagsPastEightSprites(t *testing.T) {
	p := New(&fakeBus{})
	for i := 0; i < 9; i++ {
		p.oam[i*4] = 5 // all on the same line
	}
	p.scanline = 5
	p.evaluateSprites()
	if p.secondaryN != 8 {
		t.Errorf("secondaryN = %d, want 8 (capped)", p.secondaryN)
	}
	if p.status&StatusOverflow == 0 {
		t.Errorf("StatusOverflow should be set once a 9th in-range sprite is seen")
	}
}

func TestLoopyGet(t *testing.T) {
	cases := []struct {
		data                           uint16
		wantCoarseX, wantCoarseY       uint16
		wantNameTableX, wantNameTableY uint16
		wantFineY                      uint16
	}{
		{0b0000_0000_0000_0000, 0, 0, 0, 0, 0},
		{0b0111_1011_1001_1000, 0b11000, 0b11100, 0, 1, 0b111},
		{0b0011_0111_1001_0111, 0b10111, 0b11100, 1, 0, 0b011},
		{0b0011_1111_1001_0111, 0b10111, 0b11100, 1, 1, 0b011},
		{0b0011_0011_1011_0111, 0b10111, 0b11101, 0, 0, 0b011},
		{0b0011_0000_0001_0111, 0b10111, 0, 0, 0, 0b011},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		cx, cy, ntx, nty, fy := l.coarseX(), l.coarseY(), l.nametableX(), l.nametableY(), l.fineY()
		if cx != tc.wantCoarseX || cy != tc.wantCoarseY || ntx != tc.wantNameTableX || nty != tc.wantNameTableY || fy != tc.wantFineY {
			t.Errorf("%d: Got %016b, %016b, %016b, %016b, %016b, wanted %016b, %016b, %016b, %016b, %016b", i, cx, cy, ntx, nty, fy, tc.wantCoarseX, tc.wantCoarseY, tc.wantNameTableX, tc.wantNameTableY, tc.wantFineY)
		}
	}
}

func TestLoopySetCoarseX(t *testing.T) {
	cases := []struct {
		data     uint16
		ocx, ncx uint16
	}{
		{0b0000_0000_0000_0000, 0, 0},
		{0b0111_1011_1001_1000, 0b11000, 0b11100},
		{0b0011_0111_1001_0111, 0b10111, 0b11100},
		{0b0011_1111_1001_0111, 0b10111, 0b10000},
		{0b0011_0011_1011_0111, 0b10111, 0b11101},
		{0b0011_0000_0001_0111, 0b10111, 0b00100},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ocx := l.coarseX()
		l.setCoarseX(tc.ncx)
		if got := l.coarseX(); ocx != tc.ocx || got != tc.ncx {
			t.Errorf("%d: Got ocx = %05b, ncx = %05b, wanted %05b, %05b", i, ocx, got, tc.ocx, tc.ncx)

		}
	}
}

func TestLoopyIncrementCoarseX(t *testing.T) {
	cases := []struct {
		data     uint16
		ocx, ncx uint16
	}{
		{0b0000_0000_0000_0000, 0, 1},
		{0b0111_1011_1001_1000, 0b11000, 0b11001},
		{0b0011_0111_1011_0111, 0b10111, 0b11000},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ocx := l.coarseX()
		l.incrementCoarseX()
		if got := l.coarseX(); ocx != tc.ocx || got != tc.ncx {
			t.Errorf("%d: Got ocx = %05b, ncx = %05b, wanted %05b, %05b", i, ocx, got, tc.ocx, tc.ncx)

		}
	}
}

func TestLoopySetCoarseY(t *testing.T) {
	cases := []struct {
		data     uint16
		ocy, ncy uint16
	}{
		{0b0000_0000_0000_0000, 0, 0},
		{0b0111_1011_1001_1000, 0b11100, 0b11100},
		{0b0011_0111_1011_0111, 0b11101, 0b10000},
		{0b0011_1111_1111_0111, 0b11111, 0b00000},
		{0b0011_0001_0101_0111, 0b01010, 0b10101},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ocy := l.coarseY()
		l.setCoarseY(tc.ncy)
		if got := l.coarseY(); ocy != tc.ocy || got != tc.ncy {
			t.Errorf("%d: Got ocy = %05b, ncy = %05b, wanted %05b, %05b", i, ocy, got, tc.ocy, tc.ncy)

		}
	}
}

func TestLoopyIncrementCoarseY(t *testing.T) {
	cases := []struct {
		data     uint16
		ocy, ncy uint16
	}{
		{0b0000_0000_0000_0000, 0, 1},
		{0b0111_1011_1001_1000, 0b11100, 0b11101},
		{0b0011_0111_1011_0111, 0b11101, 0b11110},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ocy := l.coarseY()
		l.incrementCoarseY()
		if got := l.coarseY(); ocy != tc.ocy || got != tc.ncy {
			t.Errorf("%d: Got ocy = %05b, ncy = %05b, wanted %05b, %05b", i, ocy, got, tc.ocy, tc.ncy)

		}
	}
}

func TestLoopyToggleNametableX(t *testing.T) {
	cases := []struct {
		data     uint16
		ox, nx   uint16
		wantData uint16
	}{
		{0b0000_0000_0000_0000, 0, 1, 0b0000_0100_0000_0000},
		{0b0000_0100_0000_0000, 1, 0, 0b0000_0000_0000_0000},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ox := l.nametableX()
		l.toggleNametableX()
		if got := l.nametableX(); ox != tc.ox || got != tc.nx || l.data != tc.wantData {
			t.Errorf("%d: Got ox = %01b, nx = %01b (%016b), wanted %01b, %01b (%016b)", i, ox, got, l.data, tc.ox, tc.nx, tc.wantData)

		}
	}
}

func TestLoopyToggleNametableY(t *testing.T) {
	cases := []struct {
		data     uint16
		oy, ny   uint16
		wantData uint16
	}{
		{0b0000_0000_0000_0000, 0, 1, 0b0000_1000_0000_0000},
		{0b0000_1000_0000_0000, 1, 0, 0b0000_0000_0000_0000},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		oy := l.nametableY()
		l.toggleNametableY()
		if got := l.nametableY(); oy != tc.oy || got != tc.ny || l.data != tc.wantData {
			t.Errorf("%d: Got oy = %01b, ny = %01b (%016b), wanted %01b, %01b (%016b)", i, oy, got, l.data, tc.oy, tc.ny, tc.wantData)

		}
	}
}

func TestLoopySetFineY(t *testing.T) {
	cases := []struct {
		data     uint16
		ofy, nfy uint16
	}{
		{0b0000_0000_0000_0000, 0, 0},
		{0b0111_1011_1001_1000, 0b111, 0b101},
		{0b0011_0111_1011_0111, 0b011, 0},
		{0b0111_1111_1111_0111, 0b111, 0b010},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ofy := l.fineY()
		l.setFineY(tc.nfy)
		if got := l.fineY(); ofy != tc.ofy || got != tc.nfy {
			t.Errorf("%d: Got ofy = %03b, nfy = %03b, wanted %03b, %03b", i, ofy, got, tc.ofy, tc.nfy)

		}
	}
}

func TestLoopyIncrementFineY(t *testing.T) {
	cases := []struct {
		data     uint16
		ofy, nfy uint16
	}{
		{0b0000_0000_0000_0000, 0, 1},
		{0b0110_1011_1001_1000, 0b110, 0b111},
		{0b0011_0111_1011_0111, 0b011, 0b100},
	}

	for i, tc := range cases {
		l := &loopy{tc.data}

		ofy := l.fineY()
		l.incrementFineY()
		if got := l.fineY(); ofy != tc.ofy || got != tc.nfy {
			t.Errorf("%d: Got ofy = %03b, nfy = %03b, wanted %03b, %03b", i, ofy, got, tc.ofy, tc.nfy)

		}
	}
}

func TestOAMAttributes(t *testing.T) {
	cases := []struct {
		attrib         uint8
		wantPa         uint8
		wantPr         priority
		wantFH, wantFV bool
	}{
		{0b11111111, 0x03, BACK, true, true},
		{0b01111111, 0x03, BACK, true, false},
		{0b00111111, 0x03, BACK, false, false},
		{0b00111101, 0x01, BACK, false, false},
		{0b00011101, 0x01, FRONT, false, false},
		{0b10011101, 0x01, FRONT, false, true},
		{0b10011110, 0x02, FRONT, false, true},
	}

	for i, tc := range cases {
		o := OAMFromBytes([]uint8{0, 0, tc.attrib, 0})

		if o.palette != tc.wantPa || o.renderP != tc.wantPr || o.flipH != tc.wantFH || o.flipV != tc.wantFV {
			t.Errorf("%d: %02x, %d, %t, %t; wanted %02x, %d, %t, %t", i, o.palette, o.renderP, o.flipH, o.flipV, tc.wantPa, tc.wantPr, tc.wantFH, tc.wantFV)
		}
	}
}
