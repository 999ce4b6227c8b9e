package dma

import "testing"

type action struct {
	kind   string
	addr   uint16
	offset uint8
	val    uint8
}

type fakeCtx struct {
	cycle   int
	oddBase bool
	actions []action
	mem     map[uint16]uint8
}

func newFakeCtx(oddBase bool) *fakeCtx {
	return &fakeCtx{oddBase: oddBase, mem: map[uint16]uint8{}}
}

func (f *fakeCtx) Fetch(addr uint16) uint8 {
	v := f.mem[addr]
	f.actions = append(f.actions, action{kind: "fetch", addr: addr, val: v})
	f.cycle++
	return v
}

func (f *fakeCtx) IsOddCycle() bool {
	return (f.cycle%2 == 1) != f.oddBase
}

func (f *fakeCtx) WriteOAM(offset, val uint8) {
	f.actions = append(f.actions, action{kind: "oam", offset: offset, val: val})
	f.cycle++
}

func (f *fakeCtx) DMCFillFinished(val uint8) {
	f.actions = append(f.actions, action{kind: "dmc", val: val})
}

func TestSpriteDMACopies256Bytes(t *testing.T) {
	ctx := newFakeCtx(false)
	for i := 0; i < 256; i++ {
		ctx.mem[0x0200+uint16(i)] = uint8(i)
	}
	var c Controller
	c.ActivateSpriteDMA(0x0200)
	c.Execute(ctx, 0x4014)

	var writes int
	for _, a := range ctx.actions {
		if a.kind == "oam" {
			if a.val != uint8(writes) {
				t.Fatalf("oam write %d = %#02x, want %#02x", writes, a.val, writes)
			}
			writes++
		}
	}
	if writes != 256 {
		t.Fatalf("wrote %d OAM bytes, want 256", writes)
	}
	if c.Pending() {
		t.Errorf("Controller should have no pending DMA after completion")
	}
}

func TestDMCDMAFetchesOneByteAndCallsBack(t *testing.T) {
	ctx := newFakeCtx(false)
	ctx.mem[0xC100] = 0x55
	var c Controller
	c.ActivateDMCDMA(0xC100)
	c.Execute(ctx, 0x2002)

	var got uint8
	found := false
	for _, a := range ctx.actions {
		if a.kind == "dmc" {
			got = a.val
			found = true
		}
	}
	if !found {
		t.Fatal("DMCFillFinished was never called")
	}
	if got != 0x55 {
		t.Errorf("DMC fill value = %#02x, want 0x55", got)
	}
	if c.Pending() {
		t.Errorf("Controller should have no pending DMA after completion")
	}
}

func TestExecuteIsNoopWithoutPendingDMA(t *testing.T) {
	ctx := newFakeCtx(false)
	var c Controller
	c.Execute(ctx, 0x1234)
	if len(ctx.actions) != 0 {
		t.Errorf("Execute with nothing pending should not touch the bus, got %d actions", len(ctx.actions))
	}
}

func TestDMCDuringSpriteDMAInterleaves(t *testing.T) {
	ctx := newFakeCtx(false)
	for i := 0; i < 256; i++ {
		ctx.mem[0x0300+uint16(i)] = uint8(i)
	}
	ctx.mem[0xC200] = 0xAA

	var c Controller
	c.ActivateSpriteDMA(0x0300)
	c.ActivateDMCDMA(0xC200)
	c.Execute(ctx, 0x4014)

	oamWrites, dmcFills := 0, 0
	for _, a := range ctx.actions {
		switch a.kind {
		case "oam":
			oamWrites++
		case "dmc":
			dmcFills++
		}
	}
	if oamWrites != 256 {
		t.Errorf("oam writes = %d, want 256", oamWrites)
	}
	if dmcFills != 1 {
		t.Errorf("dmc fills = %d, want 1", dmcFills)
	}
	if c.Pending() {
		t.Errorf("both DMAs should have drained")
	}
}
