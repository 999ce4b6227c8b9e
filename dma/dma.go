// Package dma models the two cycle-stealing DMA engines that share
// the CPU's bus: sprite DMA (OAMDMA, $4014) and the DMC channel's
// sample-fetch DMA. Both suspend the CPU mid-instruction; this
// package doesn't run on its own clock, it runs inside the bus's
// Read call the moment the CPU's next read would otherwise happen,
// exactly like the real chip intercepts the bus.
package dma

// Context is supplied by the bus to drive one access during a DMA
// run. Fetch must perform a real CPU-space read (and, transitively,
// clock the PPU/APU the way any other CPU cycle would) - including the
// halt and alignment cycles, which re-read the address the CPU
// originally tried to access.
type Context interface {
	Fetch(addr uint16) uint8
	IsOddCycle() bool
	WriteOAM(offset uint8, val uint8)
	DMCFillFinished(val uint8)
}

type progress int

const (
	progressNone progress = iota
	progressHalted
	progressAligned
)

// Controller tracks pending sprite and DMC DMA requests. The CPU's
// bus owns one Controller and calls Execute ahead of a CPU read
// whenever Pending reports a request.
type Controller struct {
	dmcRequested    bool
	dmcSource       uint16
	spriteRequested bool
	spriteSource    uint16
}

// ActivateDMCDMA requests a one-byte DMC sample fetch from source.
func (c *Controller) ActivateDMCDMA(source uint16) {
	c.dmcRequested = true
	c.dmcSource = source
}

// ActivateSpriteDMA requests a 256-byte OAM DMA from source (the high
// byte written to $4014, shifted to a full address).
func (c *Controller) ActivateSpriteDMA(source uint16) {
	c.spriteRequested = true
	c.spriteSource = source
}

// Pending reports whether a DMA run would do anything right now.
func (c *Controller) Pending() bool {
	return c.dmcRequested || c.spriteRequested
}

func (c *Controller) progressDMC(p *progress) {
	if !c.dmcRequested {
		return
	}
	switch *p {
	case progressNone:
		*p = progressHalted
	case progressHalted:
		*p = progressAligned
	}
}

// Execute runs any pending DMA to completion, hijacking the CPU
// access the bus was about to perform on its behalf. addr is the
// address the CPU tried to read; it's dummy-fetched first (the real
// chip can't tell the difference) and then however many halt, dummy
// and get/put cycles are needed run until both DMAs drain.
//
// Sprite DMA always reads on "get" (even) cycles and writes on "put"
// (odd) cycles; when a DMC fetch starts mid-sprite-DMA it needs its
// own halt-then-align pair before it can interleave, per
// http://forums.nesdev.com/viewtopic.php?f=3&t=14120.
func (c *Controller) Execute(ctx Context, addr uint16) {
	if !c.dmcRequested && !c.spriteRequested {
		return
	}

	dmcProgress := progressNone
	if c.dmcRequested {
		dmcProgress = progressHalted
	}

	var spriteValue uint8
	haveSpriteValue := false
	var spriteOffset uint8

	ctx.Fetch(addr)

	for {
		dmcReady := c.dmcRequested && dmcProgress == progressAligned && !ctx.IsOddCycle()
		spriteReadReady := c.spriteRequested && !haveSpriteValue && !ctx.IsOddCycle()
		spriteWriteReady := c.spriteRequested && haveSpriteValue && ctx.IsOddCycle()

		switch {
		case dmcReady:
			v := ctx.Fetch(c.dmcSource)
			c.dmcRequested = false
			ctx.DMCFillFinished(v)
		case spriteReadReady:
			c.progressDMC(&dmcProgress)
			spriteValue = ctx.Fetch(c.spriteSource + uint16(spriteOffset))
			haveSpriteValue = true
		case spriteWriteReady:
			c.progressDMC(&dmcProgress)
			ctx.WriteOAM(spriteOffset, spriteValue)
			haveSpriteValue = false
			spriteOffset++
			if spriteOffset == 0 {
				c.spriteRequested = false
			}
		case c.dmcRequested || c.spriteRequested:
			c.progressDMC(&dmcProgress)
			ctx.Fetch(addr)
		default:
			return
		}
	}
}
