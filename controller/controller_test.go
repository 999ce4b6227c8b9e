package controller

import "testing"

func TestStrobeModeContinuouslyReflectsA(t *testing.T) {
	var p Port
	p.Write(1)
	p.SetButtonState(A, true)
	if got := p.Read(); got != 1 {
		t.Errorf("Read() = %d, want 1 with A held and strobe high", got)
	}
	p.SetButtonState(A, false)
	if got := p.Read(); got != 0 {
		t.Errorf("Read() = %d, want 0 once A releases, still strobing", got)
	}
}

func TestShiftOutOrderIsLSBFirst(t *testing.T) {
	var p Port
	p.SetButtonState(A, true)
	p.SetButtonState(Start, true)
	p.Write(1) // strobe high, latch primed
	p.Write(0) // strobe low, freeze the shift register

	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		if got := p.Read(); got != w {
			t.Errorf("bit %d = %d, want %d", i, got, w)
		}
	}
}

func TestReadsPastEighthBitReturnOne(t *testing.T) {
	var p Port
	p.Write(1)
	p.Write(0)
	for i := 0; i < numButtons; i++ {
		p.Read()
	}
	if got := p.Read(); got != 1 {
		t.Errorf("Read() past bit 8 = %d, want 1", got)
	}
}

func TestOppositeDirectionsAreFilteredAtLatch(t *testing.T) {
	var p Port
	p.SetButtonState(Left, true)
	p.SetButtonState(Right, true)
	p.SetButtonState(Up, true)
	p.Write(1)
	p.Write(0)

	for i := Button(0); i < Left; i++ {
		if got := p.Read(); i == Up {
			if got != 1 {
				t.Errorf("Up should still read 1")
			}
		} else if got != 0 {
			t.Errorf("button %d should read 0", i)
		}
	}
	if got := p.Read(); got != 0 { // Left
		t.Errorf("Left = %d, want 0 (filtered, Right also held)", got)
	}
	if got := p.Read(); got != 0 { // Right
		t.Errorf("Right = %d, want 0 (filtered, Left also held)", got)
	}
}
