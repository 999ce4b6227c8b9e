package apu

// envelope is the divider-driven volume decay unit shared by the
// pulse and noise channels: $x000/$x004/$400C bits 4-5 select between
// a constant volume and a looping 15-down-to-0 decay.
type envelope struct {
	start        bool
	loop         bool
	constant     bool
	volume       uint8 // constant-volume level, or the envelope's reload period
	decayLevel   uint8
	divider      uint8
}

func (e *envelope) write(val uint8) {
	e.loop = val&0x20 != 0
	e.constant = val&0x10 != 0
	e.volume = val & 0x0F
	e.start = true
}

// clock runs once per quarter-frame (envelope/linear-counter clock).
func (e *envelope) clock() {
	if e.start {
		e.start = false
		e.decayLevel = 15
		e.divider = e.volume
		return
	}
	if e.divider == 0 {
		e.divider = e.volume
		switch {
		case e.decayLevel > 0:
			e.decayLevel--
		case e.loop:
			e.decayLevel = 15
		}
		return
	}
	e.divider--
}

func (e *envelope) output() uint8 {
	if e.constant {
		return e.volume
	}
	return e.decayLevel
}
