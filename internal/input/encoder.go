package input

import "time"

// RotateWindow rate-limits accepted rotation events. The Gray-code filter
// rejects non-adjacent jumps, but residual bounce can still walk the
// state forward; one event per 80 ms window catches that.
const RotateWindow = 80 * time.Millisecond

// stepsPerDetent is the quadrature steps in one full detent cycle.
const stepsPerDetent = 4

const invalidStep int8 = 127

// quadTable maps previous_state*4 + current_state to a step direction.
// States are the 2-bit (clock, data) pair; non-adjacent Gray-code jumps
// indicate contact bounce and are discarded.
var quadTable = [16]int8{
	0, +1, -1, invalidStep,
	-1, 0, invalidStep, +1,
	+1, invalidStep, 0, -1,
	invalidStep, -1, +1, 0,
}

// encoderState accumulates quadrature steps into detent events.
type encoderState struct {
	prev      uint8
	primed    bool
	accum     int8
	lastEvent time.Time
}

// step feeds one 2-bit quadrature sample and reports a completed detent:
// +1 clockwise, -1 counter-clockwise, 0 none.
func (e *encoderState) step(state uint8, now time.Time) int8 {
	if !e.primed {
		e.prev = state
		e.primed = true
		return 0
	}
	if state == e.prev {
		return 0
	}
	dir := quadTable[e.prev*4+state]
	e.prev = state
	if dir == invalidStep {
		// Bounce glitch; drop the partial cycle too.
		e.accum = 0
		return 0
	}
	e.accum += dir
	if e.accum != stepsPerDetent && e.accum != -stepsPerDetent {
		return 0
	}
	detent := e.accum / stepsPerDetent
	e.accum = 0
	if now.Sub(e.lastEvent) < RotateWindow {
		// Residual bounce the Gray-code filter let through.
		return 0
	}
	e.lastEvent = now
	return detent
}
