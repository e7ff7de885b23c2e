package input

import "time"

// DebounceWindow is the minimum stable time between accepted button
// transitions. Mechanical contacts on this hardware ring for well under
// 50 ms.
const DebounceWindow = 50 * time.Millisecond

// buttonState tracks one momentary button: last debounced logical level
// and the time of the last accepted transition.
type buttonState struct {
	pressed      bool
	lastAccepted time.Time
}

// press reports whether the new raw level constitutes an accepted press.
// Single-press semantics: releases update state but never produce events,
// and there is no long-press or repeat.
func (b *buttonState) press(rawPressed bool, now time.Time) bool {
	if rawPressed == b.pressed {
		return false
	}
	if now.Sub(b.lastAccepted) < DebounceWindow {
		return false
	}
	b.pressed = rawPressed
	b.lastAccepted = now
	return rawPressed
}
