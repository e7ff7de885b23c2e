// Package input polls the multiplexed hardware-input bank: four momentary
// buttons and one quadrature rotary encoder with a detent switch, all
// behind a 16-bit I/O expander on the shared bus.
package input

import (
	"time"

	"github.com/NoobyNull/crowdisplay/internal/bus"
)

// Expander register and default addressing. The expander is a PCA9555-
// class part reached through a TCA9548-class channel multiplexer.
const (
	DefaultMuxAddr      uint16 = 0x70
	DefaultExpanderAddr uint16 = 0x20
	DefaultMuxChannel   uint8  = 2

	regInputPort0 byte = 0x00
)

// PinReader reads the raw 16-bit input state. The concrete Expander runs
// the select/read/deselect transaction; tests substitute fakes.
type PinReader interface {
	ReadPins(timeout time.Duration) (uint16, error)
}

// Expander reads the input register through the shared bus. The whole
// select-read-deselect sequence runs under one bus guard; the touch
// controller on the same bus can never observe a half-done transaction.
type Expander struct {
	bus     *bus.SharedBus
	muxAddr uint16
	expAddr uint16
	channel uint8
}

// NewExpander wires the expander to the shared bus with default
// addressing.
func NewExpander(shared *bus.SharedBus) *Expander {
	return &Expander{
		bus:     shared,
		muxAddr: DefaultMuxAddr,
		expAddr: DefaultExpanderAddr,
		channel: DefaultMuxChannel,
	}
}

// ReadPins returns the current input levels, one bit per pin, active low.
// Bus contention or an absent device surfaces as an error; callers treat
// that as "no event this cycle".
func (e *Expander) ReadPins(timeout time.Duration) (uint16, error) {
	guard, err := e.bus.Acquire(timeout)
	if err != nil {
		return 0, err
	}
	defer guard.Release()

	if err := guard.Tx(e.muxAddr, []byte{1 << e.channel}, nil); err != nil {
		return 0, err
	}

	var raw [2]byte
	readErr := guard.Tx(e.expAddr, []byte{regInputPort0}, raw[:])

	// Deselect before releasing even when the read failed; a stuck mux
	// channel corrupts the next touch-controller transaction.
	if err := guard.Tx(e.muxAddr, []byte{0}, nil); err != nil && readErr == nil {
		readErr = err
	}
	if readErr != nil {
		return 0, readErr
	}
	return uint16(raw[0]) | uint16(raw[1])<<8, nil
}
