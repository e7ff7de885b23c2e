package input

import (
	"time"

	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/rs/zerolog"
)

// PollInterval is the cadence the display unit calls Poll at.
const PollInterval = 50 * time.Millisecond

// Poller turns raw expander reads into discrete input events. One poll
// cycle is one bus-exclusive read; a cycle that cannot get the bus or the
// device simply produces no event.
type Poller struct {
	pins    PinReader
	pinMap  PinMap
	timeout time.Duration
	now     func() time.Time
	log     zerolog.Logger

	buttons [4]buttonState
	detent  buttonState
	encoder encoderState

	absent bool
}

// NewPoller builds a poller over a pin reader. The zero option set uses
// the board's default pin map and the bus default acquisition timeout.
func NewPoller(pins PinReader, logger zerolog.Logger) *Poller {
	return &Poller{
		pins:   pins,
		pinMap: DefaultPinMap(),
		now:    time.Now,
		log:    logger,
	}
}

// WithPinMap overrides the board pin map.
func (p *Poller) WithPinMap(m PinMap) *Poller {
	p.pinMap = m
	return p
}

// WithClock substitutes the time source. Tests drive debounce windows
// deterministically with this.
func (p *Poller) WithClock(now func() time.Time) *Poller {
	p.now = now
	return p
}

// Poll runs one cycle and returns at most one event. Absent or contended
// hardware degrades to "no event" without disabling the rest of the
// system.
func (p *Poller) Poll() (Event, bool) {
	raw, err := p.pins.ReadPins(p.timeout)
	if err != nil {
		if !p.absent {
			p.absent = true
			p.log.Debug().Err(err).Msg("input bank unavailable, skipping cycles")
		}
		return Event{}, false
	}
	if p.absent {
		p.absent = false
		p.log.Debug().Msg("input bank back")
	}
	now := p.now()

	// Active low: a zero bit is a pressed contact.
	for i := range p.buttons {
		pressed := raw&(1<<p.pinMap.ButtonBits[i]) == 0
		if p.buttons[i].press(pressed, now) {
			return Event{Input: message.InputButton0 + uint8(i)}, true
		}
	}
	if p.detent.press(raw&(1<<p.pinMap.EncoderPressBit) == 0, now) {
		return Event{Input: message.InputEncoderPress}, true
	}

	var quad uint8
	if raw&(1<<p.pinMap.EncoderClockBit) != 0 {
		quad |= 0x02
	}
	if raw&(1<<p.pinMap.EncoderDataBit) != 0 {
		quad |= 0x01
	}
	switch p.encoder.step(quad, now) {
	case +1:
		return Event{Input: message.InputEncoderCW, Delta: +1}, true
	case -1:
		return Event{Input: message.InputEncoderCCW, Delta: -1}, true
	}
	return Event{}, false
}
