// Package display is the touch-display unit's core loop: it polls the
// hardware input bank, forwards press events over the link, tracks relay
// acknowledgements, and hands inbound statistics to the rendering layer.
package display

import (
	"context"
	"sync"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/input"
	"github.com/NoobyNull/crowdisplay/internal/link"
	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
	"github.com/NoobyNull/crowdisplay/internal/router"
	"github.com/rs/zerolog"
)

// AckTimeout is how long the unit waits for the relay's acknowledgement
// before the single retransmit. Past that the event is dropped; the relay
// hop is the only acknowledged hop in the system.
const AckTimeout = 250 * time.Millisecond

// StatsHandler receives decoded statistics for rendering.
type StatsHandler func(metrics []tlv.Metric)

// Unit is the display-side core.
type Unit struct {
	router  *router.Router
	poller  *input.Poller
	now     func() time.Time
	onStats StatsHandler
	log     zerolog.Logger

	mu      sync.Mutex
	pending *pendingSend
}

type pendingSend struct {
	msgType byte
	payload []byte
	sentAt  time.Time
	resent  bool
}

// New builds the display unit over a link. The poller may be nil when the
// hardware input bank is absent; touch presses still flow.
func New(l link.Link, poller *input.Poller, logger zerolog.Logger) *Unit {
	u := &Unit{
		router: router.New(l, logger),
		poller: poller,
		now:    time.Now,
		log:    logger,
	}
	u.router.Handle(message.TypeAck, u.handleAck)
	u.router.Handle(message.TypeStats, u.handleStats)
	return u
}

// WithClock substitutes the time source for tests.
func (u *Unit) WithClock(now func() time.Time) *Unit {
	u.now = now
	return u
}

// OnStats installs the rendering layer's statistics hook.
func (u *Unit) OnStats(h StatsHandler) {
	u.onStats = h
}

// SendPress is the touch layer's entry point: transmit a widget press.
// Delivery is attempted and, on link failure, dropped silently.
func (u *Unit) SendPress(page, widget uint8) error {
	return u.send(message.InputIdentity{Page: page, Widget: widget})
}

// SendHardware transmits a hardware input event directly, bypassing the
// poller. Simulators use it to emulate the button bank.
func (u *Unit) SendHardware(input uint8, delta int8) error {
	return u.send(message.HardwareInput{Input: input, Delta: delta})
}

func (u *Unit) send(m message.Message) error {
	payload, err := m.EncodePayload()
	if err != nil {
		return err
	}
	if err := u.router.SendRaw(m.Type(), payload); err != nil {
		u.log.Debug().Err(err).Msg("press send failed, dropped")
		return err
	}
	u.mu.Lock()
	u.pending = &pendingSend{msgType: m.Type(), payload: payload, sentAt: u.now()}
	u.mu.Unlock()
	return nil
}

func (u *Unit) handleAck(in router.Inbound) {
	ack := in.Msg.(message.Ack)
	u.mu.Lock()
	u.pending = nil
	u.mu.Unlock()
	if ack.Status != message.AckReceived {
		u.log.Warn().Uint8("status", ack.Status).Msg("relay reported bad frame")
	}
}

func (u *Unit) handleStats(in router.Inbound) {
	if u.onStats == nil {
		return
	}
	stats := in.Msg.(message.Stats)
	u.onStats(stats.Metrics)
}

// checkResend retransmits the newest unacknowledged frame once. After
// that the event is gone; the wire contract past the relay is
// fire-and-forget anyway.
func (u *Unit) checkResend() {
	u.mu.Lock()
	defer u.mu.Unlock()
	p := u.pending
	if p == nil || u.now().Sub(p.sentAt) < AckTimeout {
		return
	}
	if p.resent {
		u.pending = nil
		u.log.Debug().Uint8("type", p.msgType).Msg("no ack after retransmit, dropped")
		return
	}
	p.resent = true
	p.sentAt = u.now()
	if err := u.router.SendRaw(p.msgType, p.payload); err != nil {
		u.pending = nil
	}
}

// Run drives the unit until ctx is canceled: the link read loop plus the
// fixed-cadence input poll.
func (u *Unit) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- u.router.Run(ctx) }()

	ticker := time.NewTicker(input.PollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			_ = u.router.Close()
			<-errc
			return ctx.Err()
		case err := <-errc:
			return err
		case <-ticker.C:
			u.PollOnce()
		}
	}
}

// PollOnce runs one input poll cycle and the ack-resend check. Exposed so
// simulators and tests can drive the cadence themselves.
func (u *Unit) PollOnce() {
	if u.poller != nil {
		if ev, ok := u.poller.Poll(); ok {
			_ = u.send(ev.Message())
		}
	}
	u.checkResend()
}
