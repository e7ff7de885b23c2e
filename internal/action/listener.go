package action

import (
	"context"

	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/NoobyNull/crowdisplay/internal/report"
	"github.com/rs/zerolog"
)

// Listener drains the host report channel and hands each resolved input
// identity to the dispatcher. It shares the channel handle with the
// statistics streamer; the channel's lock keeps their I/O from
// interleaving.
type Listener struct {
	ch  *report.Channel
	d   *Dispatcher
	log zerolog.Logger
}

// NewListener builds the report-channel listener.
func NewListener(ch *report.Channel, d *Dispatcher, logger zerolog.Logger) *Listener {
	return &Listener{ch: ch, d: d, log: logger}
}

// Run reads reports until ctx is canceled. Undecodable reports are
// logged and dropped; the listener itself never executes an action
// inline.
func (l *Listener) Run(ctx context.Context) error {
	for {
		msgType, payload, err := l.ch.ReadReport(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		msg, err := message.Decode(msgType, payload)
		if err != nil {
			l.log.Warn().Err(err).Uint8("type", msgType).Msg("report dropped")
			continue
		}
		switch m := msg.(type) {
		case message.InputIdentity:
			l.d.Dispatch(Identity{Page: m.Page, Widget: m.Widget})
		case message.HardwareInput:
			page, widget := m.Identity()
			l.d.Dispatch(Identity{Page: page, Widget: widget})
		case message.Keystroke:
			l.d.DispatchLegacyKeystroke(m.Modifiers, m.Key)
		case message.MediaKey:
			l.d.DispatchLegacyMediaKey(m.Code)
		case message.Ack, message.Stats, message.StatsLegacy:
			// Not host-bound input; acks terminate at the relay and stats
			// originate here.
			l.log.Debug().Uint8("type", msgType).Msg("non-input report ignored")
		}
	}
}
