// Package bridge is the USB-bridge unit's core: it relays input messages
// from the display-facing link to the host report channel (acking the
// display immediately) and forwards host-originated reports, such as the
// statistics stream, back over the link.
package bridge

import (
	"context"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/link"
	"github.com/NoobyNull/crowdisplay/internal/report"
	"github.com/NoobyNull/crowdisplay/internal/router"
	"github.com/rs/zerolog"
)

// Unit is the bridge-side core.
type Unit struct {
	display *router.Router
	relay   *router.Relay
	reports *report.Channel
	log     zerolog.Logger
}

// New wires the display-facing link to the host report channel.
func New(displayLink link.Link, reports *report.Channel, logger zerolog.Logger) *Unit {
	r := router.New(displayLink, logger)
	u := &Unit{
		display: r,
		relay:   router.NewRelay(r, reports, logger),
		reports: reports,
		log:     logger,
	}
	u.relay.Bind()
	return u
}

// Run drives both directions until ctx is canceled.
func (u *Unit) Run(ctx context.Context) error {
	errc := make(chan error, 2)
	go func() { errc <- u.display.Run(ctx) }()
	go func() { errc <- u.runHostward(ctx) }()

	select {
	case <-ctx.Done():
		_ = u.display.Close()
		_ = u.reports.Close()
		<-errc
		<-errc
		return ctx.Err()
	case err := <-errc:
		_ = u.display.Close()
		_ = u.reports.Close()
		return err
	}
}

// runHostward forwards host-originated reports to the display link,
// re-framing them for the lossy hop. The payload bytes stay canonical
// end-to-end.
func (u *Unit) runHostward(ctx context.Context) error {
	for {
		msgType, payload, err := u.reports.ReadReport(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Host side may simply not be attached yet.
			u.log.Debug().Err(err).Msg("report read failed, retrying")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		if err := u.display.SendRaw(msgType, payload); err != nil {
			u.log.Debug().Err(err).Uint8("type", msgType).Msg("hostward forward dropped")
		}
	}
}
