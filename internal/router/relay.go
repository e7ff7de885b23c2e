package router

import (
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/rs/zerolog"
)

// ReportWriter is the host-facing side of the relay: a report is the
// message type byte plus the raw payload, no framing or checksum.
type ReportWriter interface {
	WriteReport(msgType byte, payload []byte) error
}

// Relay is the bridge unit's forwarding logic. On any input message from
// the display-facing link it acks the sender immediately and forwards the
// payload to the host report channel. The ack confirms "received by the
// relay" only; waiting on host execution would couple display
// responsiveness to host process health, so past this point delivery is
// fire-and-forget.
type Relay struct {
	display *Router
	reports ReportWriter
	log     zerolog.Logger
}

// NewRelay wires the display-facing router to the host report channel.
func NewRelay(display *Router, reports ReportWriter, logger zerolog.Logger) *Relay {
	return &Relay{display: display, reports: reports, log: logger}
}

// relayedTypes are the message kinds forwarded host-ward. Acks terminate
// at the relay; stats originate at the host, but a display-originated
// stats frame (loopback diagnostics) is still forwarded faithfully.
var relayedTypes = []byte{
	message.TypeInputIdentity,
	message.TypeHardwareInput,
	message.TypeKeystroke,
	message.TypeMediaKey,
	message.TypeStats,
	message.TypeStatsLegacy,
}

// Bind registers the relay handlers on the display router.
func (rl *Relay) Bind() {
	for _, t := range relayedTypes {
		rl.display.Handle(t, rl.forward)
	}
}

func (rl *Relay) forward(in Inbound) {
	// Ack first: cheap, synchronous, and independent of the host hop.
	if err := rl.display.Send(message.Ack{Status: message.AckReceived}); err != nil {
		rl.log.Warn().Err(err).Msg("ack send failed")
	}

	// Forward the payload bytes that actually arrived. The statistics
	// stream is variable-length TLV; assuming any fixed struct size here
	// would truncate larger metric sets.
	if err := rl.reports.WriteReport(in.Type, in.Payload); err != nil {
		// Fire-and-forget: no retry, no back-pressure to the display.
		rl.log.Warn().Err(err).Uint8("type", in.Type).Msg("report forward failed")
		return
	}
	observability.RecordRelayForward(in.Type)
}
