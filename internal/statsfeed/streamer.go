package statsfeed

import (
	"context"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
	"github.com/rs/zerolog"
)

// DefaultInterval is the statistics refresh cadence.
const DefaultInterval = 2 * time.Second

// ReportWriter is the outbound side of the report channel.
type ReportWriter interface {
	WriteReport(msgType byte, payload []byte) error
}

// Streamer periodically samples the configured metric set and writes TLV
// statistics reports. Metric sets that would overflow the wire budget are
// truncated to whole metrics before framing.
type Streamer struct {
	reports  ReportWriter
	col      *Collector
	names    []string
	interval time.Duration
	log      zerolog.Logger
}

// NewStreamer builds a streamer for the named metric set.
func NewStreamer(reports ReportWriter, col *Collector, names []string, interval time.Duration, logger zerolog.Logger) *Streamer {
	if len(names) == 0 {
		names = DefaultMetricSet()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Streamer{reports: reports, col: col, names: names, interval: interval, log: logger}
}

// Run streams until ctx is canceled. Send failures are logged and the
// loop keeps going; the display simply misses a refresh.
func (s *Streamer) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.sendOnce()
		}
	}
}

func (s *Streamer) sendOnce() {
	metrics := s.col.Collect(s.names)
	if len(metrics) == 0 {
		return
	}
	fitted := tlv.Fit(metrics, frame.MaxPayload)
	if len(fitted) < len(metrics) {
		s.log.Warn().Int("dropped", len(metrics)-len(fitted)).Msg("metric set truncated to wire budget")
	}
	payload, err := tlv.Encode(fitted, frame.MaxPayload)
	if err != nil {
		s.log.Warn().Err(err).Msg("stats encode failed")
		return
	}
	if err := s.reports.WriteReport(message.TypeStats, payload); err != nil {
		s.log.Debug().Err(err).Msg("stats report send failed")
		return
	}
	observability.RecordStatsReport()
}
