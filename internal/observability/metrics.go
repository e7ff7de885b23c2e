package observability

import (
	"fmt"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "transport",
			Name:      "frames_decoded_total",
			Help:      "Valid frames decoded per link.",
		},
		[]string{"link"},
	)
	framesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "transport",
			Name:      "frames_dropped_total",
			Help:      "Frames discarded per link and reason.",
		},
		[]string{"link", "reason"},
	)
	relayForwards = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "relay",
			Name:      "forwards_total",
			Help:      "Messages forwarded to the host report channel.",
		},
		[]string{"type"},
	)
	dispatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "dispatch",
			Name:      "actions_total",
			Help:      "Dispatched actions by type and outcome.",
		},
		[]string{"action", "outcome"},
	)
	configReloads = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "dispatch",
			Name:      "config_reloads_total",
			Help:      "Binding table reloads triggered by the watcher.",
		},
	)
	statsReports = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "crowdeck",
			Subsystem: "stats",
			Name:      "reports_total",
			Help:      "Statistics reports written to the report channel.",
		},
	)
)

// RegisterMetrics registers all collectors exactly once.
func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(framesDecoded, framesDropped, relayForwards,
			dispatches, configReloads, statsReports)
	})
}

func RecordFrameDecoded(link string) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(link).Inc()
}

func RecordFrameDropped(link, reason string) {
	RegisterMetrics()
	framesDropped.WithLabelValues(link, reason).Inc()
}

func RecordRelayForward(msgType byte) {
	RegisterMetrics()
	relayForwards.WithLabelValues(fmt.Sprintf("0x%02X", msgType)).Inc()
}

func RecordDispatch(action, outcome string) {
	RegisterMetrics()
	dispatches.WithLabelValues(action, outcome).Inc()
}

func RecordConfigReload() {
	RegisterMetrics()
	configReloads.Inc()
}

func RecordStatsReport() {
	RegisterMetrics()
	statsReports.Inc()
}
