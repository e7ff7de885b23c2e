// Package statsfeed produces the host-to-display statistics stream: a
// user-configurable metric set sampled from procfs/sysfs and sent as TLV
// reports over the shared report channel.
package statsfeed

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
	"github.com/rs/zerolog"
)

// Metric names accepted in configuration.
const (
	MetricCPU    = "cpu"
	MetricMem    = "mem"
	MetricUptime = "uptime"
	MetricTemp   = "temp"
)

// DefaultMetricSet is what the display shows out of the box.
func DefaultMetricSet() []string {
	return []string{MetricCPU, MetricMem, MetricUptime}
}

// Collector samples host metrics. CPU usage needs two readings, so the
// collector keeps the previous /proc/stat counters between calls.
type Collector struct {
	procRoot string
	sysRoot  string
	log      zerolog.Logger

	mu        sync.Mutex
	prevBusy  uint64
	prevTotal uint64
}

// NewCollector samples from the real proc and sys mounts.
func NewCollector(logger zerolog.Logger) *Collector {
	return &Collector{procRoot: "/proc", sysRoot: "/sys", log: logger}
}

// NewCollectorAt samples from alternate roots; tests point this at a
// fixture directory.
func NewCollectorAt(procRoot, sysRoot string, logger zerolog.Logger) *Collector {
	return &Collector{procRoot: procRoot, sysRoot: sysRoot, log: logger}
}

// Collect samples the named metrics. Unknown names and read failures are
// logged and skipped; a degraded sample set is still worth sending.
func (c *Collector) Collect(names []string) []tlv.Metric {
	out := make([]tlv.Metric, 0, len(names))
	for _, name := range names {
		var (
			m   tlv.Metric
			err error
		)
		switch strings.ToLower(strings.TrimSpace(name)) {
		case MetricCPU:
			m, err = c.cpuPercent()
		case MetricMem:
			m, err = c.memPercent()
		case MetricUptime:
			m, err = c.uptime()
		case MetricTemp:
			m, err = c.temperature()
		default:
			err = fmt.Errorf("statsfeed: unknown metric %q", name)
		}
		if err != nil {
			c.log.Debug().Err(err).Str("metric", name).Msg("metric skipped")
			continue
		}
		out = append(out, m)
	}
	return out
}

// cpuPercent computes busy time share since the previous call. The first
// call reports the share since boot.
func (c *Collector) cpuPercent() (tlv.Metric, error) {
	data, err := os.ReadFile(filepath.Join(c.procRoot, "stat"))
	if err != nil {
		return tlv.Metric{}, err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	fields := strings.Fields(line)
	if len(fields) < 5 || fields[0] != "cpu" {
		return tlv.Metric{}, fmt.Errorf("statsfeed: malformed /proc/stat")
	}
	var total, idle uint64
	for i, f := range fields[1:] {
		v, err := strconv.ParseUint(f, 10, 64)
		if err != nil {
			return tlv.Metric{}, err
		}
		total += v
		// idle + iowait
		if i == 3 || i == 4 {
			idle += v
		}
	}
	busy := total - idle

	c.mu.Lock()
	dBusy := busy - c.prevBusy
	dTotal := total - c.prevTotal
	c.prevBusy, c.prevTotal = busy, total
	c.mu.Unlock()

	if dTotal == 0 {
		return tlv.Metric{}, fmt.Errorf("statsfeed: no cpu time elapsed")
	}
	pct := uint16(dBusy * 100 / dTotal)
	return tlv.Metric{Type: tlv.TypeCPUPercent, Value: tlv.U16(pct)}, nil
}

func (c *Collector) memPercent() (tlv.Metric, error) {
	data, err := os.ReadFile(filepath.Join(c.procRoot, "meminfo"))
	if err != nil {
		return tlv.Metric{}, err
	}
	var totalKB, availKB uint64
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			totalKB, _ = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			availKB, _ = strconv.ParseUint(fields[1], 10, 64)
		}
	}
	if totalKB == 0 {
		return tlv.Metric{}, fmt.Errorf("statsfeed: MemTotal missing")
	}
	pct := uint16((totalKB - availKB) * 100 / totalKB)
	return tlv.Metric{Type: tlv.TypeMemPercent, Value: tlv.U16(pct)}, nil
}

func (c *Collector) uptime() (tlv.Metric, error) {
	data, err := os.ReadFile(filepath.Join(c.procRoot, "uptime"))
	if err != nil {
		return tlv.Metric{}, err
	}
	first, _, _ := strings.Cut(strings.TrimSpace(string(data)), " ")
	secs, err := strconv.ParseFloat(first, 64)
	if err != nil {
		return tlv.Metric{}, err
	}
	return tlv.Metric{Type: tlv.TypeUptime, Value: tlv.U32(uint32(secs))}, nil
}

func (c *Collector) temperature() (tlv.Metric, error) {
	data, err := os.ReadFile(filepath.Join(c.sysRoot, "class/thermal/thermal_zone0/temp"))
	if err != nil {
		return tlv.Metric{}, err
	}
	milli, err := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 32)
	if err != nil {
		return tlv.Metric{}, err
	}
	return tlv.Metric{Type: tlv.TypeTempMilliC, Value: tlv.U32(uint32(milli))}, nil
}
