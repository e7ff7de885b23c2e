// Package report owns the host report channel: the bidirectional,
// report-based USB path between the bridge unit and the host process.
// A report is the message type byte followed by the raw payload; the
// channel is a reliable framed transport on its own, so no start marker
// or checksum is added.
package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
)

// MaxReportLen bounds one report: type byte plus the wire payload budget.
const MaxReportLen = 1 + frame.MaxPayload

var (
	ErrReportTooLarge = errors.New("report: payload exceeds report size")
	ErrChannelClosed  = errors.New("report: channel closed")
)

// Device is the raw report endpoint. ReadTimeout returns (0, nil) when no
// report arrived within the window; hidraw and socket implementations
// exist, tests fake it.
type Device interface {
	ReadTimeout(p []byte, timeout time.Duration) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Channel serializes access to one report device. The dispatcher listener
// reads and the statistics streamer writes through the same handle; one
// lock keeps reads and writes from interleaving mid-report.
type Channel struct {
	mu  sync.Mutex
	dev Device
}

// NewChannel wraps an open report device.
func NewChannel(dev Device) *Channel {
	return &Channel{dev: dev}
}

// ReadReport blocks for the next inbound report, polling in short windows
// so writers sharing the handle are never starved and ctx cancellation is
// honored between windows.
func (c *Channel) ReadReport(ctx context.Context) (byte, []byte, error) {
	buf := make([]byte, MaxReportLen)
	for {
		if err := ctx.Err(); err != nil {
			return 0, nil, err
		}
		c.mu.Lock()
		n, err := c.dev.ReadTimeout(buf, 250*time.Millisecond)
		c.mu.Unlock()
		if err != nil {
			return 0, nil, fmt.Errorf("report: read: %w", err)
		}
		if n == 0 {
			continue
		}
		payload := make([]byte, n-1)
		copy(payload, buf[1:n])
		return buf[0], payload, nil
	}
}

// WriteReport sends one outbound report.
func (c *Channel) WriteReport(msgType byte, payload []byte) error {
	if len(payload) > frame.MaxPayload {
		return ErrReportTooLarge
	}
	buf := make([]byte, 0, 1+len(payload))
	buf = append(buf, msgType)
	buf = append(buf, payload...)
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := c.dev.Write(buf); err != nil {
		return fmt.Errorf("report: write: %w", err)
	}
	return nil
}

// Close closes the underlying device.
func (c *Channel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dev.Close()
}
