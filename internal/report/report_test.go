package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
)

// fakeDevice is an in-memory report endpoint: queued inbound reports and
// captured outbound writes.
type fakeDevice struct {
	inbound  [][]byte
	written  [][]byte
	readErr  error
	writeErr error
	closed   bool
}

func (d *fakeDevice) ReadTimeout(p []byte, timeout time.Duration) (int, error) {
	if d.readErr != nil {
		return 0, d.readErr
	}
	if len(d.inbound) == 0 {
		return 0, nil
	}
	rep := d.inbound[0]
	d.inbound = d.inbound[1:]
	return copy(p, rep), nil
}

func (d *fakeDevice) Write(p []byte) (int, error) {
	if d.writeErr != nil {
		return 0, d.writeErr
	}
	d.written = append(d.written, bytes.Clone(p))
	return len(p), nil
}

func (d *fakeDevice) Close() error {
	d.closed = true
	return nil
}

func TestWriteReportPrefixesType(t *testing.T) {
	dev := &fakeDevice{}
	c := NewChannel(dev)
	if err := c.WriteReport(0x05, []byte{0x01, 0x02}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(dev.written) != 1 || !bytes.Equal(dev.written[0], []byte{0x05, 0x01, 0x02}) {
		t.Fatalf("written=%x", dev.written)
	}
}

func TestWriteReportRejectsOversize(t *testing.T) {
	c := NewChannel(&fakeDevice{})
	if err := c.WriteReport(0x05, make([]byte, frame.MaxPayload+1)); !errors.Is(err, ErrReportTooLarge) {
		t.Fatalf("expected ErrReportTooLarge, got %v", err)
	}
}

func TestReadReportSplitsTypeAndPayload(t *testing.T) {
	dev := &fakeDevice{inbound: [][]byte{{0x01, 0x02, 0x07}}}
	c := NewChannel(dev)
	msgType, payload, err := c.ReadReport(context.Background())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if msgType != 0x01 || !bytes.Equal(payload, []byte{0x02, 0x07}) {
		t.Fatalf("type=%#x payload=%x", msgType, payload)
	}
}

func TestReadReportHonorsContext(t *testing.T) {
	c := NewChannel(&fakeDevice{})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, _, err := c.ReadReport(ctx)
		done <- err
	}()
	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("read did not unblock")
	}
}

func TestReadReportSurfacesDeviceError(t *testing.T) {
	dev := &fakeDevice{readErr: errors.New("unplugged")}
	c := NewChannel(dev)
	if _, _, err := c.ReadReport(context.Background()); err == nil {
		t.Fatalf("expected error")
	}
}

func TestConcurrentReaderAndWriterShareHandle(t *testing.T) {
	dev := &fakeDevice{}
	c := NewChannel(dev)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// A blocked reader polling in windows must not starve the writer.
	go func() { _, _, _ = c.ReadReport(ctx) }()

	errc := make(chan error, 1)
	go func() { errc <- c.WriteReport(0x05, []byte{0x01}) }()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("write: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("writer starved by reader")
	}
}

func TestCloseClosesDevice(t *testing.T) {
	dev := &fakeDevice{}
	c := NewChannel(dev)
	if err := c.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !dev.closed {
		t.Fatalf("device left open")
	}
}
