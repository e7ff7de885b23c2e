package link

import (
	"errors"
	"sync"
)

// RadioPacketSize is the on-air packet payload for the nRF24-class parts
// in use; a full frame spans multiple radio packets.
const RadioPacketSize = 32

var ErrRadioClosed = errors.New("link: radio closed")

// RadioDriver is the minimal contract a packet radio must provide. The
// TinyGo build binds it to the real transceiver; host builds and tests
// use in-memory drivers.
type RadioDriver interface {
	// Send transmits one packet of up to RadioPacketSize bytes.
	Send(p []byte) error
	// Receive blocks for the next packet.
	Receive() ([]byte, error)
	Close() error
}

// RadioLink adapts a packet radio into the stream Link contract by
// chunking writes to the on-air packet size. The radio preserves packet
// order, so the byte stream stays ordered and the frame decoder reassembles
// across packet boundaries.
type RadioLink struct {
	drv RadioDriver

	mu   sync.Mutex
	rest []byte
}

// NewRadio wraps a packet radio driver.
func NewRadio(drv RadioDriver) *RadioLink {
	return &RadioLink{drv: drv}
}

func (l *RadioLink) Read(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.rest) == 0 {
		pkt, err := l.drv.Receive()
		if err != nil {
			return 0, err
		}
		l.rest = pkt
	}
	n := copy(p, l.rest)
	l.rest = l.rest[n:]
	return n, nil
}

func (l *RadioLink) Write(p []byte) (int, error) {
	total := 0
	for len(p) > 0 {
		chunk := p
		if len(chunk) > RadioPacketSize {
			chunk = chunk[:RadioPacketSize]
		}
		if err := l.drv.Send(chunk); err != nil {
			return total, err
		}
		total += len(chunk)
		p = p[len(chunk):]
	}
	return total, nil
}

func (l *RadioLink) Close() error { return l.drv.Close() }
func (l *RadioLink) Name() string { return "radio" }
