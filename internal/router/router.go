// Package router owns message movement over the physical links: framing
// outbound messages, feeding inbound bytes through the decode state
// machine, and dispatching valid frames to per-type handlers. The bridge
// unit's relay lives here too.
package router

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/NoobyNull/crowdisplay/internal/link"
	"github.com/NoobyNull/crowdisplay/internal/observability"
	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/rs/zerolog"
)

var ErrNoHandler = errors.New("router: no handler for message type")

// Inbound is one received, validated frame. Payload holds the exact bytes
// that arrived on the wire so relays forward the canonical payload
// unchanged; Msg is its decoded form.
type Inbound struct {
	Type    byte
	Payload []byte
	Msg     message.Message
}

// Handler consumes one inbound message. Handlers run on the router's read
// goroutine and must not block.
type Handler func(in Inbound)

// Router frames and deframes messages over one link.
type Router struct {
	link link.Link
	log  zerolog.Logger

	writeMu sync.Mutex
	dec     frame.Decoder

	mu       sync.RWMutex
	handlers map[byte]Handler
}

// New builds a router over a link.
func New(l link.Link, logger zerolog.Logger) *Router {
	return &Router{
		link:     l,
		log:      logger.With().Str("link", l.Name()).Logger(),
		handlers: make(map[byte]Handler),
	}
}

// Handle registers the handler for one message type. Later registrations
// replace earlier ones.
func (r *Router) Handle(msgType byte, h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[msgType] = h
}

// Send frames and writes one message. Concurrent senders are serialized
// so frames never interleave on the wire.
func (r *Router) Send(m message.Message) error {
	payload, err := m.EncodePayload()
	if err != nil {
		return err
	}
	return r.SendRaw(m.Type(), payload)
}

// SendRaw frames and writes a pre-encoded payload. Relays use this to
// forward payload bytes without a decode/re-encode round trip.
func (r *Router) SendRaw(msgType byte, payload []byte) error {
	buf, err := frame.Encode(msgType, payload)
	if err != nil {
		return err
	}
	r.writeMu.Lock()
	defer r.writeMu.Unlock()
	if _, err := r.link.Write(buf); err != nil {
		return fmt.Errorf("router: write %s: %w", r.link.Name(), err)
	}
	return nil
}

// Run reads the link until it closes or ctx is canceled, dispatching each
// valid frame. Corrupt frames are discarded and counted, never surfaced
// upstream.
func (r *Router) Run(ctx context.Context) error {
	buf := make([]byte, frame.MaxFrameSize)
	for {
		n, err := r.link.Read(buf)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("router: read %s: %w", r.link.Name(), err)
		}
		for _, b := range buf[:n] {
			f, st := r.dec.FeedByte(b)
			switch st {
			case frame.Complete:
				observability.RecordFrameDecoded(r.link.Name())
				r.dispatch(f)
			case frame.Invalid:
				observability.RecordFrameDropped(r.link.Name(), "corrupt")
				r.log.Debug().Uint64("corrupt_total", r.dec.CorruptFrames()).Msg("frame discarded")
			}
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (r *Router) dispatch(f frame.Frame) {
	msg, err := message.Decode(f.Type, f.Payload)
	if err != nil {
		observability.RecordFrameDropped(r.link.Name(), "undecodable")
		r.log.Warn().Err(err).Uint8("type", f.Type).Msg("frame dropped")
		return
	}
	r.mu.RLock()
	h, ok := r.handlers[f.Type]
	r.mu.RUnlock()
	if !ok {
		observability.RecordFrameDropped(r.link.Name(), "unhandled")
		r.log.Debug().Uint8("type", f.Type).Msg("no handler")
		return
	}
	h(Inbound{Type: f.Type, Payload: f.Payload, Msg: msg})
}

// Close closes the underlying link, unblocking Run.
func (r *Router) Close() error { return r.link.Close() }
