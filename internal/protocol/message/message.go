// Package message defines the typed messages carried by the wire frames.
//
// Type identifiers are frozen once shipped; the protocol extends by
// appending new identifiers, never by changing an existing payload layout.
// Legacy fixed-format statistics keep their own identifier so the decoder
// never has to sniff payload bytes to tell the formats apart.
package message

import (
	"errors"
	"fmt"

	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
)

// Message type identifiers.
const (
	TypeInputIdentity byte = 0x01
	TypeHardwareInput byte = 0x02
	TypeAck           byte = 0x03
	TypeStatsLegacy   byte = 0x04
	TypeStats         byte = 0x05
	TypeKeystroke     byte = 0x10
	TypeMediaKey      byte = 0x11
)

// HardwarePage is the reserved page value that moves an identity out of
// the touch-surface space and into the hardware-input space.
const HardwarePage uint8 = 0xFF

// Hardware input identifiers within the reserved page.
const (
	InputButton0      uint8 = 0
	InputButton1      uint8 = 1
	InputButton2      uint8 = 2
	InputButton3      uint8 = 3
	InputEncoderPress uint8 = 4
	InputEncoderCW    uint8 = 5
	InputEncoderCCW   uint8 = 6
)

// Ack status bytes.
const (
	AckReceived uint8 = 0x00
	AckBadFrame uint8 = 0x01
)

var (
	ErrUnknownType  = errors.New("message: unknown message type")
	ErrShortPayload = errors.New("message: short payload")
)

// Message is one decoded wire message. The concrete types below form a
// closed set; dispatch switches over them exhaustively.
type Message interface {
	Type() byte
	EncodePayload() ([]byte, error)
}

// InputIdentity names a pressed touch-surface control.
type InputIdentity struct {
	Page   uint8
	Widget uint8
}

func (m InputIdentity) Type() byte { return TypeInputIdentity }

func (m InputIdentity) EncodePayload() ([]byte, error) {
	return []byte{m.Page, m.Widget}, nil
}

// HardwareInput names a physical button press or one encoder detent.
// Delta is ±1 for rotation and 0 for buttons.
type HardwareInput struct {
	Input uint8
	Delta int8
}

func (m HardwareInput) Type() byte { return TypeHardwareInput }

func (m HardwareInput) EncodePayload() ([]byte, error) {
	return []byte{m.Input, byte(m.Delta)}, nil
}

// Identity maps the hardware input into the shared identity space so one
// binding table serves both touch and hardware sources.
func (m HardwareInput) Identity() (page, widget uint8) {
	input := m.Input
	if input == InputEncoderCW || input == InputEncoderCCW {
		// Rotation direction is part of the identity; the sub-index
		// already encodes it.
		return HardwarePage, input
	}
	if m.Delta > 0 {
		return HardwarePage, InputEncoderCW
	}
	if m.Delta < 0 {
		return HardwarePage, InputEncoderCCW
	}
	return HardwarePage, input
}

// Ack confirms receipt by the relay unit only, never execution by the
// host. No acknowledgement type exists for the bridge-to-host hop; that
// hop is one-way.
type Ack struct {
	Status uint8
}

func (m Ack) Type() byte { return TypeAck }

func (m Ack) EncodePayload() ([]byte, error) {
	return []byte{m.Status}, nil
}

// Stats carries the TLV metric stream.
type Stats struct {
	Metrics []tlv.Metric
}

func (m Stats) Type() byte { return TypeStats }

func (m Stats) EncodePayload() ([]byte, error) {
	return tlv.Encode(m.Metrics, frame.MaxPayload)
}

// StatsLegacy is the frozen fixed-format statistics payload kept for
// firmware that predates the TLV stream. It is relayed opaque; the host
// never generates it.
type StatsLegacy struct {
	Raw []byte
}

func (m StatsLegacy) Type() byte { return TypeStatsLegacy }

func (m StatsLegacy) EncodePayload() ([]byte, error) {
	if len(m.Raw) > frame.MaxPayload {
		return nil, frame.ErrPayloadTooLarge
	}
	return m.Raw, nil
}

// Keystroke is the legacy direct-keystroke action message: modifier
// bitmask plus key usage code. Retained for older configurations.
type Keystroke struct {
	Modifiers uint8
	Key       uint8
}

func (m Keystroke) Type() byte { return TypeKeystroke }

func (m Keystroke) EncodePayload() ([]byte, error) {
	return []byte{m.Modifiers, m.Key}, nil
}

// MediaKey is the legacy consumer-control action message.
type MediaKey struct {
	Code uint8
}

func (m MediaKey) Type() byte { return TypeMediaKey }

func (m MediaKey) EncodePayload() ([]byte, error) {
	return []byte{m.Code}, nil
}

// Encode frames a message for a device-to-device link.
func Encode(m Message) ([]byte, error) {
	payload, err := m.EncodePayload()
	if err != nil {
		return nil, err
	}
	return frame.Encode(m.Type(), payload)
}

// Decode parses a payload by its type byte. Unknown types report
// ErrUnknownType; new types are added here and nowhere else.
func Decode(msgType byte, payload []byte) (Message, error) {
	switch msgType {
	case TypeInputIdentity:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: input identity needs 2 bytes, got %d", ErrShortPayload, len(payload))
		}
		return InputIdentity{Page: payload[0], Widget: payload[1]}, nil
	case TypeHardwareInput:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: hardware input needs 2 bytes, got %d", ErrShortPayload, len(payload))
		}
		return HardwareInput{Input: payload[0], Delta: int8(payload[1])}, nil
	case TypeAck:
		if len(payload) < 1 {
			return nil, fmt.Errorf("%w: ack needs a status byte", ErrShortPayload)
		}
		return Ack{Status: payload[0]}, nil
	case TypeStats:
		metrics, err := tlv.Decode(payload)
		if err != nil {
			return nil, err
		}
		return Stats{Metrics: metrics}, nil
	case TypeStatsLegacy:
		raw := make([]byte, len(payload))
		copy(raw, payload)
		return StatsLegacy{Raw: raw}, nil
	case TypeKeystroke:
		if len(payload) < 2 {
			return nil, fmt.Errorf("%w: keystroke needs 2 bytes, got %d", ErrShortPayload, len(payload))
		}
		return Keystroke{Modifiers: payload[0], Key: payload[1]}, nil
	case TypeMediaKey:
		if len(payload) < 1 {
			return nil, fmt.Errorf("%w: media key needs a code byte", ErrShortPayload)
		}
		return MediaKey{Code: payload[0]}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02X", ErrUnknownType, msgType)
	}
}
