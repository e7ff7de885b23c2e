package frame

import "errors"

const (
	// StartMarker opens every frame on the wire.
	StartMarker byte = 0xAA

	// MaxPayload is the transport's hard payload ceiling. The radio and
	// serial links share a 250-byte budget per message.
	MaxPayload = 250

	// overhead = start + length + type + checksum.
	overhead = 4

	// MaxFrameSize is the largest complete frame the links carry.
	MaxFrameSize = MaxPayload + overhead
)

var ErrPayloadTooLarge = errors.New("frame: payload exceeds wire budget")

// Frame is one complete, validated wire message.
type Frame struct {
	Type    byte
	Payload []byte
}

// Encode produces start ‖ length ‖ type ‖ payload ‖ checksum. The caller
// pre-validates payload size; oversize payloads are rejected, never
// truncated.
func Encode(msgType byte, payload []byte) ([]byte, error) {
	if len(payload) > MaxPayload {
		return nil, ErrPayloadTooLarge
	}
	length := byte(len(payload))
	buf := make([]byte, 0, len(payload)+overhead)
	buf = append(buf, StartMarker, length, msgType)
	buf = append(buf, payload...)
	buf = append(buf, Checksum(length, msgType, payload))
	return buf, nil
}
