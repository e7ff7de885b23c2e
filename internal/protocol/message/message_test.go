package message

import (
	"bytes"
	"errors"
	"testing"

	"github.com/NoobyNull/crowdisplay/internal/protocol/frame"
	"github.com/NoobyNull/crowdisplay/internal/protocol/tlv"
)

func TestDecodeAllTypes(t *testing.T) {
	cases := []struct {
		name string
		msg  Message
	}{
		{"input identity", InputIdentity{Page: 2, Widget: 7}},
		{"hardware input", HardwareInput{Input: InputEncoderCW, Delta: 1}},
		{"ack", Ack{Status: AckReceived}},
		{"stats", Stats{Metrics: []tlv.Metric{{Type: tlv.TypeCPUPercent, Value: tlv.U16(33)}}}},
		{"stats legacy", StatsLegacy{Raw: []byte{0x21, 0x00, 0x57, 0x00}}},
		{"keystroke", Keystroke{Modifiers: 0x01, Key: 0x04}},
		{"media key", MediaKey{Code: 0xCD}},
	}
	for _, tc := range cases {
		payload, err := tc.msg.EncodePayload()
		if err != nil {
			t.Fatalf("%s: encode: %v", tc.name, err)
		}
		got, err := Decode(tc.msg.Type(), payload)
		if err != nil {
			t.Fatalf("%s: decode: %v", tc.name, err)
		}
		if got.Type() != tc.msg.Type() {
			t.Fatalf("%s: type=%#x want=%#x", tc.name, got.Type(), tc.msg.Type())
		}
		back, err := got.EncodePayload()
		if err != nil {
			t.Fatalf("%s: re-encode: %v", tc.name, err)
		}
		if !bytes.Equal(back, payload) {
			t.Fatalf("%s: payload drifted: %x vs %x", tc.name, back, payload)
		}
	}
}

func TestDecodeUnknownType(t *testing.T) {
	if _, err := Decode(0x7F, []byte{0x00}); !errors.Is(err, ErrUnknownType) {
		t.Fatalf("expected ErrUnknownType, got %v", err)
	}
}

func TestDecodeShortPayloads(t *testing.T) {
	short := []struct {
		msgType byte
		payload []byte
	}{
		{TypeInputIdentity, []byte{0x01}},
		{TypeHardwareInput, nil},
		{TypeAck, nil},
		{TypeKeystroke, []byte{0x01}},
		{TypeMediaKey, nil},
	}
	for _, tc := range short {
		if _, err := Decode(tc.msgType, tc.payload); !errors.Is(err, ErrShortPayload) {
			t.Fatalf("type %#x: expected ErrShortPayload, got %v", tc.msgType, err)
		}
	}
}

func TestHardwareInputNegativeDeltaSurvivesWire(t *testing.T) {
	payload, err := HardwareInput{Input: InputEncoderCCW, Delta: -1}.EncodePayload()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(TypeHardwareInput, payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	hw := got.(HardwareInput)
	if hw.Delta != -1 {
		t.Fatalf("delta=%d", hw.Delta)
	}
}

func TestHardwareInputIdentityMapping(t *testing.T) {
	cases := []struct {
		in     HardwareInput
		widget uint8
	}{
		{HardwareInput{Input: InputButton2}, InputButton2},
		{HardwareInput{Input: InputEncoderPress}, InputEncoderPress},
		{HardwareInput{Input: InputEncoderCW, Delta: 1}, InputEncoderCW},
		{HardwareInput{Input: InputEncoderCCW, Delta: -1}, InputEncoderCCW},
	}
	for _, tc := range cases {
		page, widget := tc.in.Identity()
		if page != HardwarePage {
			t.Fatalf("input %d: page=%#x", tc.in.Input, page)
		}
		if widget != tc.widget {
			t.Fatalf("input %d: widget=%d want=%d", tc.in.Input, widget, tc.widget)
		}
	}
}

func TestStatsLegacyRelayedOpaque(t *testing.T) {
	raw := bytes.Repeat([]byte{0x42}, 17)
	got, err := Decode(TypeStatsLegacy, raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	legacy := got.(StatsLegacy)
	if !bytes.Equal(legacy.Raw, raw) {
		t.Fatalf("raw bytes changed: %x", legacy.Raw)
	}
}

func TestEncodeProducesValidFrame(t *testing.T) {
	wire, err := Encode(InputIdentity{Page: 1, Widget: 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	var d frame.Decoder
	frames := d.Feed(wire)
	if len(frames) != 1 {
		t.Fatalf("frames=%d", len(frames))
	}
	if frames[0].Type != TypeInputIdentity || !bytes.Equal(frames[0].Payload, []byte{1, 3}) {
		t.Fatalf("frame=%+v", frames[0])
	}
}
