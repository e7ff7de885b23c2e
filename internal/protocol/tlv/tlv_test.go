package tlv

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	metrics := []Metric{
		{Type: TypeCPUPercent, Value: U16(42)},
		{Type: TypeMemPercent, Value: U16(87)},
		{Type: TypeUptime, Value: U32(360000)},
		{Type: TypeTempMilliC, Value: U32(48250)},
	}
	wire, err := Encode(metrics, 250)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(wire) != EncodedLen(metrics) {
		t.Fatalf("wire len=%d want=%d", len(wire), EncodedLen(metrics))
	}
	got, err := Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != len(metrics) {
		t.Fatalf("decoded %d metrics, want %d", len(got), len(metrics))
	}
	for i := range got {
		if got[i].Type != metrics[i].Type || !bytes.Equal(got[i].Value, metrics[i].Value) {
			t.Fatalf("metric %d mismatch: %+v vs %+v", i, got[i], metrics[i])
		}
	}
}

func TestEncodeRejectsOverBudget(t *testing.T) {
	metrics := []Metric{{Type: TypeCPUPercent, Value: make([]byte, 200)}}
	if _, err := Encode(metrics, 100); !errors.Is(err, ErrBudget) {
		t.Fatalf("expected ErrBudget, got %v", err)
	}
}

func TestFitDropsWholeTailMetrics(t *testing.T) {
	// Encoded: count byte, then 4, 6 and 6 bytes per metric. A budget of
	// 12 carries the first two whole metrics only.
	metrics := []Metric{
		{Type: TypeCPUPercent, Value: U16(1)},
		{Type: TypeUptime, Value: U32(2)},
		{Type: TypeNetRxBytes, Value: U32(3)},
	}
	fitted := Fit(metrics, 12)
	if len(fitted) != 2 {
		t.Fatalf("fitted=%d want=2", len(fitted))
	}
	if fitted[0].Type != TypeCPUPercent || fitted[1].Type != TypeUptime {
		t.Fatalf("order changed: %+v", fitted)
	}
	if _, err := Encode(fitted, 12); err != nil {
		t.Fatalf("fitted set must encode: %v", err)
	}
}

func TestFitEverythingFits(t *testing.T) {
	metrics := []Metric{{Type: TypeCPUPercent, Value: U16(1)}}
	if got := Fit(metrics, 250); len(got) != 1 {
		t.Fatalf("fitted=%d", len(got))
	}
}

func TestDecodeShortStreams(t *testing.T) {
	cases := []struct {
		name    string
		payload []byte
		want    error
	}{
		{"empty", nil, ErrShortHeader},
		{"truncated header", []byte{1, TypeCPUPercent}, ErrShortHeader},
		{"truncated value", []byte{1, TypeCPUPercent, 2, 0x01}, ErrShortValue},
		{"count overstates", []byte{2, TypeCPUPercent, 1, 0x01}, ErrShortHeader},
	}
	for _, tc := range cases {
		if _, err := Decode(tc.payload); !errors.Is(err, tc.want) {
			t.Fatalf("%s: got %v want %v", tc.name, err, tc.want)
		}
	}
}

func TestDecodeIgnoresTrailingBytes(t *testing.T) {
	wire, err := Encode([]Metric{{Type: TypeCPUPercent, Value: U16(9)}}, 250)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(append(wire, 0xDE, 0xAD))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("metrics=%d", len(got))
	}
}

func TestValueHelpers(t *testing.T) {
	if v, err := U16FromBytes(U16(0xBEEF)); err != nil || v != 0xBEEF {
		t.Fatalf("u16: v=%#x err=%v", v, err)
	}
	if v, err := U32FromBytes(U32(0xDEADBEEF)); err != nil || v != 0xDEADBEEF {
		t.Fatalf("u32: v=%#x err=%v", v, err)
	}
	if _, err := U16FromBytes([]byte{1}); err == nil {
		t.Fatalf("expected length error")
	}
	if _, err := U32FromBytes([]byte{1, 2, 3}); err == nil {
		t.Fatalf("expected length error")
	}
}

func TestUnknownMetricTypePassesThrough(t *testing.T) {
	wire, err := Encode([]Metric{{Type: 99, Value: []byte{0x01, 0x02}}}, 250)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(wire)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got[0].Type != 99 || !bytes.Equal(got[0].Value, []byte{0x01, 0x02}) {
		t.Fatalf("got %+v", got[0])
	}
}
