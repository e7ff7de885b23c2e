// Package tlv encodes the statistics metric stream: a count byte followed
// by repeated (metric_type, value_length, value) triples. The monitored
// metric set is user-configurable, so the stream is self-describing and a
// changed set never forces a protocol version bump.
package tlv

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const headerLen = 2 // metric_type + value_length

var (
	ErrShortHeader   = errors.New("tlv: short metric header")
	ErrShortValue    = errors.New("tlv: short metric value")
	ErrCountOverflow = errors.New("tlv: more than 255 metrics")
	ErrBudget        = errors.New("tlv: encoded stream exceeds frame budget")
)

// Metric type identifiers. Extensible by appending values; shipped
// identifiers are frozen.
const (
	TypeCPUPercent uint8 = 1
	TypeMemPercent uint8 = 2
	TypeUptime     uint8 = 3
	TypeTempMilliC uint8 = 4
	TypeLoadAvg    uint8 = 5
	TypeNetRxBytes uint8 = 6
	TypeNetTxBytes uint8 = 7
)

// Metric is one decoded (type, value) pair.
type Metric struct {
	Type  uint8
	Value []byte
}

// EncodedLen returns the wire size of the stream for the given metrics.
func EncodedLen(metrics []Metric) int {
	n := 1
	for _, m := range metrics {
		n += headerLen + len(m.Value)
	}
	return n
}

// Encode serializes the metric stream. It rejects sets that would exceed
// the frame payload budget; callers stream variable sets through Fit
// first.
func Encode(metrics []Metric, budget int) ([]byte, error) {
	if len(metrics) > 255 {
		return nil, ErrCountOverflow
	}
	if EncodedLen(metrics) > budget {
		return nil, ErrBudget
	}
	out := make([]byte, 1, EncodedLen(metrics))
	out[0] = byte(len(metrics))
	for _, m := range metrics {
		if len(m.Value) > 255 {
			return nil, fmt.Errorf("tlv: metric %d value too long: %d", m.Type, len(m.Value))
		}
		out = append(out, m.Type, byte(len(m.Value)))
		out = append(out, m.Value...)
	}
	return out, nil
}

// Fit truncates the metric set to what the budget can carry, whole metrics
// only. Order is preserved; the tail is dropped.
func Fit(metrics []Metric, budget int) []Metric {
	n := 1
	for i, m := range metrics {
		n += headerLen + len(m.Value)
		if n > budget || i == 255 {
			return metrics[:i]
		}
	}
	return metrics
}

// Decode parses a metric stream. Streams whose declared count disagrees
// with the actual bytes are rejected with a sentinel error.
func Decode(payload []byte) ([]Metric, error) {
	if len(payload) < 1 {
		return nil, ErrShortHeader
	}
	count := int(payload[0])
	metrics := make([]Metric, 0, count)
	i := 1
	for n := 0; n < count; n++ {
		if len(payload)-i < headerLen {
			return nil, ErrShortHeader
		}
		typeID := payload[i]
		l := int(payload[i+1])
		i += headerLen
		if len(payload)-i < l {
			return nil, ErrShortValue
		}
		val := make([]byte, l)
		copy(val, payload[i:i+l])
		i += l
		metrics = append(metrics, Metric{Type: typeID, Value: val})
	}
	return metrics, nil
}

// U16 builds a big-endian 16-bit metric value.
func U16(v uint16) []byte {
	b := make([]byte, 2)
	binary.BigEndian.PutUint16(b, v)
	return b
}

// U32 builds a big-endian 32-bit metric value.
func U32(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}

// U16FromBytes reads a big-endian 16-bit metric value.
func U16FromBytes(b []byte) (uint16, error) {
	if len(b) != 2 {
		return 0, fmt.Errorf("tlv: invalid u16 length: %d", len(b))
	}
	return binary.BigEndian.Uint16(b), nil
}

// U32FromBytes reads a big-endian 32-bit metric value.
func U32FromBytes(b []byte) (uint32, error) {
	if len(b) != 4 {
		return 0, fmt.Errorf("tlv: invalid u32 length: %d", len(b))
	}
	return binary.BigEndian.Uint32(b), nil
}
