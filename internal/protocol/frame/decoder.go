package frame

type decodeState uint8

const (
	awaitStart decodeState = iota
	readLength
	readType
	readPayload
	readChecksum
)

// Status reports the outcome of feeding one byte to the Decoder.
type Status uint8

const (
	// Incomplete means more bytes are needed.
	Incomplete Status = iota
	// Complete means a validated frame was produced.
	Complete
	// Invalid means a frame failed its checksum and was discarded; the
	// decoder has already resynchronized.
	Invalid
)

// Decoder is the resumable frame-parsing state machine. The serial and
// radio channels offer no message-boundary guarantee, so bytes may arrive
// fragmented at arbitrary boundaries; feeding one byte at a time and
// feeding a whole buffer produce identical results.
//
// A Decoder is not safe for concurrent use; each link owns one.
type Decoder struct {
	state   decodeState
	length  byte
	msgType byte
	payload []byte

	corrupt  uint64
	resynced uint64
}

// FeedByte advances the state machine by one byte. On Complete the
// returned Frame holds the type and payload; its payload slice is owned
// by the caller.
func (d *Decoder) FeedByte(b byte) (Frame, Status) {
	switch d.state {
	case awaitStart:
		// Anything that is not the start marker is resynchronization
		// noise and is silently discarded.
		if b == StartMarker {
			d.state = readLength
		} else {
			d.resynced++
		}
	case readLength:
		if b > MaxPayload {
			d.corrupt++
			d.state = awaitStart
			return Frame{}, Invalid
		}
		d.length = b
		d.state = readType
	case readType:
		d.msgType = b
		d.payload = d.payload[:0]
		if d.length == 0 {
			d.state = readChecksum
		} else {
			d.state = readPayload
		}
	case readPayload:
		d.payload = append(d.payload, b)
		if len(d.payload) == int(d.length) {
			d.state = readChecksum
		}
	case readChecksum:
		d.state = awaitStart
		if b != Checksum(d.length, d.msgType, d.payload) {
			d.corrupt++
			return Frame{}, Invalid
		}
		out := Frame{Type: d.msgType, Payload: make([]byte, len(d.payload))}
		copy(out.Payload, d.payload)
		return out, Complete
	}
	return Frame{}, Incomplete
}

// Feed runs FeedByte over data and collects completed frames. Invalid
// frames are dropped and counted; callers needing per-frame validity use
// FeedByte directly.
func (d *Decoder) Feed(data []byte) []Frame {
	var frames []Frame
	for _, b := range data {
		if f, st := d.FeedByte(b); st == Complete {
			frames = append(frames, f)
		}
	}
	return frames
}

// CorruptFrames counts frames discarded for bad length or checksum since
// the decoder was created.
func (d *Decoder) CorruptFrames() uint64 { return d.corrupt }

// DiscardedBytes counts resynchronization bytes dropped while hunting for
// a start marker.
func (d *Decoder) DiscardedBytes() uint64 { return d.resynced }
