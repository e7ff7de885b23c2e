package input

import (
	"errors"
	"testing"
	"time"

	"github.com/NoobyNull/crowdisplay/internal/protocol/message"
	"github.com/NoobyNull/crowdisplay/internal/testutil/testlog"
	"github.com/rs/zerolog"
)

// fakePins replays a fixed register value, or an error when absent.
type fakePins struct {
	raw    uint16
	absent bool
}

func (f *fakePins) ReadPins(timeout time.Duration) (uint16, error) {
	if f.absent {
		return 0, errors.New("no expander")
	}
	return f.raw, nil
}

// testClock hands out a controllable time source.
type testClock struct {
	t time.Time
}

func (c *testClock) now() time.Time { return c.t }

func (c *testClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPoller(pins PinReader, clock *testClock) *Poller {
	return NewPoller(pins, zerolog.Nop()).WithClock(clock.now)
}

const idle uint16 = 0xFFFF // active low, all contacts open

// rawQuad overlays a 2-bit encoder state onto the idle register.
func rawQuad(state uint8) uint16 {
	raw := idle &^ (1<<DefaultPinMap().EncoderClockBit | 1<<DefaultPinMap().EncoderDataBit)
	if state&0x02 != 0 {
		raw |= 1 << DefaultPinMap().EncoderClockBit
	}
	if state&0x01 != 0 {
		raw |= 1 << DefaultPinMap().EncoderDataBit
	}
	return raw
}

func TestPollButtonPressOnce(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: idle}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)

	if _, ok := p.Poll(); ok {
		t.Fatalf("idle register produced an event")
	}

	pins.raw = idle &^ (1 << 1) // button1 closed
	clock.advance(PollInterval)
	ev, ok := p.Poll()
	if !ok || ev.Input != message.InputButton1 || ev.Delta != 0 {
		t.Fatalf("ev=%+v ok=%v", ev, ok)
	}

	// Held button must not repeat.
	clock.advance(PollInterval)
	if _, ok := p.Poll(); ok {
		t.Fatalf("held button repeated")
	}
}

func TestPollDebouncesContactBounce(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: idle}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll()

	// Press, bounce open, bounce closed, all inside the debounce window:
	// exactly one event.
	events := 0
	script := []uint16{idle &^ 1, idle, idle &^ 1, idle, idle &^ 1}
	for _, raw := range script {
		pins.raw = raw
		clock.advance(5 * time.Millisecond)
		if _, ok := p.Poll(); ok {
			events++
		}
	}
	if events != 1 {
		t.Fatalf("events=%d", events)
	}

	// A clean release and press past the window is a second event.
	pins.raw = idle
	clock.advance(DebounceWindow + time.Millisecond)
	if _, ok := p.Poll(); ok {
		t.Fatalf("release produced an event")
	}
	pins.raw = idle &^ 1
	clock.advance(DebounceWindow + time.Millisecond)
	if ev, ok := p.Poll(); !ok || ev.Input != message.InputButton0 {
		t.Fatalf("second press missing: ev=%+v ok=%v", ev, ok)
	}
}

func TestPollEncoderDetentClockwise(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: rawQuad(0)}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll() // primes the quadrature state

	var events []Event
	for _, state := range []uint8{1, 3, 2, 0} {
		pins.raw = rawQuad(state)
		clock.advance(PollInterval)
		if ev, ok := p.Poll(); ok {
			events = append(events, ev)
		}
	}
	if len(events) != 1 {
		t.Fatalf("events=%d want=1", len(events))
	}
	if events[0].Input != message.InputEncoderCW || events[0].Delta != 1 {
		t.Fatalf("ev=%+v", events[0])
	}
}

func TestPollEncoderDetentCounterClockwise(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: rawQuad(0)}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll()

	var events []Event
	for _, state := range []uint8{2, 3, 1, 0} {
		pins.raw = rawQuad(state)
		clock.advance(PollInterval)
		if ev, ok := p.Poll(); ok {
			events = append(events, ev)
		}
	}
	if len(events) != 1 || events[0].Input != message.InputEncoderCCW || events[0].Delta != -1 {
		t.Fatalf("events=%+v", events)
	}
}

func TestPollEncoderRejectsGrayCodeJump(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: rawQuad(0)}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll()

	// 00 -> 11 is a non-adjacent jump; then a partial walk back. No
	// detent may emerge.
	for _, state := range []uint8{3, 2, 0} {
		pins.raw = rawQuad(state)
		clock.advance(PollInterval)
		if ev, ok := p.Poll(); ok {
			t.Fatalf("bounce produced event %+v", ev)
		}
	}
}

func TestPollEncoderRateLimit(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: rawQuad(0)}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll()

	// Two full cycles back to back, the second inside the rotate window,
	// count as one event.
	events := 0
	for _, state := range []uint8{1, 3, 2, 0, 1, 3, 2, 0} {
		pins.raw = rawQuad(state)
		clock.advance(5 * time.Millisecond)
		if _, ok := p.Poll(); ok {
			events++
		}
	}
	if events != 1 {
		t.Fatalf("events=%d", events)
	}
}

func TestPollThreeDetentsWithBounceNoise(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{raw: rawQuad(0)}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)
	p.Poll()

	// Three deliberate clockwise detents with bounce glitches between
	// them: a non-adjacent jump and a partial forward-back walk. Exactly
	// three events may come out.
	detent := []uint8{1, 3, 2, 0}
	noise := [][]uint8{
		{3, 0},       // non-adjacent jumps
		{1, 0, 1, 0}, // partial cycle jitter
	}
	var events []Event
	feed := func(states []uint8, step time.Duration) {
		for _, s := range states {
			pins.raw = rawQuad(s)
			clock.advance(step)
			if ev, ok := p.Poll(); ok {
				events = append(events, ev)
			}
		}
	}
	feed(detent, 25*time.Millisecond)
	feed(noise[0], 5*time.Millisecond)
	feed(detent, 25*time.Millisecond)
	feed(noise[1], 5*time.Millisecond)
	feed(detent, 25*time.Millisecond)

	if len(events) != 3 {
		t.Fatalf("events=%d want=3: %+v", len(events), events)
	}
	for _, ev := range events {
		if ev.Input != message.InputEncoderCW || ev.Delta != 1 {
			t.Fatalf("ev=%+v", ev)
		}
	}
}

func TestPollAbsentHardwareDegrades(t *testing.T) {
	testlog.Start(t)
	pins := &fakePins{absent: true}
	clock := &testClock{t: time.Unix(1700000000, 0)}
	p := newTestPoller(pins, clock)

	for i := 0; i < 3; i++ {
		if _, ok := p.Poll(); ok {
			t.Fatalf("absent hardware produced an event")
		}
	}

	// Hardware comes back; events flow again.
	pins.absent = false
	pins.raw = idle
	p.Poll()
	pins.raw = idle &^ (1 << 3)
	clock.advance(PollInterval)
	if ev, ok := p.Poll(); !ok || ev.Input != message.InputButton3 {
		t.Fatalf("recovery missed: ev=%+v ok=%v", ev, ok)
	}
}
