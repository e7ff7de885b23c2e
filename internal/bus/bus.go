// Package bus serializes access to the shared I²C bus.
//
// The touch controller, the channel multiplexer and the I/O expander sit
// on one physical bus. The expander read is a multi-step transaction
// (select channel, read register, deselect); a second consumer cutting in
// mid-transaction corrupts it. One guard therefore covers every consumer
// system-wide, and the critical section is enforced by the guard's scope
// rather than caller discipline.
package bus

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// DefaultAcquireTimeout bounds how long a caller waits for the bus.
// Callers that miss the window skip their cycle instead of blocking.
const DefaultAcquireTimeout = 10 * time.Millisecond

var (
	ErrBusy     = errors.New("bus: acquisition timed out")
	ErrReleased = errors.New("bus: guard already released")
)

// SharedBus wraps one physical I²C bus behind a single exclusivity token.
type SharedBus struct {
	sem chan struct{}
	i2c drivers.I2C
}

// NewShared wraps an I²C bus. Every driver touching the physical bus must
// go through the same SharedBus instance.
func NewShared(i2c drivers.I2C) *SharedBus {
	return &SharedBus{
		sem: make(chan struct{}, 1),
		i2c: i2c,
	}
}

// Acquire takes bus exclusivity, waiting at most timeout. A zero timeout
// uses DefaultAcquireTimeout. The returned guard must be released by the
// same goroutine; transactions issued after release fail.
func (b *SharedBus) Acquire(timeout time.Duration) (*Guard, error) {
	if timeout <= 0 {
		timeout = DefaultAcquireTimeout
	}
	select {
	case b.sem <- struct{}{}:
		return &Guard{bus: b}, nil
	case <-time.After(timeout):
		return nil, ErrBusy
	}
}

// Guard is a held bus exclusivity token. All transactions of one logical
// operation go through the same guard so the whole sequence is atomic
// with respect to other bus consumers.
type Guard struct {
	bus      *SharedBus
	released bool
}

// Tx performs one I²C transaction while the guard is held.
func (g *Guard) Tx(addr uint16, w, r []byte) error {
	if g.released {
		return ErrReleased
	}
	return g.bus.i2c.Tx(addr, w, r)
}

// Release returns bus exclusivity. Safe to call more than once.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	<-g.bus.sem
}
