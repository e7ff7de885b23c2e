package link

import (
	"errors"
	"sync"
)

var ErrPipeClosed = errors.New("link: pipe closed")

// Pipe returns two connected in-memory links for tests and simulators.
// Writes on one side become reads on the other, with buffering so a unit
// loop can write without a reader mid-cycle.
func Pipe(name string) (Link, Link) {
	ab := make(chan []byte, 64)
	ba := make(chan []byte, 64)
	done := make(chan struct{})
	var once sync.Once
	closeAll := func() { once.Do(func() { close(done) }) }
	a := &pipeEnd{name: name + ".a", in: ba, out: ab, done: done, close: closeAll}
	b := &pipeEnd{name: name + ".b", in: ab, out: ba, done: done, close: closeAll}
	return a, b
}

type pipeEnd struct {
	name  string
	in    chan []byte
	out   chan []byte
	done  chan struct{}
	close func()

	mu   sync.Mutex
	rest []byte
}

func (p *pipeEnd) Read(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.rest) == 0 {
		select {
		case chunk := <-p.in:
			p.rest = chunk
		case <-p.done:
			// Drain anything already buffered before reporting closed.
			select {
			case chunk := <-p.in:
				p.rest = chunk
			default:
				return 0, ErrPipeClosed
			}
		}
	}
	n := copy(b, p.rest)
	p.rest = p.rest[n:]
	return n, nil
}

func (p *pipeEnd) Write(b []byte) (int, error) {
	chunk := make([]byte, len(b))
	copy(chunk, b)
	select {
	case p.out <- chunk:
		return len(b), nil
	case <-p.done:
		return 0, ErrPipeClosed
	}
}

func (p *pipeEnd) Close() error {
	p.close()
	return nil
}

func (p *pipeEnd) Name() string { return p.name }
