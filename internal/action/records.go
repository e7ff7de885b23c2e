package action

import (
	"sync"
	"time"
)

// Execution outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeBlocked   = "blocked"
	OutcomeUnbound   = "unbound"
)

// Record is one dispatched action instance.
type Record struct {
	ID         string    `json:"id"`
	Identity   string    `json:"identity"`
	Action     Type      `json:"action"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitempty"`
}

// RecordLog keeps a bounded in-memory history of dispatches for the
// admin API.
type RecordLog struct {
	mu   sync.Mutex
	ring []Record
	next int
	full bool
}

const recordCap = 64

func NewRecordLog() *RecordLog {
	return &RecordLog{ring: make([]Record, recordCap)}
}

func (l *RecordLog) Add(r Record) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.ring[l.next] = r
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.full = true
	}
}

// Recent returns records newest-first.
func (l *RecordLog) Recent() []Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := l.next
	if l.full {
		n = len(l.ring)
	}
	out := make([]Record, 0, n)
	for i := 0; i < n; i++ {
		idx := l.next - 1 - i
		if idx < 0 {
			idx += len(l.ring)
		}
		out = append(out, l.ring[idx])
	}
	return out
}
