package action

import (
	"fmt"
	"testing"
)

func TestRecordLogNewestFirst(t *testing.T) {
	l := NewRecordLog()
	for i := 0; i < 3; i++ {
		l.Add(Record{ID: fmt.Sprintf("r%d", i)})
	}
	got := l.Recent()
	if len(got) != 3 {
		t.Fatalf("len=%d", len(got))
	}
	if got[0].ID != "r2" || got[2].ID != "r0" {
		t.Fatalf("order=%v", []string{got[0].ID, got[1].ID, got[2].ID})
	}
}

func TestRecordLogRingWraps(t *testing.T) {
	l := NewRecordLog()
	for i := 0; i < recordCap+10; i++ {
		l.Add(Record{ID: fmt.Sprintf("r%d", i)})
	}
	got := l.Recent()
	if len(got) != recordCap {
		t.Fatalf("len=%d want=%d", len(got), recordCap)
	}
	if got[0].ID != fmt.Sprintf("r%d", recordCap+9) {
		t.Fatalf("newest=%s", got[0].ID)
	}
	if got[len(got)-1].ID != "r10" {
		t.Fatalf("oldest=%s", got[len(got)-1].ID)
	}
}

func TestRecordLogEmpty(t *testing.T) {
	if got := NewRecordLog().Recent(); len(got) != 0 {
		t.Fatalf("len=%d", len(got))
	}
}
