package state

import (
	"testing"
	"time"
)

func TestProgressMarkCompletedDoesNotMutate(t *testing.T) {
	p := NewProgress(4)
	next := p.MarkCompleted(2)

	if p.Completed(2) {
		t.Fatal("original progress mutated")
	}
	if !next.Completed(2) {
		t.Fatal("expected unit 2 completed")
	}
	if !next.AnyCompleted() || p.AnyCompleted() {
		t.Fatal("AnyCompleted mismatch")
	}
	if got := next.Units(); len(got) != 4 || got[0] != 1 || got[3] != 4 {
		t.Fatalf("unexpected units %v", got)
	}
}

func TestUnlockStateCloneIsDeep(t *testing.T) {
	started := time.Unix(1000, 0)
	s := NewUnlockState([]int{2, 3})
	s = s.With(2, UnlockRecord{StartedAt: &started})

	clone := s.Clone()
	*clone[2].StartedAt = time.Unix(2000, 0)

	if !s.Record(2).StartedAt.Equal(time.Unix(1000, 0)) {
		t.Fatal("clone aliased the original timestamp")
	}
	if s.Record(3).Armed() {
		t.Fatal("unit 3 should not be armed")
	}
	if s.Record(9).Armed() || s.Record(9).UnlockedByCode {
		t.Fatal("missing unit should read as zero record")
	}
}
