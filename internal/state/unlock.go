package state

import "time"

// UnlockRecord is the unlock bookkeeping for one gated season.
type UnlockRecord struct {
	// StartedAt is when the wait timer was armed. Nil until armed.
	StartedAt *time.Time
	// UnlockedByCode is set once a correct override code is entered and is
	// never cleared.
	UnlockedByCode bool
}

// Armed reports whether the wait timer has started.
func (r UnlockRecord) Armed() bool {
	return r.StartedAt != nil
}

// UnlockState maps gated season numbers (2..N) to their records.
type UnlockState map[int]UnlockRecord

// NewUnlockState returns empty records for each gated unit.
func NewUnlockState(gated []int) UnlockState {
	s := make(UnlockState, len(gated))
	for _, unit := range gated {
		s[unit] = UnlockRecord{}
	}
	return s
}

// Record returns the record for unit, or a zero record when absent.
func (s UnlockState) Record(unit int) UnlockRecord {
	return s[unit]
}

// With returns a copy of s with unit's record replaced.
func (s UnlockState) With(unit int, record UnlockRecord) UnlockState {
	next := s.Clone()
	next[unit] = record
	return next
}

// Clone returns a deep copy. Timestamps are copied so callers may not alias
// another state's records.
func (s UnlockState) Clone() UnlockState {
	next := make(UnlockState, len(s))
	for unit, record := range s {
		if record.StartedAt != nil {
			started := *record.StartedAt
			record.StartedAt = &started
		}
		next[unit] = record
	}
	return next
}
