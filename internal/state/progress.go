package state

import "sort"

// Progress records which seasons have been completed, keyed by season number
// starting at 1. A missing key reads as not completed.
type Progress map[int]bool

// NewProgress returns progress with every season 1..units marked incomplete.
func NewProgress(units int) Progress {
	p := make(Progress, units)
	for unit := 1; unit <= units; unit++ {
		p[unit] = false
	}
	return p
}

// Completed reports whether unit has been completed.
func (p Progress) Completed(unit int) bool {
	return p[unit]
}

// AnyCompleted reports whether at least one season has been completed.
func (p Progress) AnyCompleted() bool {
	for _, done := range p {
		if done {
			return true
		}
	}
	return false
}

// MarkCompleted returns a copy with unit set. Completion is never cleared.
func (p Progress) MarkCompleted(unit int) Progress {
	next := p.Clone()
	next[unit] = true
	return next
}

// Units returns the tracked season numbers in ascending order.
func (p Progress) Units() []int {
	units := make([]int, 0, len(p))
	for unit := range p {
		units = append(units, unit)
	}
	sort.Ints(units)
	return units
}

// Clone returns an independent copy.
func (p Progress) Clone() Progress {
	next := make(Progress, len(p))
	for unit, done := range p {
		next[unit] = done
	}
	return next
}
