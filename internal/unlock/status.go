package unlock

import (
	"fmt"
	"math"
	"time"

	"seasonpass/internal/state"
)

// Availability classifies a season for display.
type Availability string

const (
	Accessible              Availability = "accessible"
	LockedWaiting           Availability = "locked-waiting"
	LockedNeedsPrerequisite Availability = "locked-needs-prerequisite"
)

// Status is the accessibility verdict for one season.
type Status struct {
	Unit           int
	Availability   Availability
	Remaining      time.Duration
	Completed      bool
	UnlockedByCode bool
	Hint           string
}

// Status classifies unit at now. Remaining is set only for LockedWaiting.
func (p *Policy) Status(progress state.Progress, unlocks state.UnlockState, unit int, now time.Time) Status {
	st := Status{
		Unit:           unit,
		Completed:      progress.Completed(unit),
		UnlockedByCode: unlocks.Record(unit).UnlockedByCode,
		Hint:           p.Hint(unit),
	}
	switch {
	case !HasPrerequisite(progress, unit):
		st.Availability = LockedNeedsPrerequisite
	case p.IsAccessible(progress, unlocks, unit, now):
		st.Availability = Accessible
	default:
		st.Availability = LockedWaiting
		st.Remaining = p.RemainingWait(unlocks, unit, now)
	}
	return st
}

// Statuses returns the status of seasons 1..units.
func (p *Policy) Statuses(progress state.Progress, unlocks state.UnlockState, units int, now time.Time) []Status {
	out := make([]Status, 0, units)
	for unit := 1; unit <= units; unit++ {
		out = append(out, p.Status(progress, unlocks, unit, now))
	}
	return out
}

// FormatRemaining renders d as HH:MM:SS, rounding partial seconds up so a
// countdown never shows 00:00:00 while still locked.
func FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "00:00:00"
	}
	total := int64(math.Ceil(d.Seconds()))
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
}
