package flow

import (
	"fmt"
	"time"

	"seasonpass/internal/services"
	"seasonpass/internal/state"
	"seasonpass/internal/unlock"
)

// RedeemCode checks an override code for unit and returns the unlock state
// with the season opened. The season must be gated and its prerequisite
// complete; otherwise unlocks is returned untouched with a classified error.
func RedeemCode(policy *unlock.Policy, progress state.Progress, unlocks state.UnlockState, unit int, code string, now time.Time) (state.UnlockState, error) {
	if _, gated := policy.Gate(unit); !gated {
		return unlocks, services.Wrap(services.ErrInput, "flow", "submit code", fmt.Sprintf("season %d has no code", unit), nil)
	}
	if !unlock.HasPrerequisite(progress, unit) {
		return unlocks, services.Wrap(services.ErrLocked, "flow", "submit code",
			fmt.Sprintf("complete season %d first to start the timer", unit-1), nil)
	}
	next, ok := policy.AttemptCodeUnlock(unlocks, unit, code, now)
	if !ok {
		return unlocks, services.Wrap(services.ErrInput, "flow", "submit code", "incorrect code, please try again", nil)
	}
	return next, nil
}
