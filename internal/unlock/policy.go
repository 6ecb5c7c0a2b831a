package unlock

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/text/cases"

	"seasonpass/internal/config"
	"seasonpass/internal/state"
)

// Mode selects how gated seasons open.
type Mode string

const (
	// ModeTimed requires the prerequisite plus an elapsed wait or a code.
	ModeTimed Mode = "timed"
	// ModePrerequisite requires only the previous season's completion.
	ModePrerequisite Mode = "prerequisite"
)

// Gate is the immutable unlock configuration for one season.
type Gate struct {
	Unit     int
	Wait     time.Duration
	Code     string
	CodeHash []byte
	Hint     string
}

// Policy evaluates unlock rules for a fixed set of gates.
type Policy struct {
	mode  Mode
	gates map[int]Gate
	units []int
}

// New builds a policy from explicit gates.
func New(mode Mode, gates []Gate) (*Policy, error) {
	if mode != ModeTimed && mode != ModePrerequisite {
		return nil, fmt.Errorf("unlock: unsupported mode %q", mode)
	}
	p := &Policy{mode: mode, gates: make(map[int]Gate, len(gates))}
	for _, gate := range gates {
		if gate.Unit < 2 {
			return nil, fmt.Errorf("unlock: gate unit %d must be 2 or greater", gate.Unit)
		}
		if _, dup := p.gates[gate.Unit]; dup {
			return nil, fmt.Errorf("unlock: duplicate gate for unit %d", gate.Unit)
		}
		if gate.Wait < 0 {
			return nil, fmt.Errorf("unlock: gate %d wait must be non-negative", gate.Unit)
		}
		gate.Code = normalizeCode(gate.Code)
		p.gates[gate.Unit] = gate
		p.units = append(p.units, gate.Unit)
	}
	return p, nil
}

// FromConfig builds a policy from the [unlock] config section.
func FromConfig(cfg *config.Config) (*Policy, error) {
	if cfg == nil {
		return nil, errors.New("unlock: nil config")
	}
	gates := make([]Gate, 0, len(cfg.Unlock.Gates))
	for _, g := range cfg.Unlock.Gates {
		gate := Gate{Unit: g.Unit, Wait: g.Wait(), Code: g.Code, Hint: g.Hint}
		if g.CodeBcrypt != "" {
			gate.CodeHash = []byte(g.CodeBcrypt)
		}
		gates = append(gates, gate)
	}
	return New(Mode(cfg.Unlock.Mode), gates)
}

// Mode returns the configured unlock mode.
func (p *Policy) Mode() Mode {
	return p.mode
}

// GatedUnits returns the gated season numbers in configuration order.
func (p *Policy) GatedUnits() []int {
	return append([]int(nil), p.units...)
}

// Gate returns the gate for unit.
func (p *Policy) Gate(unit int) (Gate, bool) {
	gate, ok := p.gates[unit]
	return gate, ok
}

// Hint returns the display hint for unit, or "" when ungated.
func (p *Policy) Hint(unit int) string {
	return p.gates[unit].Hint
}

// HasPrerequisite reports whether unit's predecessor is complete. Season 1
// has no predecessor.
func HasPrerequisite(progress state.Progress, unit int) bool {
	if unit <= 1 {
		return true
	}
	return progress.Completed(unit - 1)
}

// RemainingWait returns how long unit stays time-locked. A code unlock clears
// the wait; an unarmed timer reports the full wait.
func (p *Policy) RemainingWait(unlocks state.UnlockState, unit int, now time.Time) time.Duration {
	gate, ok := p.gates[unit]
	if !ok || p.mode == ModePrerequisite {
		return 0
	}
	record := unlocks.Record(unit)
	if record.UnlockedByCode {
		return 0
	}
	if record.StartedAt == nil {
		return gate.Wait
	}
	return max(0, gate.Wait-now.Sub(*record.StartedAt))
}

// IsAccessible reports whether unit can be opened at now.
func (p *Policy) IsAccessible(progress state.Progress, unlocks state.UnlockState, unit int, now time.Time) bool {
	if unit <= 1 {
		return true
	}
	if !HasPrerequisite(progress, unit) {
		return false
	}
	return p.RemainingWait(unlocks, unit, now) == 0
}

// AttemptCodeUnlock compares input against unit's override code after trimming
// and case folding. On a match it returns a new state with UnlockedByCode set
// and StartedAt backfilled to now when absent. On a mismatch it returns
// unlocks unchanged.
func (p *Policy) AttemptCodeUnlock(unlocks state.UnlockState, unit int, input string, now time.Time) (state.UnlockState, bool) {
	gate, ok := p.gates[unit]
	if !ok || !gate.matches(input) {
		return unlocks, false
	}
	record := unlocks.Record(unit)
	record.UnlockedByCode = true
	if record.StartedAt == nil {
		started := now
		record.StartedAt = &started
	}
	return unlocks.With(unit, record), true
}

// ArmTimer starts unit's wait timer at now. It is a no-op when the timer is
// already armed, the unit was code-unlocked, or the unit is ungated.
func (p *Policy) ArmTimer(unlocks state.UnlockState, unit int, now time.Time) (state.UnlockState, bool) {
	if _, ok := p.gates[unit]; !ok {
		return unlocks, false
	}
	record := unlocks.Record(unit)
	if record.StartedAt != nil || record.UnlockedByCode {
		return unlocks, false
	}
	started := now
	record.StartedAt = &started
	return unlocks.With(unit, record), true
}

func (g Gate) matches(input string) bool {
	candidate := normalizeCode(input)
	if candidate == "" {
		return false
	}
	if len(g.CodeHash) > 0 {
		if bcrypt.CompareHashAndPassword(g.CodeHash, []byte(candidate)) == nil {
			return true
		}
	}
	return g.Code != "" && candidate == g.Code
}

// normalizeCode trims and case-folds a code. Bcrypt hashes in configuration
// must be computed over this normalized form.
func normalizeCode(code string) string {
	return cases.Fold().String(strings.TrimSpace(code))
}

// HashCode returns the bcrypt hash stored in code_bcrypt for code.
func HashCode(code string) (string, error) {
	candidate := normalizeCode(code)
	if candidate == "" {
		return "", errors.New("unlock: empty code")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(candidate), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash code: %w", err)
	}
	return string(hash), nil
}
