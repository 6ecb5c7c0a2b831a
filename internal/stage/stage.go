package stage

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage is one screen of the experience.
type Stage string

const (
	Start     Stage = "start"
	Prologue  Stage = "prologue"
	Intro     Stage = "intro"
	Choice    Stage = "choice"
	Interview Stage = "interview"
	Menu      Stage = "menu"
	Playback  Stage = "playback"
	Final     Stage = "final"
)

var allStages = []Stage{
	Start,
	Prologue,
	Intro,
	Choice,
	Interview,
	Menu,
	Playback,
	Final,
}

var stageSet = func() map[Stage]struct{} {
	set := make(map[Stage]struct{}, len(allStages))
	for _, s := range allStages {
		set[s] = struct{}{}
	}
	return set
}()

type transition struct {
	from Stage
	to   Stage
}

var transitions = map[transition]struct{}{
	{from: Start, to: Prologue}:   {},
	{from: Prologue, to: Intro}:   {},
	{from: Intro, to: Interview}:  {},
	{from: Intro, to: Choice}:     {},
	{from: Choice, to: Interview}: {},
	{from: Choice, to: Menu}:      {},
	{from: Interview, to: Menu}:   {},
	{from: Menu, to: Playback}:    {},
	{from: Playback, to: Menu}:    {},
	{from: Playback, to: Final}:   {},
}

// All returns every stage in presentation order.
func All() []Stage {
	cp := make([]Stage, len(allStages))
	copy(cp, allStages)
	return cp
}

// Parse converts a user-supplied name into a Stage.
func Parse(value string) (Stage, error) {
	s := Stage(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := stageSet[s]; !ok {
		return "", fmt.Errorf("unknown stage %q", value)
	}
	return s, nil
}

// Allowed reports whether the experience may move from one stage to another.
func Allowed(from, to Stage) bool {
	_, ok := transitions[transition{from: from, to: to}]
	return ok
}

// Terminal reports whether s has no outgoing transitions.
func (s Stage) Terminal() bool {
	for t := range transitions {
		if t.from == s {
			return false
		}
	}
	return true
}

// Label returns a display name, e.g. "Interview".
func (s Stage) Label() string {
	return cases.Title(language.English).String(string(s))
}

func (s Stage) String() string {
	return string(s)
}
