package experience

import (
	"seasonpass/internal/flow"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
	"seasonpass/internal/unlock"
)

// Hooks receive presentation updates. Any hook may be nil.
type Hooks struct {
	Stage             func(flow.Event)
	PrologueSkippable func()
	QuizPhase         func(quiz.Phase)
	QuizQuestion      func(index int, q quiz.Question)
	Menu              func([]unlock.Status)
	PlaybackState     func(unit int, from, to playback.State)
	Caption           func(index int, c playback.Caption)
}

// Option customizes an Experience.
type Option func(*Experience)

// WithHooks installs presentation hooks.
func WithHooks(h Hooks) Option {
	return func(e *Experience) {
		e.hooks = h
	}
}

// WithBlockedAutoplay makes every season track refuse its first automatic
// play, as browsers do without a user gesture.
func WithBlockedAutoplay(blocked bool) Option {
	return func(e *Experience) {
		e.blockAutoplay = blocked
	}
}
