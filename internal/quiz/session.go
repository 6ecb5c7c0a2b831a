package quiz

import (
	"fmt"
	"log/slog"
	"time"

	"seasonpass/internal/clock"
	"seasonpass/internal/logging"
	"seasonpass/internal/services"
)

// Phase is a quiz screen state.
type Phase string

const (
	PhaseRules  Phase = "rules"
	PhaseQuiz   Phase = "quiz"
	PhaseResult Phase = "result"
)

// WinningsPerPoint scales the score into the displayed prize.
const WinningsPerPoint = 1_000_000

// Options tune a session.
type Options struct {
	PassScore   int
	AutoAdvance time.Duration
}

// Hooks receive session notifications. Any hook may be nil.
type Hooks struct {
	Phase    func(Phase)
	Question func(index int, q Question)
	Passed   func()
}

// Answer reports the outcome of a selection.
type Answer struct {
	// Accepted is false when the question was already answered.
	Accepted bool
	Correct  bool
}

// Session runs one pass through the question list.
type Session struct {
	clock     clock.Clock
	questions []Question
	opts      Options
	hooks     Hooks
	logger    *slog.Logger

	phase    Phase
	index    int
	selected int
	score    int
	advance  clock.Timer
	released bool
}

// NewSession returns a session in the rules phase.
func NewSession(clk clock.Clock, questions []Question, opts Options, hooks Hooks, logger *slog.Logger) (*Session, error) {
	if err := Validate(questions); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "quiz", "new session", "invalid question list", err)
	}
	if opts.PassScore < 0 || opts.PassScore > len(questions) {
		return nil, services.Wrap(services.ErrConfiguration, "quiz", "new session",
			fmt.Sprintf("pass score %d outside 0..%d", opts.PassScore, len(questions)), nil)
	}
	return &Session{
		clock:     clk,
		questions: append([]Question(nil), questions...),
		opts:      opts,
		hooks:     hooks,
		logger:    logging.NewComponentLogger(logger, "quiz"),
		phase:     PhaseRules,
		selected:  -1,
	}, nil
}

func (s *Session) Phase() Phase { return s.phase }

func (s *Session) Index() int { return s.index }

func (s *Session) Score() int { return s.score }

func (s *Session) Total() int { return len(s.questions) }

// Current returns the question being asked.
func (s *Session) Current() Question { return s.questions[s.index] }

// Selected returns the chosen option for the current question, or -1.
func (s *Session) Selected() int { return s.selected }

// Passed reports whether the score meets the threshold.
func (s *Session) Passed() bool { return s.score >= s.opts.PassScore }

// Winnings returns the prize shown on the result screen.
func (s *Session) Winnings() int64 { return int64(s.score) * WinningsPerPoint }

// Start leaves the rules screen and asks the first question.
func (s *Session) Start() error {
	if s.phase != PhaseRules {
		return services.Wrap(services.ErrInvalidTransition, "quiz", "start", "quiz already started", nil)
	}
	s.reset()
	s.setPhase(PhaseQuiz)
	s.announce()
	return nil
}

// Select answers the current question. Only the first selection per question
// counts; later ones return an unaccepted Answer.
func (s *Session) Select(option int) (Answer, error) {
	if s.phase != PhaseQuiz {
		return Answer{}, services.Wrap(services.ErrInvalidTransition, "quiz", "select", "no question is open", nil)
	}
	if option < 0 || option >= OptionCount {
		return Answer{}, services.Wrap(services.ErrInput, "quiz", "select", fmt.Sprintf("option %d out of range", option+1), nil)
	}
	if s.selected >= 0 {
		return Answer{Accepted: false, Correct: s.selected == s.Current().Correct}, nil
	}
	s.selected = option
	correct := option == s.Current().Correct
	if correct {
		s.score++
	}
	s.logger.Debug("quiz answer recorded",
		logging.Int("question", s.index+1),
		logging.Bool("correct", correct),
		logging.Int("score", s.score))
	s.advance = s.clock.AfterFunc(s.opts.AutoAdvance, s.next)
	return Answer{Accepted: true, Correct: correct}, nil
}

// Continue fires the pass signal once. Only a passing result may continue.
func (s *Session) Continue() error {
	if s.phase != PhaseResult || !s.Passed() {
		return services.Wrap(services.ErrInvalidTransition, "quiz", "continue", "continue requires a passing result", nil)
	}
	if s.released {
		return services.Wrap(services.ErrInvalidTransition, "quiz", "continue", "interview already passed", nil)
	}
	s.released = true
	s.logger.Info("quiz passed",
		logging.String(logging.FieldEventType, "quiz_passed"),
		logging.Int("score", s.score),
		logging.Int("pass_score", s.opts.PassScore))
	if s.hooks.Passed != nil {
		s.hooks.Passed()
	}
	return nil
}

// Retry resets a failed attempt to the rules screen.
func (s *Session) Retry() error {
	if s.phase != PhaseResult || s.Passed() {
		return services.Wrap(services.ErrInvalidTransition, "quiz", "retry", "retry is only offered after a failing result", nil)
	}
	s.reset()
	s.setPhase(PhaseRules)
	return nil
}

// Close cancels the pending auto-advance.
func (s *Session) Close() {
	s.stopAdvance()
}

func (s *Session) next() {
	s.advance = nil
	if s.phase != PhaseQuiz {
		return
	}
	if s.index < len(s.questions)-1 {
		s.index++
		s.selected = -1
		s.announce()
		return
	}
	s.logger.Info("quiz finished",
		logging.String(logging.FieldEventType, "quiz_finished"),
		logging.Int("score", s.score),
		logging.Int("total", len(s.questions)),
		logging.Bool("passed", s.Passed()))
	s.setPhase(PhaseResult)
}

func (s *Session) reset() {
	s.stopAdvance()
	s.index = 0
	s.selected = -1
	s.score = 0
	s.released = false
}

func (s *Session) stopAdvance() {
	if s.advance != nil {
		s.advance.Stop()
		s.advance = nil
	}
}

func (s *Session) setPhase(p Phase) {
	s.phase = p
	if s.hooks.Phase != nil {
		s.hooks.Phase(p)
	}
}

func (s *Session) announce() {
	if s.hooks.Question != nil {
		s.hooks.Question(s.index, s.Current())
	}
}
