package flow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"seasonpass/internal/clock"
	"seasonpass/internal/logging"
	"seasonpass/internal/services"
	"seasonpass/internal/stage"
	"seasonpass/internal/state"
	"seasonpass/internal/unlock"
)

// Persister loads and saves the progression documents. Implementations must
// not fail: load problems yield defaults and save problems are absorbed.
type Persister interface {
	LoadProgress(ctx context.Context) state.Progress
	SaveProgress(ctx context.Context, p state.Progress)
	LoadUnlockState(ctx context.Context) state.UnlockState
	SaveUnlockState(ctx context.Context, u state.UnlockState)
}

// Event describes a stage change. Unit is the season being played when To
// is stage.Playback, and the season just finished when To follows a completion.
type Event struct {
	From stage.Stage
	To   stage.Stage
	Unit int
}

// Listener is notified after every stage change.
type Listener func(Event)

// Options configure a controller.
type Options struct {
	// Units is the number of seasons. The last one leads to the finale.
	Units int
	// OfferMenuShortcut enables the intro → choice branch for returning viewers.
	OfferMenuShortcut bool
	// CompletionDelay separates a season completing from the stage change.
	CompletionDelay time.Duration
}

// Controller is the stage state machine.
type Controller struct {
	clock     clock.Clock
	persister Persister
	policy    *unlock.Policy
	opts      Options
	logger    *slog.Logger

	stage      stage.Stage
	unit       int
	interacted bool
	progress   state.Progress
	unlocks    state.UnlockState
	pending    clock.Timer
	listeners  []Listener
}

// New loads persisted state and returns a controller on the start screen.
func New(ctx context.Context, clk clock.Clock, persister Persister, policy *unlock.Policy, opts Options, logger *slog.Logger) (*Controller, error) {
	if clk == nil || persister == nil || policy == nil {
		return nil, services.Wrap(services.ErrConfiguration, "flow", "new", "clock, persister, and policy are required", nil)
	}
	if opts.Units < 1 {
		return nil, services.Wrap(services.ErrConfiguration, "flow", "new", fmt.Sprintf("units must be positive, got %d", opts.Units), nil)
	}
	c := &Controller{
		clock:     clk,
		persister: persister,
		policy:    policy,
		opts:      opts,
		logger:    logging.NewComponentLogger(logger, "flow"),
		stage:     stage.Start,
	}
	c.progress = persister.LoadProgress(ctx)
	c.unlocks = persister.LoadUnlockState(ctx)
	c.logger.Debug("progression state loaded",
		logging.Int("units", opts.Units),
		logging.Bool("returning_viewer", c.progress.AnyCompleted()))
	return c, nil
}

// Subscribe registers l for stage changes.
func (c *Controller) Subscribe(l Listener) {
	if l != nil {
		c.listeners = append(c.listeners, l)
	}
}

// Stage returns the current stage.
func (c *Controller) Stage() stage.Stage { return c.stage }

// Unit returns the season selected for playback, or 0.
func (c *Controller) Unit() int { return c.unit }

// Units returns the number of seasons.
func (c *Controller) Units() int { return c.opts.Units }

// Progress returns a copy of the completion flags.
func (c *Controller) Progress() state.Progress { return c.progress.Clone() }

// UnlockState returns a copy of the unlock records.
func (c *Controller) UnlockState() state.UnlockState { return c.unlocks.Clone() }

// Policy returns the unlock policy in use.
func (c *Controller) Policy() *unlock.Policy { return c.policy }

// Status evaluates one season at the current time.
func (c *Controller) Status(unit int) unlock.Status {
	return c.policy.Status(c.progress, c.unlocks, unit, c.clock.Now())
}

// Statuses evaluates every season at the current time.
func (c *Controller) Statuses() []unlock.Status {
	return c.policy.Statuses(c.progress, c.unlocks, c.opts.Units, c.clock.Now())
}

// TransitionPending reports whether a delayed post-completion move is scheduled.
func (c *Controller) TransitionPending() bool { return c.pending != nil }

// Interact handles the first user interaction. Only the first call moves the
// experience forward; it reports whether this call did.
func (c *Controller) Interact(ctx context.Context) bool {
	if c.interacted {
		return false
	}
	c.interacted = true
	return c.move(ctx, stage.Prologue, 0) == nil
}

// PrologueEnded handles the prologue media finishing or being skipped.
func (c *Controller) PrologueEnded(ctx context.Context) error {
	return c.move(ctx, stage.Intro, 0)
}

// IntroEnded moves to the quiz, or to the choice screen when a season was
// already completed and the shortcut is enabled.
func (c *Controller) IntroEnded(ctx context.Context) error {
	next := stage.Interview
	if c.opts.OfferMenuShortcut && c.progress.AnyCompleted() {
		next = stage.Choice
	}
	return c.move(ctx, next, 0)
}

// ChooseInterview takes the quiz from the choice screen.
func (c *Controller) ChooseInterview(ctx context.Context) error {
	if c.stage != stage.Choice {
		return c.rejectTransition(stage.Interview)
	}
	return c.move(ctx, stage.Interview, 0)
}

// ChooseMenu skips straight to the season menu from the choice screen.
func (c *Controller) ChooseMenu(ctx context.Context) error {
	if c.stage != stage.Choice {
		return c.rejectTransition(stage.Menu)
	}
	return c.move(ctx, stage.Menu, 0)
}

// QuizPassed handles the quiz gate's pass signal.
func (c *Controller) QuizPassed(ctx context.Context) error {
	if c.stage != stage.Interview {
		return c.rejectTransition(stage.Menu)
	}
	return c.move(ctx, stage.Menu, 0)
}

// SelectUnit opens a season from the menu. Locked seasons are refused with an
// error classified as user input and the stage does not change.
func (c *Controller) SelectUnit(ctx context.Context, unit int) error {
	if c.stage != stage.Menu {
		return c.rejectTransition(stage.Playback)
	}
	if unit < 1 || unit > c.opts.Units {
		return services.Wrap(services.ErrInput, "flow", "select unit", fmt.Sprintf("season %d does not exist", unit), nil)
	}
	st := c.Status(unit)
	if st.Availability != unlock.Accessible {
		c.logger.Info("locked season selected",
			logging.String(logging.FieldEventType, "season_locked"),
			logging.Int(logging.FieldUnit, unit),
			logging.String("availability", string(st.Availability)),
			logging.Duration("remaining", st.Remaining))
		return services.Wrap(services.ErrLocked, "flow", "select unit", lockedMessage(st), nil)
	}
	return c.move(ctx, stage.Playback, unit)
}

// CodeResult reports a code submission.
type CodeResult struct {
	Unit     int
	Accepted bool
	// Opened is true when the accepted code also started playback.
	Opened bool
}

// SubmitCode tries an override code for a locked season from the menu. A
// season whose prerequisite is unmet rejects the attempt without touching
// unlock state. An accepted code is persisted and opens the season.
func (c *Controller) SubmitCode(ctx context.Context, unit int, code string) (CodeResult, error) {
	result := CodeResult{Unit: unit}
	if c.stage != stage.Menu {
		return result, c.rejectTransition(stage.Playback)
	}
	next, err := RedeemCode(c.policy, c.progress, c.unlocks, unit, code, c.clock.Now())
	if err != nil {
		c.logger.Info("override code rejected",
			logging.String(logging.FieldEventType, "code_rejected"),
			logging.Int(logging.FieldUnit, unit),
			logging.String("reason", string(services.Classify(err))))
		return result, err
	}
	result.Accepted = true
	c.unlocks = next
	c.persister.SaveUnlockState(ctx, c.unlocks)
	c.logger.Info("season unlocked by code",
		logging.String(logging.FieldEventType, "code_accepted"),
		logging.Int(logging.FieldUnit, unit))

	if err := c.SelectUnit(ctx, unit); err != nil {
		return result, err
	}
	result.Opened = true
	return result, nil
}

// UnitCompleted records that the season being played finished. Progress is
// saved, the next season's timer is armed and saved, and the move back to
// the menu (or on to the finale) is scheduled after the completion delay.
func (c *Controller) UnitCompleted(ctx context.Context, unit int) error {
	if c.stage != stage.Playback || unit != c.unit {
		return services.Wrap(services.ErrInvalidTransition, "flow", "unit completed",
			fmt.Sprintf("season %d is not playing", unit), nil)
	}
	if c.pending != nil {
		return nil
	}

	c.progress = c.progress.MarkCompleted(unit)
	c.persister.SaveProgress(ctx, c.progress)

	last := unit >= c.opts.Units
	if !last {
		if next, armed := c.policy.ArmTimer(c.unlocks, unit+1, c.clock.Now()); armed {
			c.unlocks = next
			c.persister.SaveUnlockState(ctx, c.unlocks)
		}
	}
	c.logger.Info("season completed",
		logging.String(logging.FieldEventType, "season_completed"),
		logging.Int(logging.FieldUnit, unit),
		logging.Bool("last", last))

	target := stage.Menu
	if last {
		target = stage.Final
	}
	c.pending = c.clock.AfterFunc(c.opts.CompletionDelay, func() {
		c.pending = nil
		if c.stage != stage.Playback || c.unit != unit {
			return
		}
		if err := c.move(ctx, target, unit); err != nil {
			c.logger.Warn("post-completion transition failed", logging.Error(err))
		}
	})
	return nil
}

// Back leaves playback for the menu and cancels any pending completion move.
func (c *Controller) Back(ctx context.Context) error {
	if c.stage != stage.Playback {
		return c.rejectTransition(stage.Menu)
	}
	c.cancelPending()
	return c.move(ctx, stage.Menu, c.unit)
}

// Close cancels pending timers.
func (c *Controller) Close() {
	c.cancelPending()
}

func (c *Controller) cancelPending() {
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Controller) move(ctx context.Context, to stage.Stage, unit int) error {
	from := c.stage
	if !stage.Allowed(from, to) {
		return c.rejectTransition(to)
	}
	c.stage = to
	if to == stage.Playback {
		c.unit = unit
	} else {
		c.unit = 0
	}
	logging.WithContext(services.WithStage(ctx, string(to)), c.logger).Info("stage changed",
		logging.String(logging.FieldEventType, "stage_changed"),
		logging.String("from", string(from)),
		logging.Int(logging.FieldUnit, unit))
	event := Event{From: from, To: to, Unit: unit}
	for _, l := range c.listeners {
		l(event)
	}
	return nil
}

func (c *Controller) rejectTransition(to stage.Stage) error {
	return services.Wrap(services.ErrInvalidTransition, "flow", "transition",
		fmt.Sprintf("cannot move from %s to %s", c.stage, to), nil)
}

func lockedMessage(st unlock.Status) string {
	switch st.Availability {
	case unlock.LockedNeedsPrerequisite:
		return fmt.Sprintf("complete season %d first", st.Unit-1)
	case unlock.LockedWaiting:
		return fmt.Sprintf("season %d unlocks in %s", st.Unit, unlock.FormatRemaining(st.Remaining))
	default:
		return fmt.Sprintf("season %d is locked", st.Unit)
	}
}
