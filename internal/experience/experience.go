package experience

import (
	"context"
	"fmt"
	"log/slog"

	"seasonpass/internal/clock"
	"seasonpass/internal/config"
	"seasonpass/internal/content"
	"seasonpass/internal/flow"
	"seasonpass/internal/logging"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
	"seasonpass/internal/services"
	"seasonpass/internal/stage"
	"seasonpass/internal/store"
	"seasonpass/internal/unlock"
)

// Experience is one viewer session from the start screen to the finale.
type Experience struct {
	ctx           context.Context
	cfg           *config.Config
	clock         clock.Clock
	catalog       *content.Catalog
	controller    *flow.Controller
	medium        store.Medium
	hooks         Hooks
	blockAutoplay bool
	base          *slog.Logger
	logger        *slog.Logger

	handlers  map[stage.Stage]stage.Handler
	active    stage.Handler
	prologue  *prologueScreen
	interview *interviewScreen
	player    *playbackScreen
}

// Open loads the catalog named by cfg, opens the configured storage medium,
// and builds an Experience on it. Close releases the medium.
func Open(ctx context.Context, cfg *config.Config, clk clock.Clock, logger *slog.Logger, opts ...Option) (*Experience, error) {
	catalog, err := content.FromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "experience", "load catalog", "content catalog is invalid", err)
	}
	policy, err := unlock.FromConfig(cfg)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "experience", "build policy", "unlock configuration is invalid", err)
	}
	medium, err := store.OpenMedium(cfg)
	if err != nil {
		logging.WarnWithContext(logging.NewComponentLogger(logger, "experience"), "storage unavailable; progress will not persist", "storage_unavailable",
			logging.Error(err),
			logging.String("backend", cfg.Storage.Backend),
			logging.String(logging.FieldErrorHint, "check storage.backend and paths.state_dir"),
			logging.String(logging.FieldImpact, "progress resets when the player exits"),
		)
		medium = nil
	}
	st := store.New(medium, store.Options{
		KeyPrefix:     cfg.Storage.KeyPrefix,
		SchemaVersion: cfg.Storage.SchemaVersion,
		Units:         catalog.Units(),
		GatedUnits:    policy.GatedUnits(),
	}, logger)
	exp, err := New(ctx, cfg, clk, catalog, policy, st, logger, opts...)
	if err != nil {
		if medium != nil {
			_ = store.CloseMedium(medium)
		}
		return nil, err
	}
	exp.medium = medium
	return exp, nil
}

// New builds an Experience on an existing persister.
func New(ctx context.Context, cfg *config.Config, clk clock.Clock, catalog *content.Catalog, policy *unlock.Policy, persister flow.Persister, logger *slog.Logger, opts ...Option) (*Experience, error) {
	if cfg == nil || catalog == nil || policy == nil {
		return nil, services.Wrap(services.ErrConfiguration, "experience", "new", "config, catalog, and policy are required", nil)
	}
	for _, unit := range policy.GatedUnits() {
		if unit > catalog.Units() {
			return nil, services.Wrap(services.ErrConfiguration, "experience", "new",
				fmt.Sprintf("gate for season %d but the catalog has %d seasons", unit, catalog.Units()), nil)
		}
	}
	controller, err := flow.New(ctx, clk, persister, policy, flow.Options{
		Units:             catalog.Units(),
		OfferMenuShortcut: cfg.Flow.OfferMenuShortcut,
		CompletionDelay:   cfg.CompletionDelay(),
	}, logger)
	if err != nil {
		return nil, err
	}

	e := &Experience{
		ctx:        ctx,
		cfg:        cfg,
		clock:      clk,
		catalog:    catalog,
		controller: controller,
		base:       logger,
		logger:     logging.NewComponentLogger(logger, "experience"),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	e.prologue = &prologueScreen{e: e}
	e.interview = &interviewScreen{e: e}
	e.player = &playbackScreen{e: e}
	e.handlers = map[stage.Stage]stage.Handler{
		stage.Prologue:  e.prologue,
		stage.Intro:     &introScreen{e: e},
		stage.Interview: e.interview,
		stage.Menu:      &menuScreen{e: e},
		stage.Playback:  e.player,
	}
	controller.Subscribe(e.onStage)
	return e, nil
}

// Controller exposes the flow controller.
func (e *Experience) Controller() *flow.Controller { return e.controller }

// Catalog returns the loaded content.
func (e *Experience) Catalog() *content.Catalog { return e.catalog }

// Stage returns the current stage.
func (e *Experience) Stage() stage.Stage { return e.controller.Stage() }

// Quiz returns the open quiz session, or nil outside the interview.
func (e *Experience) Quiz() *quiz.Session { return e.interview.session }

// Player returns the open playback session, or nil outside playback.
func (e *Experience) Player() *playback.Session { return e.player.session }

// Interact handles the first user interaction on the start screen.
func (e *Experience) Interact() bool {
	return e.controller.Interact(e.ctx)
}

// SkipPrologue skips the prologue once the skip delay has passed.
func (e *Experience) SkipPrologue() error {
	if e.Stage() != stage.Prologue {
		return services.Wrap(services.ErrInvalidTransition, "experience", "skip prologue", "the prologue is not showing", nil)
	}
	return e.prologue.skip()
}

// ChooseInterview takes the quiz from the choice screen.
func (e *Experience) ChooseInterview() error {
	return e.controller.ChooseInterview(e.ctx)
}

// ChooseMenu goes straight to the season menu from the choice screen.
func (e *Experience) ChooseMenu() error {
	return e.controller.ChooseMenu(e.ctx)
}

// SelectSeason opens a season from the menu.
func (e *Experience) SelectSeason(unit int) error {
	return e.controller.SelectUnit(e.ctx, unit)
}

// SubmitCode tries an override code for a locked season.
func (e *Experience) SubmitCode(unit int, code string) (flow.CodeResult, error) {
	return e.controller.SubmitCode(e.ctx, unit, code)
}

// Back leaves playback for the menu.
func (e *Experience) Back() error {
	return e.controller.Back(e.ctx)
}

// Health reports every stage handler's readiness in presentation order.
func (e *Experience) Health(ctx context.Context) []stage.Health {
	var out []stage.Health
	for _, s := range stage.All() {
		if h, ok := e.handlers[s]; ok {
			out = append(out, h.HealthCheck(ctx))
		}
	}
	return out
}

// Close tears down the active screen, cancels pending transitions, and
// releases the storage medium.
func (e *Experience) Close() error {
	if e.active != nil {
		e.active.Exit(e.ctx)
		e.active = nil
	}
	e.controller.Close()
	if e.medium == nil {
		return nil
	}
	err := store.CloseMedium(e.medium)
	e.medium = nil
	return err
}

func (e *Experience) onStage(ev flow.Event) {
	ctx := services.WithStage(e.ctx, string(ev.To))
	if e.active != nil {
		e.active.Exit(ctx)
		e.active = nil
	}
	if e.hooks.Stage != nil {
		e.hooks.Stage(ev)
	}
	handler, ok := e.handlers[ev.To]
	if !ok {
		return
	}
	e.active = handler
	if err := handler.Enter(ctx); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, e.logger), "stage screen failed to start", "stage_enter_failed",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check the content catalog and configuration"),
			logging.String(logging.FieldImpact, "the screen stays empty until the viewer navigates away"),
		)
	}
}
