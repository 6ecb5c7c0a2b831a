package experience

import (
	"context"
	"errors"
	"testing"
	"time"

	"seasonpass/internal/clock"
	"seasonpass/internal/config"
	"seasonpass/internal/content"
	"seasonpass/internal/flow"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
	"seasonpass/internal/services"
	"seasonpass/internal/stage"
	"seasonpass/internal/state"
	"seasonpass/internal/store"
	"seasonpass/internal/testsupport"
	"seasonpass/internal/unlock"
)

var epoch = time.Date(2025, 1, 29, 18, 0, 0, 0, time.UTC)

type recorder struct {
	stages     []stage.Stage
	skippable  int
	phases     []quiz.Phase
	menus      [][]unlock.Status
	captions   []string
	playStates []playback.State
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Stage:             func(ev flow.Event) { r.stages = append(r.stages, ev.To) },
		PrologueSkippable: func() { r.skippable++ },
		QuizPhase:         func(p quiz.Phase) { r.phases = append(r.phases, p) },
		Menu:              func(s []unlock.Status) { r.menus = append(r.menus, s) },
		PlaybackState:     func(_ int, _, to playback.State) { r.playStates = append(r.playStates, to) },
		Caption: func(_ int, c playback.Caption) {
			r.captions = append(r.captions, c.Text)
		},
	}
}

type fixture struct {
	cfg     *config.Config
	clock   *clock.Manual
	store   *store.Store
	medium  store.Medium
	catalog *content.Catalog
	rec     *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	catalog, err := content.Bundled()
	if err != nil {
		t.Fatalf("content.Bundled: %v", err)
	}
	st, medium := testsupport.MustOpenStore(t, cfg, catalog.Units())
	return &fixture{
		cfg:     cfg,
		clock:   clock.NewManual(epoch),
		store:   st,
		medium:  medium,
		catalog: catalog,
		rec:     &recorder{},
	}
}

func (f *fixture) open(t *testing.T, opts ...Option) *Experience {
	t.Helper()
	policy, err := unlock.FromConfig(f.cfg)
	if err != nil {
		t.Fatalf("unlock.FromConfig: %v", err)
	}
	opts = append([]Option{WithHooks(f.rec.hooks())}, opts...)
	exp, err := New(context.Background(), f.cfg, f.clock, f.catalog, policy, f.store, nil, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = exp.Close() })
	return exp
}

func mustNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func expectStage(t *testing.T, exp *Experience, want stage.Stage) {
	t.Helper()
	if got := exp.Stage(); got != want {
		t.Fatalf("stage = %s, want %s", got, want)
	}
}

// throughIntro drives start → prologue (skipped) → intro → next stage.
func throughIntro(t *testing.T, f *fixture, exp *Experience) {
	t.Helper()
	if !exp.Interact() {
		t.Fatal("first interaction should start the prologue")
	}
	expectStage(t, exp, stage.Prologue)
	f.clock.Advance(f.cfg.PrologueSkipAfter())
	mustNoErr(t, exp.SkipPrologue())
	f.clock.Advance(f.cfg.PrologueFade())
	expectStage(t, exp, stage.Intro)
	f.clock.Advance(f.cfg.IntroDuration())
}

func passQuiz(t *testing.T, f *fixture, exp *Experience) {
	t.Helper()
	session := exp.Quiz()
	if session == nil {
		t.Fatal("quiz session should be open during the interview")
	}
	mustNoErr(t, session.Start())
	for i := 0; i < session.Total(); i++ {
		if _, err := session.Select(session.Current().Correct); err != nil {
			t.Fatalf("select question %d: %v", i+1, err)
		}
		f.clock.Advance(f.cfg.QuizAutoAdvance())
	}
	if session.Phase() != quiz.PhaseResult || !session.Passed() {
		t.Fatalf("quiz should be passed, phase=%s score=%d", session.Phase(), session.Score())
	}
	mustNoErr(t, session.Continue())
}

func TestFirstRunReachesMenu(t *testing.T) {
	f := newFixture(t)
	exp := f.open(t)

	exp.Interact()
	if err := exp.SkipPrologue(); !errors.Is(err, services.ErrInput) {
		t.Fatalf("early skip = %v, want input error", err)
	}
	f.clock.Advance(f.cfg.PrologueSkipAfter())
	if f.rec.skippable != 1 {
		t.Fatalf("skippable notifications = %d, want 1", f.rec.skippable)
	}
	mustNoErr(t, exp.SkipPrologue())
	expectStage(t, exp, stage.Prologue)
	f.clock.Advance(f.cfg.PrologueFade())
	expectStage(t, exp, stage.Intro)
	f.clock.Advance(f.cfg.IntroDuration())
	expectStage(t, exp, stage.Interview)
	if len(f.rec.phases) == 0 || f.rec.phases[0] != quiz.PhaseRules {
		t.Fatalf("quiz should open on the rules screen, phases=%v", f.rec.phases)
	}

	passQuiz(t, f, exp)
	expectStage(t, exp, stage.Menu)
	if exp.Quiz() != nil {
		t.Fatal("quiz session should be released after leaving the interview")
	}
	if len(f.rec.menus) == 0 {
		t.Fatal("menu should publish statuses on entry")
	}
	statuses := f.rec.menus[len(f.rec.menus)-1]
	if statuses[0].Availability != unlock.Accessible || statuses[1].Availability != unlock.LockedNeedsPrerequisite {
		t.Fatalf("unexpected statuses: %+v", statuses)
	}

	before := len(f.rec.menus)
	f.clock.Advance(3 * f.cfg.MenuPoll())
	if got := len(f.rec.menus) - before; got != 3 {
		t.Fatalf("menu polled %d times, want 3", got)
	}
}

func TestPrologueEndsOnItsOwn(t *testing.T) {
	f := newFixture(t)
	exp := f.open(t)
	exp.Interact()
	f.clock.Advance(time.Duration(f.catalog.PrologueSeconds*float64(time.Second)) + f.cfg.PrologueFade())
	expectStage(t, exp, stage.Intro)
}

func TestSeasonCompletionArmsNextGate(t *testing.T) {
	f := newFixture(t)
	exp := f.open(t)
	throughIntro(t, f, exp)
	passQuiz(t, f, exp)

	mustNoErr(t, exp.SelectSeason(1))
	expectStage(t, exp, stage.Playback)
	player := exp.Player()
	if player == nil || player.State() != playback.StatePlaying {
		t.Fatalf("season should autoplay, player=%v", player)
	}

	season, _ := f.catalog.Season(1)
	f.clock.Advance(time.Duration(season.AudioSeconds*float64(time.Second)) + time.Second)
	if !player.Completed() {
		t.Fatalf("season should be complete at position %.2f", player.Position())
	}
	if len(f.rec.captions) == 0 || f.rec.captions[0] != season.Captions[0].Text {
		t.Fatalf("captions should be published in order, got %v", f.rec.captions)
	}
	expectStage(t, exp, stage.Playback)

	f.clock.Advance(f.cfg.CompletionDelay())
	expectStage(t, exp, stage.Menu)
	if exp.Player() != nil {
		t.Fatal("playback session should be released after leaving playback")
	}

	ctx := context.Background()
	if !f.store.LoadProgress(ctx).Completed(1) {
		t.Fatal("season 1 completion should be persisted")
	}
	if !f.store.LoadUnlockState(ctx).Record(2).Armed() {
		t.Fatal("season 2 timer should be persisted as armed")
	}
	st := exp.Controller().Status(2)
	if st.Availability != unlock.LockedWaiting || st.Remaining <= 59*time.Minute || st.Remaining > time.Hour {
		t.Fatalf("season 2 status = %+v", st)
	}

	if err := exp.SelectSeason(2); !errors.Is(err, services.ErrLocked) {
		t.Fatalf("select locked season = %v, want locked error", err)
	}
	res, err := exp.SubmitCode(2, "  MANOJ2901 ")
	mustNoErr(t, err)
	if !res.Accepted || !res.Opened {
		t.Fatalf("code result = %+v", res)
	}
	expectStage(t, exp, stage.Playback)
	if exp.Controller().Unit() != 2 {
		t.Fatalf("playing unit = %d, want 2", exp.Controller().Unit())
	}
}

func TestReturningViewerGetsChoice(t *testing.T) {
	f := newFixture(t)
	f.store.SaveProgress(context.Background(), state.NewProgress(4).MarkCompleted(1))
	exp := f.open(t)
	throughIntro(t, f, exp)
	expectStage(t, exp, stage.Choice)
	mustNoErr(t, exp.ChooseMenu())
	expectStage(t, exp, stage.Menu)
}

func TestBackCancelsPendingMove(t *testing.T) {
	f := newFixture(t)
	f.store.SaveProgress(context.Background(), state.NewProgress(4).MarkCompleted(1))
	exp := f.open(t)
	throughIntro(t, f, exp)
	mustNoErr(t, exp.ChooseMenu())

	mustNoErr(t, exp.SelectSeason(1))
	player := exp.Player()
	mustNoErr(t, player.Seek(player.CompletionTime()))
	if !exp.Controller().TransitionPending() {
		t.Fatal("completion should schedule the move back to the menu")
	}
	mustNoErr(t, exp.Back())
	expectStage(t, exp, stage.Menu)
	if player.State() != playback.StateClosed {
		t.Fatalf("player state = %s, want closed", player.State())
	}

	stagesBefore := len(f.rec.stages)
	f.clock.Advance(f.cfg.CompletionDelay())
	if len(f.rec.stages) != stagesBefore {
		t.Fatalf("cancelled move still fired: %v", f.rec.stages[stagesBefore:])
	}
}

func TestLastSeasonFallsBackToCaptionTiming(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	progress := state.NewProgress(4).MarkCompleted(1).MarkCompleted(2).MarkCompleted(3)
	f.store.SaveProgress(ctx, progress)
	unlocks := state.NewUnlockState([]int{2, 3, 4}).With(4, state.UnlockRecord{UnlockedByCode: true})
	f.store.SaveUnlockState(ctx, unlocks)

	exp := f.open(t)
	throughIntro(t, f, exp)
	mustNoErr(t, exp.ChooseMenu())
	mustNoErr(t, exp.SelectSeason(4))

	season, _ := f.catalog.Season(4)
	captions := season.PlaybackCaptions()
	want := playback.FallbackCompletionTime(captions, f.cfg.Playback.GraceSeconds)
	if got := exp.Player().CompletionTime(); got != want {
		t.Fatalf("completion time = %v, want %v", got, want)
	}

	f.clock.Advance(time.Duration((want+1)*float64(time.Second)) + f.cfg.CompletionDelay())
	expectStage(t, exp, stage.Final)
	if !f.store.LoadProgress(ctx).Completed(4) {
		t.Fatal("season 4 completion should be persisted")
	}
}

func TestBlockedAutoplayWaitsForPlay(t *testing.T) {
	f := newFixture(t)
	f.store.SaveProgress(context.Background(), state.NewProgress(4).MarkCompleted(1))
	exp := f.open(t, WithBlockedAutoplay(true))
	throughIntro(t, f, exp)
	mustNoErr(t, exp.ChooseMenu())
	mustNoErr(t, exp.SelectSeason(1))

	player := exp.Player()
	if player.State() != playback.StateReady {
		t.Fatalf("blocked autoplay state = %s, want ready", player.State())
	}
	f.clock.Advance(5 * time.Second)
	if player.Position() != 0 {
		t.Fatalf("blocked track advanced to %v", player.Position())
	}
	mustNoErr(t, player.TogglePlay())
	f.clock.Advance(time.Second)
	if player.State() != playback.StatePlaying || player.Position() <= 0 {
		t.Fatalf("after play: state=%s position=%v", player.State(), player.Position())
	}
}

func TestHealthAndClose(t *testing.T) {
	f := newFixture(t)
	exp := f.open(t)
	for _, h := range exp.Health(context.Background()) {
		if !h.Ready {
			t.Fatalf("%s not ready: %s", h.Name, h.Detail)
		}
	}
	throughIntro(t, f, exp)
	passQuiz(t, f, exp)
	if f.clock.Pending() == 0 {
		t.Fatal("menu should keep a poll timer")
	}
	mustNoErr(t, exp.Close())
	if f.clock.Pending() != 0 {
		t.Fatalf("timers left after close: %d", f.clock.Pending())
	}
}

func TestOpenUsesConfiguredBackend(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithBackend("file"))
	clk := clock.NewManual(epoch)
	exp, err := Open(context.Background(), cfg, clk, nil)
	mustNoErr(t, err)
	defer exp.Close()
	if exp.Catalog().Units() != 4 {
		t.Fatalf("units = %d", exp.Catalog().Units())
	}
	expectStage(t, exp, stage.Start)
}

func TestNewRejectsGateBeyondCatalog(t *testing.T) {
	f := newFixture(t)
	f.cfg.Unlock.Gates = append(f.cfg.Unlock.Gates, config.Gate{Unit: 9, WaitSeconds: 10, Code: "x"})
	policy, err := unlock.FromConfig(f.cfg)
	mustNoErr(t, err)
	_, err = New(context.Background(), f.cfg, f.clock, f.catalog, policy, f.store, nil)
	if services.Classify(err) != services.FaultConfiguration {
		t.Fatalf("err = %v, want configuration fault", err)
	}
}
