package experience

import (
	"context"
	"fmt"
	"time"

	"seasonpass/internal/clock"
	"seasonpass/internal/logging"
	"seasonpass/internal/media"
	"seasonpass/internal/playback"
	"seasonpass/internal/quiz"
	"seasonpass/internal/services"
	"seasonpass/internal/stage"
)

func stopTimer(t *clock.Timer) {
	if *t != nil {
		(*t).Stop()
		*t = nil
	}
}

// prologueScreen runs the opening piece. It ends on its own after the
// catalog's prologue length, or early through skip once the skip delay has
// passed; either way the move to the intro waits for the fade.
type prologueScreen struct {
	e         *Experience
	started   time.Time
	ending    bool
	end       clock.Timer
	skippable clock.Timer
	fade      clock.Timer
}

func (p *prologueScreen) Enter(ctx context.Context) error {
	p.started = p.e.clock.Now()
	p.ending = false
	if secs := p.e.catalog.PrologueSeconds; secs > 0 {
		p.end = p.e.clock.AfterFunc(seconds(secs), p.finish)
	}
	p.skippable = p.e.clock.AfterFunc(p.e.cfg.PrologueSkipAfter(), func() {
		p.skippable = nil
		if p.e.hooks.PrologueSkippable != nil {
			p.e.hooks.PrologueSkippable()
		}
	})
	return nil
}

func (p *prologueScreen) Exit(context.Context) {
	stopTimer(&p.end)
	stopTimer(&p.skippable)
	stopTimer(&p.fade)
}

func (p *prologueScreen) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("prologue")
}

func (p *prologueScreen) skip() error {
	if p.ending {
		return nil
	}
	if elapsed := p.e.clock.Now().Sub(p.started); elapsed < p.e.cfg.PrologueSkipAfter() {
		return services.Wrap(services.ErrInput, "experience", "skip prologue",
			fmt.Sprintf("skip is available after %s", p.e.cfg.PrologueSkipAfter()), nil)
	}
	p.finish()
	return nil
}

func (p *prologueScreen) finish() {
	if p.ending {
		return
	}
	p.ending = true
	stopTimer(&p.end)
	stopTimer(&p.skippable)
	p.fade = p.e.clock.AfterFunc(p.e.cfg.PrologueFade(), func() {
		p.fade = nil
		if err := p.e.controller.PrologueEnded(p.e.ctx); err != nil {
			p.e.logger.Warn("prologue end rejected", logging.Error(err))
		}
	})
}

// introScreen ends itself after the configured intro duration.
type introScreen struct {
	e     *Experience
	timer clock.Timer
}

func (s *introScreen) Enter(context.Context) error {
	s.timer = s.e.clock.AfterFunc(s.e.cfg.IntroDuration(), func() {
		s.timer = nil
		if err := s.e.controller.IntroEnded(s.e.ctx); err != nil {
			s.e.logger.Warn("intro end rejected", logging.Error(err))
		}
	})
	return nil
}

func (s *introScreen) Exit(context.Context) {
	stopTimer(&s.timer)
}

func (s *introScreen) HealthCheck(context.Context) stage.Health {
	return stage.Healthy("intro")
}

// interviewScreen owns the quiz session.
type interviewScreen struct {
	e       *Experience
	session *quiz.Session
}

func (s *interviewScreen) Enter(context.Context) error {
	hooks := s.e.hooks
	session, err := quiz.NewSession(s.e.clock, s.e.catalog.Questions, s.options(), quiz.Hooks{
		Phase:    hooks.QuizPhase,
		Question: hooks.QuizQuestion,
		Passed: func() {
			if err := s.e.controller.QuizPassed(s.e.ctx); err != nil {
				s.e.logger.Warn("quiz pass rejected", logging.Error(err))
			}
		},
	}, s.e.base)
	if err != nil {
		return err
	}
	s.session = session
	if hooks.QuizPhase != nil {
		hooks.QuizPhase(session.Phase())
	}
	return nil
}

func (s *interviewScreen) Exit(context.Context) {
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
}

func (s *interviewScreen) HealthCheck(context.Context) stage.Health {
	if err := quiz.Validate(s.e.catalog.Questions); err != nil {
		return stage.Unhealthy("interview", err.Error())
	}
	if pass := s.options().PassScore; pass > len(s.e.catalog.Questions) {
		return stage.Unhealthy("interview", fmt.Sprintf("pass score %d exceeds %d questions", pass, len(s.e.catalog.Questions)))
	}
	return stage.Healthy("interview")
}

func (s *interviewScreen) options() quiz.Options {
	return quiz.Options{
		PassScore:   s.e.cfg.Quiz.PassScore,
		AutoAdvance: s.e.cfg.QuizAutoAdvance(),
	}
}

// menuScreen republishes season statuses so countdowns keep moving.
type menuScreen struct {
	e    *Experience
	poll clock.Timer
}

func (s *menuScreen) Enter(context.Context) error {
	s.publish()
	if interval := s.e.cfg.MenuPoll(); interval > 0 {
		s.poll = clock.Every(s.e.clock, interval, s.publish)
	}
	return nil
}

func (s *menuScreen) Exit(context.Context) {
	stopTimer(&s.poll)
}

func (s *menuScreen) HealthCheck(context.Context) stage.Health {
	if s.e.cfg.MenuPoll() <= 0 {
		return stage.Unhealthy("menu", "menu_poll_ms must be positive")
	}
	return stage.Healthy("menu")
}

func (s *menuScreen) publish() {
	if s.e.hooks.Menu != nil {
		s.e.hooks.Menu(s.e.controller.Statuses())
	}
}

// playbackScreen owns the season's playback session and its track.
type playbackScreen struct {
	e       *Experience
	session *playback.Session
	track   *media.Track
}

func (s *playbackScreen) Enter(ctx context.Context) error {
	unit := s.e.controller.Unit()
	season, ok := s.e.catalog.Season(unit)
	if !ok {
		return services.Wrap(services.ErrConfiguration, "experience", "open season", fmt.Sprintf("season %d is not in the catalog", unit), nil)
	}
	cfg := s.e.cfg
	captions := season.PlaybackCaptions()
	length := season.AudioSeconds
	if length <= 0 {
		length = playback.FallbackCompletionTime(captions, cfg.Playback.GraceSeconds)
	}
	s.track = media.NewTrack(s.e.clock, media.Options{
		Duration:      season.AudioSeconds,
		Length:        length,
		Tick:          cfg.PlaybackTick(),
		BlockAutoplay: s.e.blockAutoplay,
	})

	hooks := s.e.hooks
	s.session = playback.NewSession(ctx, s.track, playback.Options{
		Unit:     unit,
		Captions: captions,
		Grace:    cfg.Playback.GraceSeconds,
		Epsilon:  cfg.Playback.CompletionEpsilon,
		Skip:     cfg.Playback.SkipSeconds,
	}, playback.Hooks{
		Caption: hooks.Caption,
		State: func(from, to playback.State) {
			if hooks.PlaybackState != nil {
				hooks.PlaybackState(unit, from, to)
			}
		},
		Completed: func(unit int) {
			if err := s.e.controller.UnitCompleted(s.e.ctx, unit); err != nil {
				s.e.logger.Warn("season completion rejected", logging.Error(err))
			}
		},
	}, s.e.base)
	s.track.Attach(s.session)
	s.track.Load()
	return nil
}

func (s *playbackScreen) Exit(context.Context) {
	if s.session != nil {
		s.session.Close()
		s.session = nil
	}
	s.track = nil
}

func (s *playbackScreen) HealthCheck(context.Context) stage.Health {
	for _, season := range s.e.catalog.Seasons {
		if season.AudioSeconds <= 0 && len(season.Captions) == 0 {
			return stage.Unhealthy("playback", fmt.Sprintf("season %d has no way to end", season.Number))
		}
	}
	if s.e.cfg.PlaybackTick() <= 0 {
		return stage.Unhealthy("playback", "tick_ms must be positive")
	}
	return stage.Healthy("playback")
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
