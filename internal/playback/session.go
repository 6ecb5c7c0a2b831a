package playback

import (
	"context"
	"errors"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"seasonpass/internal/logging"
	"seasonpass/internal/services"
)

// State is a playback session lifecycle state.
type State string

const (
	StateIdle      State = "idle"
	StateReady     State = "ready"
	StatePlaying   State = "playing"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
	StateClosed    State = "closed"
)

// Media is the audio track a session controls. Play may fail, for example
// when the platform blocks autoplay; the session then waits for an explicit
// play action.
type Media interface {
	Play() error
	Pause()
	Seek(seconds float64)
}

// Hooks receive session notifications. Any hook may be nil.
type Hooks struct {
	// Caption is called when the active caption changes. index is -1 when
	// no caption is active.
	Caption func(index int, caption Caption)
	// State is called after every state change.
	State func(from, to State)
	// Completed is called exactly once per session.
	Completed func(unit int)
}

// Options configure a session.
type Options struct {
	Unit     int
	Captions []Caption
	// Grace is added to the last caption time when the media duration is unusable.
	Grace float64
	// Epsilon tolerates position updates that land just short of the end.
	Epsilon float64
	// Skip is the jump size for SkipForward and SkipBackward.
	Skip float64
}

// Session tracks one season's playback.
type Session struct {
	id             string
	unit           int
	media          Media
	captions       []Caption
	grace          float64
	epsilon        float64
	skip           float64
	hooks          Hooks
	logger         *slog.Logger
	state          State
	position       float64
	duration       float64
	completionTime float64
	active         int
	autoStarted    bool
	latched        bool
}

// NewSession creates an idle session. Captions are sorted on entry.
func NewSession(ctx context.Context, media Media, opts Options, hooks Hooks, logger *slog.Logger) *Session {
	captions := SortCaptions(opts.Captions)
	id := uuid.NewString()
	ctx = services.WithUnit(services.WithSessionID(ctx, id), opts.Unit)
	s := &Session{
		id:       id,
		unit:     opts.Unit,
		media:    media,
		captions: captions,
		grace:    opts.Grace,
		epsilon:  opts.Epsilon,
		skip:     opts.Skip,
		hooks:    hooks,
		logger:   logging.WithContext(ctx, logging.NewComponentLogger(logger, "playback")),
		state:    StateIdle,
		active:   -1,
	}
	s.completionTime = FallbackCompletionTime(captions, s.grace)
	return s
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// Unit returns the season this session plays.
func (s *Session) Unit() int { return s.unit }

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Position returns the last known playback position in seconds.
func (s *Session) Position() float64 { return s.position }

// CompletionTime returns the resolved end of the season in seconds.
func (s *Session) CompletionTime() float64 { return s.completionTime }

// Duration returns the raw media-reported duration, which may be unusable.
func (s *Session) Duration() float64 { return s.duration }

// Completed reports whether the completion latch has fired.
func (s *Session) Completed() bool { return s.latched }

// Captions returns the sorted caption list.
func (s *Session) Captions() []Caption { return s.captions }

// ActiveIndex returns the active caption index, or -1.
func (s *Session) ActiveIndex() int { return s.active }

// ActiveCaption returns the active caption, if any.
func (s *Session) ActiveCaption() (Caption, bool) {
	if s.active < 0 || s.active >= len(s.captions) {
		return Caption{}, false
	}
	return s.captions[s.active], true
}

// MediaMetadata records the duration reported by the media. Unusable values
// keep the caption-derived completion time.
func (s *Session) MediaMetadata(duration float64) {
	if s.state == StateClosed {
		return
	}
	s.duration = duration
	if !ValidDuration(duration) {
		logging.WarnWithContext(s.logger, "media duration unusable; using caption timing", "media_duration_invalid",
			logging.Float64("duration", sanitizeFloat(duration)),
			logging.Float64("completion_time", s.completionTime),
			logging.String(logging.FieldErrorHint, "check the audio file metadata"),
			logging.String(logging.FieldImpact, "season ends shortly after the last caption"),
		)
		return
	}
	s.completionTime = duration
	s.logger.Debug("media duration resolved", logging.Float64("completion_time", duration))
}

// MediaReady handles the media's ready-to-play notification. Only the first
// notification auto-starts playback.
func (s *Session) MediaReady() {
	if s.state == StateClosed {
		return
	}
	if s.state == StateIdle {
		s.setState(StateReady)
	}
	if s.autoStarted {
		return
	}
	s.autoStarted = true
	if err := s.play(); err != nil {
		logging.WarnWithContext(s.logger, "autoplay blocked; waiting for play action", "autoplay_blocked",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "press play to start the season"),
			logging.String(logging.FieldImpact, "playback starts only after user action"),
		)
	}
}

// PositionUpdate handles a position report from the media.
func (s *Session) PositionUpdate(t float64) {
	if s.state == StateClosed {
		return
	}
	s.setPosition(t)
}

// MediaEnded handles the media's natural end-of-content notification.
func (s *Session) MediaEnded() {
	if s.state == StateClosed {
		return
	}
	s.latch("media_ended")
}

// TogglePlay starts or pauses playback.
func (s *Session) TogglePlay() error {
	switch s.state {
	case StatePlaying:
		s.media.Pause()
		s.setState(StatePaused)
		return nil
	case StateReady, StatePaused:
		return s.play()
	default:
		return services.Wrap(services.ErrInvalidTransition, "playback", "toggle", "cannot toggle playback while "+string(s.state), nil)
	}
}

// SkipForward jumps ahead by the skip size, stopping at the completion time.
func (s *Session) SkipForward() error {
	return s.Seek(math.Min(s.position+s.skip, s.completionTime))
}

// SkipBackward jumps back by the skip size, stopping at zero.
func (s *Session) SkipBackward() error {
	return s.Seek(math.Max(s.position-s.skip, 0))
}

// Seek moves playback to t and recomputes the active caption immediately.
func (s *Session) Seek(t float64) error {
	if s.state == StateClosed || s.state == StateIdle {
		return services.Wrap(services.ErrInvalidTransition, "playback", "seek", "cannot seek while "+string(s.state), nil)
	}
	if math.IsNaN(t) || math.IsInf(t, 0) {
		return services.Wrap(services.ErrInput, "playback", "seek", "position must be finite", nil)
	}
	t = math.Max(t, 0)
	s.media.Seek(t)
	s.setPosition(t)
	return nil
}

// Close tears the session down: the media is paused and rewound. Later events
// are ignored.
func (s *Session) Close() {
	if s.state == StateClosed {
		return
	}
	if s.media != nil {
		s.media.Pause()
		s.media.Seek(0)
	}
	s.setState(StateClosed)
	s.logger.Debug("playback session closed", logging.Float64("position", s.position))
}

func (s *Session) play() error {
	if err := s.media.Play(); err != nil {
		return services.Wrap(services.ErrMedia, "playback", "play", "media refused to play", err)
	}
	if s.state != StateCompleted {
		s.setState(StatePlaying)
	}
	return nil
}

func (s *Session) setPosition(t float64) {
	if math.IsNaN(t) {
		return
	}
	s.position = t
	if idx := ActiveIndex(s.captions, t); idx != s.active {
		s.active = idx
		if s.hooks.Caption != nil {
			var c Caption
			if idx >= 0 {
				c = s.captions[idx]
			}
			s.hooks.Caption(idx, c)
		}
	}
	if t >= s.completionTime-s.epsilon {
		s.latch("threshold")
	}
}

func (s *Session) latch(trigger string) {
	if s.latched {
		return
	}
	s.latched = true
	s.setState(StateCompleted)
	s.logger.Info("season playback complete",
		logging.String(logging.FieldEventType, "season_playback_complete"),
		logging.String("trigger", trigger),
		logging.Float64("position", s.position),
		logging.Float64("completion_time", s.completionTime),
	)
	if s.hooks.Completed != nil {
		s.hooks.Completed(s.unit)
	}
}

func (s *Session) setState(next State) {
	if s.state == next {
		return
	}
	prev := s.state
	s.state = next
	if s.hooks.State != nil {
		s.hooks.State(prev, next)
	}
}

func sanitizeFloat(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return -1
	}
	return v
}

// IsBlocked reports whether err came from the media refusing to play.
func IsBlocked(err error) bool {
	return errors.Is(err, services.ErrMedia)
}
