package media

import (
	"errors"
	"math"
	"time"

	"seasonpass/internal/clock"
)

// ErrAutoplayBlocked is returned by the first Play when the track was built
// with BlockAutoplay.
var ErrAutoplayBlocked = errors.New("autoplay blocked until user action")

// Sink receives track notifications. *playback.Session implements it.
type Sink interface {
	MediaMetadata(duration float64)
	MediaReady()
	PositionUpdate(seconds float64)
	MediaEnded()
}

// Options configure a Track.
type Options struct {
	// Duration is the length reported in metadata. Zero or less reports NaN.
	Duration float64
	// Length is how long the track actually plays before ending. Zero means
	// Duration; when both are zero the track never ends on its own.
	Length float64
	// Tick is the position reporting interval.
	Tick time.Duration
	// BlockAutoplay rejects the first Play call.
	BlockAutoplay bool
}

// Track is a clock-driven stand-in for an audio element. All methods must be
// called from the clock's callback goroutine.
type Track struct {
	clock    clock.Clock
	opts     Options
	sink     Sink
	position float64
	playing  bool
	ended    bool
	blocked  bool
	ticker   clock.Timer
}

// NewTrack builds a paused track at position zero.
func NewTrack(clk clock.Clock, opts Options) *Track {
	if opts.Tick <= 0 {
		opts.Tick = 250 * time.Millisecond
	}
	if opts.Length <= 0 && opts.Duration > 0 {
		opts.Length = opts.Duration
	}
	return &Track{clock: clk, opts: opts, blocked: opts.BlockAutoplay}
}

// Attach sets the notification sink.
func (t *Track) Attach(sink Sink) {
	t.sink = sink
}

// Load announces metadata and readiness.
func (t *Track) Load() {
	if t.sink == nil {
		return
	}
	duration := math.NaN()
	if t.opts.Duration > 0 {
		duration = t.opts.Duration
	}
	t.sink.MediaMetadata(duration)
	t.sink.MediaReady()
}

// Play starts position reporting. Playing an ended track restarts it.
func (t *Track) Play() error {
	if t.blocked {
		t.blocked = false
		return ErrAutoplayBlocked
	}
	if t.playing {
		return nil
	}
	if t.ended {
		t.ended = false
		t.position = 0
	}
	t.playing = true
	t.ticker = clock.Every(t.clock, t.opts.Tick, t.advance)
	return nil
}

// Pause stops position reporting.
func (t *Track) Pause() {
	if !t.playing {
		return
	}
	t.playing = false
	if t.ticker != nil {
		t.ticker.Stop()
		t.ticker = nil
	}
}

// Seek moves the play head. The caller already knows the new position so no
// update is reported.
func (t *Track) Seek(seconds float64) {
	if math.IsNaN(seconds) {
		return
	}
	seconds = math.Max(seconds, 0)
	if t.opts.Length > 0 {
		seconds = math.Min(seconds, t.opts.Length)
	}
	t.position = seconds
	t.ended = false
}

// Position returns the play head in seconds.
func (t *Track) Position() float64 { return t.position }

// Playing reports whether the track is advancing.
func (t *Track) Playing() bool { return t.playing }

// Ended reports whether the track reached its natural end.
func (t *Track) Ended() bool { return t.ended }

func (t *Track) advance() {
	if !t.playing {
		return
	}
	t.position += t.opts.Tick.Seconds()
	finished := t.opts.Length > 0 && t.position >= t.opts.Length
	if finished {
		t.position = t.opts.Length
	}
	if t.sink != nil {
		t.sink.PositionUpdate(t.position)
	}
	if !finished {
		return
	}
	t.Pause()
	t.ended = true
	if t.sink != nil {
		t.sink.MediaEnded()
	}
}
