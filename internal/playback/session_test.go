package playback

import (
	"context"
	"errors"
	"math"
	"testing"

	"seasonpass/internal/services"
)

type fakeMedia struct {
	playErr  error
	plays    int
	pauses   int
	seeks    []float64
	position float64
}

func (m *fakeMedia) Play() error {
	m.plays++
	return m.playErr
}

func (m *fakeMedia) Pause() { m.pauses++ }

func (m *fakeMedia) Seek(seconds float64) {
	m.seeks = append(m.seeks, seconds)
	m.position = seconds
}

type recorder struct {
	completions []int
	captions    []int
	states      []State
}

func (r *recorder) hooks() Hooks {
	return Hooks{
		Caption:   func(index int, _ Caption) { r.captions = append(r.captions, index) },
		State:     func(_, to State) { r.states = append(r.states, to) },
		Completed: func(unit int) { r.completions = append(r.completions, unit) },
	}
}

func newTestSession(media Media, rec *recorder) *Session {
	return NewSession(context.Background(), media, Options{
		Unit:     2,
		Captions: sampleCaptions,
		Grace:    2,
		Epsilon:  0.02,
		Skip:     5,
	}, rec.hooks(), nil)
}

func TestSessionAutoStartsOnce(t *testing.T) {
	media := &fakeMedia{}
	rec := &recorder{}
	s := newTestSession(media, rec)

	s.MediaReady()
	s.MediaReady()

	if media.plays != 1 {
		t.Fatalf("expected one play call, got %d", media.plays)
	}
	if s.State() != StatePlaying {
		t.Fatalf("state = %s", s.State())
	}
	if len(rec.states) < 2 || rec.states[0] != StateReady || rec.states[1] != StatePlaying {
		t.Fatalf("state transitions = %v", rec.states)
	}
}

func TestSessionAutoplayBlockedWaitsForPlay(t *testing.T) {
	media := &fakeMedia{playErr: errors.New("NotAllowedError")}
	s := newTestSession(media, &recorder{})

	s.MediaReady()
	if s.State() != StateReady {
		t.Fatalf("state = %s, want ready", s.State())
	}

	err := s.TogglePlay()
	if !IsBlocked(err) || services.Classify(err) != services.FaultMedia {
		t.Fatalf("expected media fault, got %v", err)
	}

	media.playErr = nil
	if err := s.TogglePlay(); err != nil {
		t.Fatalf("TogglePlay: %v", err)
	}
	if s.State() != StatePlaying {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.TogglePlay(); err != nil || s.State() != StatePaused || media.pauses != 1 {
		t.Fatalf("pause: err=%v state=%s pauses=%d", err, s.State(), media.pauses)
	}
}

func TestSessionTracksActiveCaption(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(&fakeMedia{}, rec)
	s.MediaReady()

	s.PositionUpdate(0.5)
	s.PositionUpdate(1.0)
	s.PositionUpdate(3)

	if c, ok := s.ActiveCaption(); !ok || c.Text != "second" {
		t.Fatalf("active caption = %+v %v", c, ok)
	}
	if len(rec.captions) != 2 || rec.captions[0] != 0 || rec.captions[1] != 1 {
		t.Fatalf("caption notifications = %v", rec.captions)
	}
}

func TestSessionFallbackCompletionFiresOnce(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(&fakeMedia{}, rec)
	s.MediaMetadata(math.NaN())
	s.MediaReady()

	if s.CompletionTime() != 6.5 {
		t.Fatalf("completion time = %v", s.CompletionTime())
	}
	s.PositionUpdate(6.47)
	if s.Completed() {
		t.Fatal("latched too early")
	}
	s.PositionUpdate(6.485)
	s.MediaEnded()
	s.PositionUpdate(7)

	if len(rec.completions) != 1 || rec.completions[0] != 2 {
		t.Fatalf("completions = %v", rec.completions)
	}
	if s.State() != StateCompleted {
		t.Fatalf("state = %s", s.State())
	}
}

func TestSessionNaturalEndBeforeThreshold(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(&fakeMedia{}, rec)
	s.MediaMetadata(120)
	s.MediaReady()
	s.PositionUpdate(50)
	s.MediaEnded()
	s.PositionUpdate(120)

	if len(rec.completions) != 1 {
		t.Fatalf("completions = %v", rec.completions)
	}
}

func TestSessionLatchIsPermanentAcrossSeeks(t *testing.T) {
	rec := &recorder{}
	s := newTestSession(&fakeMedia{}, rec)
	s.MediaMetadata(10)
	s.MediaReady()

	s.PositionUpdate(10)
	if err := s.Seek(1); err != nil {
		t.Fatalf("Seek: %v", err)
	}
	if c, _ := s.ActiveCaption(); c.Text != "first" {
		t.Fatalf("seek did not recompute caption: %+v", c)
	}
	s.PositionUpdate(5)
	s.PositionUpdate(10)

	if len(rec.completions) != 1 {
		t.Fatalf("completion re-fired: %v", rec.completions)
	}
}

func TestSessionSkipClampsAndCanCrossThreshold(t *testing.T) {
	media := &fakeMedia{}
	rec := &recorder{}
	s := newTestSession(media, rec)
	s.MediaReady()

	if err := s.SkipBackward(); err != nil {
		t.Fatalf("SkipBackward: %v", err)
	}
	if s.Position() != 0 {
		t.Fatalf("backward skip should clamp to 0, got %v", s.Position())
	}
	if err := s.SkipForward(); err != nil {
		t.Fatalf("SkipForward: %v", err)
	}
	if s.Position() != 5 || s.ActiveIndex() != 2 {
		t.Fatalf("position=%v active=%d", s.Position(), s.ActiveIndex())
	}
	if err := s.SkipForward(); err != nil {
		t.Fatalf("SkipForward: %v", err)
	}
	if s.Position() != 6.5 {
		t.Fatalf("forward skip should clamp to completion time, got %v", s.Position())
	}
	if len(rec.completions) != 1 {
		t.Fatalf("crossing the threshold by skip should complete once, got %v", rec.completions)
	}
	if got := media.seeks; len(got) != 3 || got[2] != 6.5 {
		t.Fatalf("media seeks = %v", got)
	}
}

func TestSessionCloseReleasesMediaAndIgnoresLateEvents(t *testing.T) {
	media := &fakeMedia{}
	rec := &recorder{}
	s := newTestSession(media, rec)
	s.MediaReady()

	s.PositionUpdate(3)
	s.Close()

	s.PositionUpdate(10)
	s.MediaEnded()

	if len(rec.completions) != 0 {
		t.Fatal("completion fired after close")
	}
	if media.pauses != 1 || media.position != 0 {
		t.Fatalf("media not released: pauses=%d position=%v", media.pauses, media.position)
	}
	if s.State() != StateClosed {
		t.Fatalf("state = %s", s.State())
	}
	if err := s.Seek(2); err == nil {
		t.Fatal("seek after close should fail")
	}
	if err := s.TogglePlay(); services.Classify(err) != services.FaultInput {
		t.Fatalf("toggle after close = %v", err)
	}
}

func TestSessionRejectsNonFiniteSeek(t *testing.T) {
	s := newTestSession(&fakeMedia{}, &recorder{})
	s.MediaReady()
	if err := s.Seek(math.Inf(1)); err == nil {
		t.Fatal("expected error")
	}
}
