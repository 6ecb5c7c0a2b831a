package clock

import (
	"context"
	"errors"
	"testing"
	"time"
)

var epoch = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestManualRunsTimersInDeadlineOrder(t *testing.T) {
	m := NewManual(epoch)
	var order []string

	m.AfterFunc(3*time.Second, func() { order = append(order, "c") })
	m.AfterFunc(time.Second, func() {
		order = append(order, "a")
		m.AfterFunc(time.Second, func() { order = append(order, "b") })
	})
	m.AfterFunc(10*time.Second, func() { order = append(order, "late") })

	m.Advance(5 * time.Second)

	if got := len(order); got != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("order = %v", order)
	}
	if !m.Now().Equal(epoch.Add(5 * time.Second)) {
		t.Fatalf("now = %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Fatalf("pending = %d", m.Pending())
	}
}

func TestManualCallbackSeesDeadline(t *testing.T) {
	m := NewManual(epoch)
	var seen time.Time
	m.AfterFunc(2*time.Second, func() { seen = m.Now() })
	m.Advance(time.Minute)
	if !seen.Equal(epoch.Add(2 * time.Second)) {
		t.Fatalf("callback saw %v", seen)
	}
}

func TestManualStopPreventsCallback(t *testing.T) {
	m := NewManual(epoch)
	fired := false
	timer := m.AfterFunc(time.Second, func() { fired = true })
	if !timer.Stop() {
		t.Fatal("first Stop should report true")
	}
	if timer.Stop() {
		t.Fatal("second Stop should report false")
	}
	m.Advance(time.Hour)
	if fired {
		t.Fatal("stopped timer fired")
	}
}

func TestEveryRepeatsUntilStopped(t *testing.T) {
	m := NewManual(epoch)
	count := 0
	var ticker Timer
	ticker = Every(m, time.Second, func() {
		count++
		if count == 3 {
			ticker.Stop()
		}
	})
	m.Advance(10 * time.Second)
	if count != 3 {
		t.Fatalf("count = %d", count)
	}
	if m.Pending() != 0 {
		t.Fatalf("pending = %d", m.Pending())
	}
}

func TestLoopSerializesPostedWork(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	results := make(chan int, 3)
	for i := range 3 {
		loop.Post(func() { results <- i })
	}
	loop.Post(loop.Close)

	if err := loop.Run(ctx); !errors.Is(err, ErrLoopClosed) {
		t.Fatalf("Run = %v", err)
	}
	for want := range 3 {
		if got := <-results; got != want {
			t.Fatalf("got %d, want %d", got, want)
		}
	}
	if loop.Post(func() {}) {
		t.Fatal("Post after Close should fail")
	}
}

func TestLoopStoppedTimerNeverRuns(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	fired := false
	timer := loop.AfterFunc(10*time.Millisecond, func() { fired = true })
	loop.Post(func() {
		timer.Stop()
		loop.AfterFunc(50*time.Millisecond, loop.Close)
	})

	if err := loop.Run(ctx); !errors.Is(err, ErrLoopClosed) {
		t.Fatalf("Run = %v", err)
	}
	if fired {
		t.Fatal("stopped timer ran")
	}
}

func TestLoopTimerRunsOnLoop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	ran := false
	loop.AfterFunc(5*time.Millisecond, func() {
		ran = true
		loop.Close()
	})
	if err := loop.Run(ctx); !errors.Is(err, ErrLoopClosed) {
		t.Fatalf("Run = %v", err)
	}
	if !ran {
		t.Fatal("timer did not run")
	}
}
