package clock

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented the
	// callback from running.
	Stop() bool
}

// Clock reads the current time and schedules callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Every runs f every interval until the returned timer is stopped. The first
// call happens after one interval.
func Every(c Clock, interval time.Duration, f func()) Timer {
	t := &repeating{}
	var schedule func()
	schedule = func() {
		t.current = c.AfterFunc(interval, func() {
			if t.stopped {
				return
			}
			f()
			if !t.stopped {
				schedule()
			}
		})
	}
	schedule()
	return t
}

// repeating is only touched from the clock's callback goroutine.
type repeating struct {
	current Timer
	stopped bool
}

func (r *repeating) Stop() bool {
	if r.stopped {
		return false
	}
	r.stopped = true
	if r.current != nil {
		r.current.Stop()
	}
	return true
}
