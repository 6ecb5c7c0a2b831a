// Package clock provides the time source and timer scheduling used by the
// engine.
//
// Loop is the production clock: a single-goroutine event loop that runs user
// input, media callbacks, and timer callbacks one at a time, so engine state
// never needs locking. Manual is a deterministic clock for tests that only
// moves when Advance is called.
//
// Both guarantee that a timer stopped before its callback runs never runs,
// even if it had already fired and was waiting in the queue.
package clock
