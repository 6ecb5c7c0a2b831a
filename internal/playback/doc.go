// Package playback drives one season's audio track against its caption list.
//
// Session is an explicit state machine (idle, ready, playing, paused,
// completed, closed) fed by media callbacks and user transport actions. It
// maps the playback position to the active caption, resolves when the season
// counts as finished even when the media reports no usable duration, and
// fires its completion hook exactly once.
//
// Sessions are not safe for concurrent use; callers deliver every event from
// the engine's event loop.
package playback
