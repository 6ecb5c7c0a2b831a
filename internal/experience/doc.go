// Package experience assembles a runnable session: it opens storage, builds
// the unlock policy and flow controller, and binds a stage.Handler to every
// stage so the quiz, menu countdown, and playback sessions are created and
// torn down as the controller moves.
//
// All methods must be called from the clock's callback goroutine.
package experience
