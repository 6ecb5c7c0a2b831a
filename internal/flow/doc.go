// Package flow sequences the experience from the start screen to the finale.
//
// Controller owns the live Progress and UnlockState values. It is the only
// writer of either: every mutation is persisted immediately through the
// injected Persister. Stage changes are validated against package stage and
// published to subscribed listeners, which is how screens learn to render.
//
// Completing season k marks it done, arms season k+1's wait timer through
// unlock.Policy.ArmTimer, and after a short delay returns to the menu, or to
// the finale when k was the last season. Leaving playback early cancels that
// delayed move.
//
// Controller is not safe for concurrent use. Drive it from one event loop.
package flow
