// Package unlock decides which seasons a viewer may open.
//
// The policy is pure: every function takes the current progress, unlock
// records, and clock reading and returns a verdict or a new unlock state
// without touching its inputs. Nothing is cached, so callers re-poll as time
// advances.
//
// Season 1 is always open. A gated season k opens once season k-1 is complete
// and either its wait timer has elapsed or a correct override code was
// entered. In prerequisite mode the wait timer and codes are ignored.
package unlock
