// Package services defines the shared failure taxonomy and context helpers used
// by the progression engine and its collaborators (persistence medium, media
// track, user input).
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper, so every failure carries
//     the component and operation that produced it.
//   - Classify, which maps an error onto the three fault classes the engine
//     knows how to recover from (persistence, media, input).
//   - Context helpers that stamp stage names, unit numbers, session and
//     correlation identifiers for logging.
//
// None of these failures are fatal. Callers log them and degrade to a safe
// default instead of halting the experience.
package services
