// Package media provides a simulated audio track for terminal playback.
//
// The track advances on clock ticks and reports metadata, readiness,
// position, and natural end to a Sink, mirroring the notifications an audio
// element delivers. It satisfies playback.Media so a playback session can
// drive it.
package media
