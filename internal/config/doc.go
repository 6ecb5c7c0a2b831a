// Package config loads, normalizes, and validates seasonpass configuration.
//
// It supplies repository defaults (including the bundled season gates),
// expands user paths with tilde shortcuts, reads TOML files, loads an optional
// .env file, and honours SEASONPASS_* environment fallbacks. The Config type
// centralizes every knob the engine and CLI need: where progress is stored,
// how gated seasons unlock, quiz thresholds, and playback timing.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
