// Package store persists season progress and unlock bookkeeping as small JSON
// documents in a pluggable key-value medium.
//
// Three media are provided: SQLiteMedium (the default, a single documents
// table with a schema_version guard and busy retries), FileMedium (one JSON
// file guarded by an advisory flock and replaced atomically), and
// MemoryMedium (process-local, with fault injection for tests).
//
// Store never surfaces medium failures to callers. Reads that fail or return
// malformed documents fall back to defaults field by field, and failed writes
// are logged and dropped so the experience keeps running with in-memory state.
package store
