// Package state holds the persisted progression model: per-season completion
// flags and per-season unlock records.
//
// Values here are plain data. The flow controller owns the live copies and
// the store package serializes them; policy decisions live in package unlock.
package state
