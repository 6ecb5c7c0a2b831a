package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"seasonpass/internal/logging"
	"seasonpass/internal/services"
	"seasonpass/internal/state"
)

// Options names the persisted documents and the seasons they cover.
type Options struct {
	// KeyPrefix namespaces the document keys.
	KeyPrefix string
	// SchemaVersion is appended to every key so incompatible layouts never
	// collide.
	SchemaVersion string
	// Units is the number of seasons tracked in Progress.
	Units int
	// GatedUnits lists seasons that carry unlock records.
	GatedUnits []int
}

// Store loads and saves progression documents through a Medium.
type Store struct {
	medium Medium
	opts   Options
	logger *slog.Logger
}

// New builds a store on medium. A nil medium is tolerated: every load returns
// defaults and every save is dropped with a warning.
func New(medium Medium, opts Options, logger *slog.Logger) *Store {
	if strings.TrimSpace(opts.KeyPrefix) == "" {
		opts.KeyPrefix = "seasonpass"
	}
	if strings.TrimSpace(opts.SchemaVersion) == "" {
		opts.SchemaVersion = "v1"
	}
	return &Store{
		medium: medium,
		opts:   opts,
		logger: logging.NewComponentLogger(logger, "store"),
	}
}

// ProgressKey returns the key holding the progress document.
func (s *Store) ProgressKey() string {
	return s.opts.KeyPrefix + ".progress." + s.opts.SchemaVersion
}

// UnlockStateKey returns the key holding the unlock document.
func (s *Store) UnlockStateKey() string {
	return s.opts.KeyPrefix + ".unlockState." + s.opts.SchemaVersion
}

// Load reads key and decodes it as a JSON object. ok is false when the key is
// absent, unreadable, or not an object; failures are logged, never returned.
func (s *Store) Load(ctx context.Context, key string) (map[string]json.RawMessage, bool) {
	if s.medium == nil {
		s.warn(ctx, "state medium unavailable; using defaults", "state_load_failed", key, services.Wrap(services.ErrPersistence, "store", "load", "no medium configured", ErrUnavailable))
		return nil, false
	}
	data, found, err := s.medium.Get(ctx, key)
	if err != nil {
		s.warn(ctx, "state read failed; using defaults", "state_load_failed", key, services.Wrap(services.ErrPersistence, "store", "load", "read document", err))
		return nil, false
	}
	if !found || len(data) == 0 {
		return nil, false
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(data, &doc); err != nil || doc == nil {
		if err == nil {
			err = errors.New("document is not a JSON object")
		}
		s.warn(ctx, "state document corrupted; using defaults", "state_document_corrupt", key, services.Wrap(services.ErrPersistence, "store", "decode", "parse document", err))
		return nil, false
	}
	return doc, true
}

// Save serializes doc and writes it under key. Failures are logged and dropped.
func (s *Store) Save(ctx context.Context, key string, doc any) {
	data, err := json.Marshal(doc)
	if err != nil {
		s.warn(ctx, "state encode failed; change kept in memory only", "state_save_failed", key, services.Wrap(services.ErrPersistence, "store", "encode", "marshal document", err))
		return
	}
	if s.medium == nil {
		s.warn(ctx, "state medium unavailable; change kept in memory only", "state_save_failed", key, services.Wrap(services.ErrPersistence, "store", "save", "no medium configured", ErrUnavailable))
		return
	}
	if err := s.medium.Set(ctx, key, data); err != nil {
		s.warn(ctx, "state write failed; change kept in memory only", "state_save_failed", key, services.Wrap(services.ErrPersistence, "store", "save", "write document", err))
		return
	}
	logging.WithContext(ctx, s.logger).Debug("state saved", logging.String("key", key), logging.Int("bytes", len(data)))
}

// LoadProgress returns persisted progress, or all-incomplete defaults.
func (s *Store) LoadProgress(ctx context.Context) state.Progress {
	doc, ok := s.Load(ctx, s.ProgressKey())
	if !ok {
		return state.NewProgress(s.opts.Units)
	}
	return decodeProgress(doc, s.opts.Units)
}

// SaveProgress persists p.
func (s *Store) SaveProgress(ctx context.Context, p state.Progress) {
	s.Save(ctx, s.ProgressKey(), encodeProgress(p, s.opts.Units))
}

// LoadUnlockState returns persisted unlock records, or empty defaults.
func (s *Store) LoadUnlockState(ctx context.Context) state.UnlockState {
	doc, ok := s.Load(ctx, s.UnlockStateKey())
	if !ok {
		return state.NewUnlockState(s.opts.GatedUnits)
	}
	return decodeUnlockState(doc, s.opts.GatedUnits)
}

// SaveUnlockState persists u.
func (s *Store) SaveUnlockState(ctx context.Context, u state.UnlockState) {
	s.Save(ctx, s.UnlockStateKey(), encodeUnlockState(u, s.opts.GatedUnits))
}

func (s *Store) warn(ctx context.Context, msg, eventType, key string, err error) {
	logging.WarnWithContext(logging.WithContext(ctx, s.logger), msg, eventType,
		logging.String("key", key),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, fmt.Sprintf("check the %s storage medium", s.opts.KeyPrefix)),
		logging.String(logging.FieldImpact, "progress may not survive a restart"),
	)
}
