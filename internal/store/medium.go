package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"seasonpass/internal/config"
)

// ErrUnavailable indicates the medium cannot be reached at all.
var ErrUnavailable = errors.New("storage medium unavailable")

// Medium is a minimal string-keyed document store.
type Medium interface {
	// Get returns the stored bytes for key. found is false when the key has
	// never been written.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
	// Set replaces the value stored under key.
	Set(ctx context.Context, key string, value []byte) error
}

// Closer is implemented by media holding OS resources.
type Closer interface {
	Close() error
}

// OpenMedium constructs the medium selected by cfg.Storage.Backend inside the
// configured state directory.
func OpenMedium(cfg *config.Config) (Medium, error) {
	if cfg == nil {
		return nil, errors.New("open medium: nil config")
	}
	switch cfg.Storage.Backend {
	case "memory":
		return NewMemoryMedium(), nil
	case "file":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return NewFileMedium(filepath.Join(cfg.Paths.StateDir, "state.json")), nil
	case "sqlite", "":
		if err := cfg.EnsureDirectories(); err != nil {
			return nil, fmt.Errorf("ensure directories: %w", err)
		}
		return OpenSQLite(filepath.Join(cfg.Paths.StateDir, "state.db"))
	default:
		return nil, fmt.Errorf("open medium: unsupported backend %q", cfg.Storage.Backend)
	}
}

// CloseMedium closes m when it holds resources.
func CloseMedium(m Medium) error {
	if closer, ok := m.(Closer); ok {
		return closer.Close()
	}
	return nil
}
