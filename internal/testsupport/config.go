package testsupport

import (
	"path/filepath"
	"testing"

	"seasonpass/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// NewConfig produces a config seeded with unique temp directories per test.
// Storage defaults to the in-memory backend and the bundled gates are
// installed, as normalization would do for a file without [[unlock.gates]].
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "logs")
	cfgVal.Storage.Backend = "memory"
	cfgVal.Unlock.Gates = config.DefaultGates()

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithBackend selects the storage backend.
func WithBackend(backend string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Storage.Backend = backend
	}
}

// WithUnlockMode selects timed or prerequisite gating.
func WithUnlockMode(mode string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Unlock.Mode = mode
	}
}

// WithGates replaces the unlock gates.
func WithGates(gates ...config.Gate) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Unlock.Gates = gates
	}
}

// WithContentPath points the config at a catalog file. Relative paths are
// resolved against the config's temp directory.
func WithContentPath(path string) ConfigOption {
	return func(b *configBuilder) {
		if !filepath.IsAbs(path) {
			path = filepath.Join(b.baseDir, path)
		}
		b.cfg.Paths.ContentPath = path
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}
