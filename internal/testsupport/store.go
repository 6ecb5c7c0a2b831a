package testsupport

import (
	"testing"

	"seasonpass/internal/config"
	"seasonpass/internal/store"
)

// MustOpenStore opens the configured medium and wraps it in a Store covering
// units seasons and the config's gates. The medium is closed on cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config, units int) (*store.Store, store.Medium) {
	t.Helper()

	medium, err := store.OpenMedium(cfg)
	if err != nil {
		t.Fatalf("store.OpenMedium: %v", err)
	}
	t.Cleanup(func() {
		_ = store.CloseMedium(medium)
	})
	gated := make([]int, 0, len(cfg.Unlock.Gates))
	for _, g := range cfg.Unlock.Gates {
		gated = append(gated, g.Unit)
	}
	st := store.New(medium, store.Options{
		KeyPrefix:     cfg.Storage.KeyPrefix,
		SchemaVersion: cfg.Storage.SchemaVersion,
		Units:         units,
		GatedUnits:    gated,
	}, nil)
	return st, medium
}
