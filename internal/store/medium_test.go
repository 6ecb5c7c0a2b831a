package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"seasonpass/internal/config"
	"seasonpass/internal/state"
)

func TestSQLiteMediumPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.db")

	m, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, found, err := m.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get missing = found %v err %v", found, err)
	}
	if err := m.Set(ctx, "a", []byte(`{"1":true}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "a", []byte(`{"1":false}`)); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	value, found, err := reopened.Get(ctx, "a")
	if err != nil || !found {
		t.Fatalf("Get after reopen: found %v err %v", found, err)
	}
	if string(value) != `{"1":false}` {
		t.Fatalf("last write should win, got %s", value)
	}
	keys, err := reopened.Keys(ctx)
	if err != nil || len(keys) != 1 || keys[0] != "a" {
		t.Fatalf("Keys = %v, %v", keys, err)
	}
}

func TestSQLiteMediumRejectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	m, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if _, err := m.db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = m.Close()

	if _, err := OpenSQLite(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestFileMediumWritesAtomically(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	m := NewFileMedium(filepath.Join(dir, "state.json"))

	if _, found, err := m.Get(ctx, "x"); err != nil || found {
		t.Fatalf("Get before write: found %v err %v", found, err)
	}
	if err := m.Set(ctx, "x", []byte(`{"2":{"startedAt":1,"unlockedByCode":false}}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := m.Set(ctx, "y", []byte(`{"1":true}`)); err != nil {
		t.Fatalf("Set second key: %v", err)
	}
	if err := m.Set(ctx, "z", []byte(`not json`)); err == nil {
		t.Fatal("expected invalid JSON to be rejected")
	}

	value, found, err := m.Get(ctx, "y")
	if err != nil || !found || string(value) != `{"1":true}` {
		t.Fatalf("Get y = %s %v %v", value, found, err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, entry := range entries {
		if filepath.Ext(entry.Name()) == ".tmp" {
			t.Fatalf("temp file left behind: %s", entry.Name())
		}
	}
}

func TestFileMediumRecoversFromCorruptFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{garbage"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}
	m := NewFileMedium(path)

	if _, _, err := m.Get(ctx, "k"); err == nil {
		t.Fatal("expected parse error from corrupt file")
	}

	s := New(m, testOptions(), nil)
	if s.LoadProgress(ctx).AnyCompleted() {
		t.Fatal("expected defaults from corrupt file")
	}
	s.SaveProgress(ctx, state.NewProgress(4).MarkCompleted(3))
	if !s.LoadProgress(ctx).Completed(3) {
		t.Fatal("expected save to replace the corrupt file")
	}
}

func TestOpenMediumSelectsBackend(t *testing.T) {
	tests := []struct {
		backend string
		check   func(Medium) bool
	}{
		{"memory", func(m Medium) bool { _, ok := m.(*MemoryMedium); return ok }},
		{"file", func(m Medium) bool { _, ok := m.(*FileMedium); return ok }},
		{"sqlite", func(m Medium) bool { _, ok := m.(*SQLiteMedium); return ok }},
	}
	for _, tt := range tests {
		t.Run(tt.backend, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.StateDir = filepath.Join(t.TempDir(), "state")
			cfg.Paths.LogDir = filepath.Join(cfg.Paths.StateDir, "logs")
			cfg.Storage.Backend = tt.backend

			m, err := OpenMedium(&cfg)
			if err != nil {
				t.Fatalf("OpenMedium: %v", err)
			}
			t.Cleanup(func() { _ = CloseMedium(m) })
			if !tt.check(m) {
				t.Fatalf("unexpected medium type %T", m)
			}
		})
	}

	cfg := config.Default()
	cfg.Storage.Backend = "cloud"
	if _, err := OpenMedium(&cfg); err == nil {
		t.Fatal("expected unsupported backend error")
	}
}
