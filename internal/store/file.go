package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

const (
	lockRetryDelay = 20 * time.Millisecond
	lockTimeout    = 2 * time.Second
)

// FileMedium keeps every document in one JSON object on disk. Writes take an
// exclusive advisory lock on a sidecar file and replace the data file via
// rename so readers never observe a partial write.
type FileMedium struct {
	path string
	mu   sync.Mutex
}

// NewFileMedium returns a medium backed by the JSON file at path. The file is
// created lazily on the first Set.
func NewFileMedium(path string) *FileMedium {
	return &FileMedium{path: path}
}

// Path returns the data file location.
func (m *FileMedium) Path() string {
	return m.path
}

// Get implements Medium.
func (m *FileMedium) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if m == nil || m.path == "" {
		return nil, false, ErrUnavailable
	}
	if err := ensureContext(ctx).Err(); err != nil {
		return nil, false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	docs, err := m.readAll()
	if err != nil {
		return nil, false, err
	}
	value, ok := docs[key]
	if !ok {
		return nil, false, nil
	}
	return []byte(value), true, nil
}

// Set implements Medium.
func (m *FileMedium) Set(ctx context.Context, key string, value []byte) error {
	if m == nil || m.path == "" {
		return ErrUnavailable
	}
	ctx = ensureContext(ctx)
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	lockCtx, cancel := context.WithTimeout(ctx, lockTimeout)
	defer cancel()
	lock := flock.New(m.path + ".lock")
	locked, err := lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("lock state file: %w", err)
	}
	if !locked {
		return fmt.Errorf("lock state file: %s is held by another process", m.path)
	}
	defer func() { _ = lock.Unlock() }()

	docs, err := m.readAll()
	if err != nil {
		// A corrupt file is replaced rather than blocking every future write.
		docs = map[string]json.RawMessage{}
	}
	if !json.Valid(value) {
		return fmt.Errorf("encode document %q: value is not valid JSON", key)
	}
	docs[key] = json.RawMessage(value)

	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	return writeFileAtomic(m.path, data)
}

func (m *FileMedium) readAll() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state file: %w", err)
	}
	docs := map[string]json.RawMessage{}
	if len(data) == 0 {
		return docs, nil
	}
	if err := json.Unmarshal(data, &docs); err != nil {
		return nil, fmt.Errorf("parse state file: %w", err)
	}
	return docs, nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
