package store

import (
	"context"
	"sync"
)

// MemoryMedium is a process-local medium. Failures can be injected to
// exercise the store's recovery paths.
type MemoryMedium struct {
	mu      sync.Mutex
	docs    map[string][]byte
	getErr  error
	setErr  error
	setHits int
}

// NewMemoryMedium returns an empty in-memory medium.
func NewMemoryMedium() *MemoryMedium {
	return &MemoryMedium{docs: make(map[string][]byte)}
}

// Get implements Medium.
func (m *MemoryMedium) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	value, ok := m.docs[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Set implements Medium.
func (m *MemoryMedium) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setHits++
	if m.setErr != nil {
		return m.setErr
	}
	m.docs[key] = append([]byte(nil), value...)
	return nil
}

// Put stores raw bytes, bypassing any injected failure.
func (m *MemoryMedium) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[key] = append([]byte(nil), value...)
}

// Raw returns the stored bytes for key, ignoring injected failures.
func (m *MemoryMedium) Raw(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.docs[key]
	return value, ok
}

// FailGets makes subsequent Get calls return err. A nil err clears it.
func (m *MemoryMedium) FailGets(err error) {
	m.mu.Lock()
	m.getErr = err
	m.mu.Unlock()
}

// FailSets makes subsequent Set calls return err. A nil err clears it.
func (m *MemoryMedium) FailSets(err error) {
	m.mu.Lock()
	m.setErr = err
	m.mu.Unlock()
}

// Writes returns how many Set calls were attempted.
func (m *MemoryMedium) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.setHits
}
