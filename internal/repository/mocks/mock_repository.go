// Package mocks provides mock implementations of repository interfaces for testing.
package mocks

import (
	"context"
	"sync"

	"boardroom-backend/internal/domain"
	"boardroom-backend/internal/repository"
)

// MockStore provides an in-memory implementation of repository.Store.
// It is also used as the "memory" store driver for local runs.
type MockStore struct {
	mu sync.RWMutex

	memories []domain.MemoryRecord
	turns    []domain.Turn
	appends  int

	// For testing error scenarios
	shouldFailOn map[string]error
}

var (
	_ repository.Store        = (*MockStore)(nil)
	_ repository.MemoryWriter = (*MockStore)(nil)
)

// NewMockStore creates a new mock store seeded with memories.
func NewMockStore(memories ...domain.MemoryRecord) *MockStore {
	return &MockStore{
		memories:     memories,
		shouldFailOn: make(map[string]error),
	}
}

// SetError configures the mock to return an error for a specific method.
func (m *MockStore) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn[method] = err
}

// ClearErrors removes all configured errors.
func (m *MockStore) ClearErrors() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.shouldFailOn = make(map[string]error)
}

// AddMemory appends a memory record.
func (m *MockStore) AddMemory(ctx context.Context, r domain.MemoryRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.shouldFailOn["AddMemory"]; err != nil {
		return err
	}
	m.memories = append(m.memories, r)
	return nil
}

// ListMemories returns the seeded memories in insertion order. Callers seed
// them already sorted by category, as a real store would return them.
func (m *MockStore) ListMemories(ctx context.Context) ([]domain.MemoryRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.shouldFailOn["ListMemories"]; err != nil {
		return nil, err
	}
	out := make([]domain.MemoryRecord, len(m.memories))
	copy(out, m.memories)
	return out, nil
}

// AppendTurns records turns in order.
func (m *MockStore) AppendTurns(ctx context.Context, turns ...domain.Turn) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.shouldFailOn["AppendTurns"]; err != nil {
		return err
	}
	m.turns = append(m.turns, turns...)
	m.appends++
	return nil
}

// Turns returns a copy of every appended turn.
func (m *MockStore) Turns() []domain.Turn {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Turn, len(m.turns))
	copy(out, m.turns)
	return out
}

// AppendCalls returns how many successful AppendTurns calls were made.
func (m *MockStore) AppendCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.appends
}

// Close is a no-op.
func (m *MockStore) Close() error { return nil }
