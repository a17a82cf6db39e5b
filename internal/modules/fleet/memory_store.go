package fleet

import (
	"context"
	"sync"

	"safetaxi/internal/types"
)

// MemoryStore keeps the fleet in process; used when no database is configured.
type MemoryStore struct {
	mu    sync.RWMutex
	taxis []Taxi
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) ReplaceAll(_ context.Context, taxis []Taxi) error {
	cp := make([]Taxi, len(taxis))
	copy(cp, taxis)

	m.mu.Lock()
	m.taxis = cp
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) ListAll(_ context.Context) ([]Taxi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	cp := make([]Taxi, len(m.taxis))
	copy(cp, m.taxis)
	return cp, nil
}

func (m *MemoryStore) Get(_ context.Context, id types.ID) (Taxi, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.taxis {
		if t.ID == id {
			return t, nil
		}
	}
	return Taxi{}, ErrNotFound
}
