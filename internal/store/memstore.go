package store

import (
	"sort"
	"sync"

	"obelisk/pkg/pipeline"
)

// MemStore is an in-memory Store for tests and store-less serving.
type MemStore struct {
	mu      sync.RWMutex
	records map[string]Record
	order   []string
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{records: make(map[string]Record)}
}

func (m *MemStore) Save(deploymentID string, result pipeline.ExecutionResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := newRecord(deploymentID, result)
	if _, exists := m.records[rec.ExecutionID]; !exists {
		m.order = append(m.order, rec.ExecutionID)
	}
	m.records[rec.ExecutionID] = rec
	return nil
}

func (m *MemStore) Get(executionID string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[executionID]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemStore) List(limit int) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.records[id].summary())
	}
	// Newest first, matching the SQL store's ordering.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemStore) Close() error { return nil }
