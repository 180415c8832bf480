package drafts

import (
	"context"
	"sync"

	"github.com/dkotelnikov/spotlist/internal/common"
)

// MemStore is an in-memory draft store for tests and throwaway sessions.
type MemStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

func NewMemStore() *MemStore {
	return &MemStore{drafts: make(map[string]Draft)}
}

func (m *MemStore) Save(_ context.Context, key string, d *Draft) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.drafts[key] = *d
	return nil
}

func (m *MemStore) Load(_ context.Context, key string) (*Draft, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.drafts[key]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &d, nil
}

func (m *MemStore) Clear(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.drafts, key)
	return nil
}
