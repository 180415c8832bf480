package storage

import (
	"context"
	"fmt"
	"io"
	"sync"
)

// MemStore is an in-memory ObjectStore used in tests and local runs.
type MemStore struct {
	mu      sync.Mutex
	objects map[string][]byte

	// BaseURL prefixes public URLs; defaults to "mem://".
	BaseURL string
}

func NewMemStore() *MemStore {
	return &MemStore{objects: make(map[string][]byte), BaseURL: "mem://"}
}

func (m *MemStore) Put(_ context.Context, key string, r io.Reader, size int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("putting %s: size mismatch: declared %d, read %d", key, size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return nil
}

func (m *MemStore) PublicURL(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return "", fmt.Errorf("no object at %s", key)
	}
	return m.BaseURL + key, nil
}

func (m *MemStore) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.objects, key)
	}
	return nil
}

// Object returns the stored bytes for key, if present.
func (m *MemStore) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len reports the number of stored objects.
func (m *MemStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}
