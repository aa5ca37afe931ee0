package docstore

import (
	"context"
	"sort"
	"sync"

	"github.com/dmitrijs2005/siteaccounts/internal/common"
)

// MemoryStore keeps documents in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]map[string]map[string]any
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]map[string]map[string]any)}
}

func (m *MemoryStore) Get(ctx context.Context, collection, key string) (*Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	d, ok := m.data[collection][key]
	if !ok {
		return nil, nil
	}
	return &Document{Key: key, Data: cloneData(d)}, nil
}

func (m *MemoryStore) Set(ctx context.Context, collection, key string, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.data[collection]
	if !ok {
		c = make(map[string]map[string]any)
		m.data[collection] = c
	}
	c[key] = cloneData(data)
	return nil
}

func (m *MemoryStore) Update(ctx context.Context, collection, key string, fields map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	d, ok := m.data[collection][key]
	if !ok {
		return common.ErrorNotFound
	}
	for k, v := range fields {
		d[k] = v
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, collection, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data[collection], key)
	return nil
}

// Query returns matching documents ordered by key.
func (m *MemoryStore) Query(ctx context.Context, collection, field, value string) ([]Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Document
	for key, d := range m.data[collection] {
		if matches(d, field, value) {
			out = append(out, Document{Key: key, Data: cloneData(d)})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
