package credentials

import (
	"context"
	"sync"

	"github.com/waylink/go-deeplink/pkg/interfaces/credstore"
)

// MemoryStore is a simple in-memory implementation of a credential Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]credstore.Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]credstore.Record)}
}

func (m *MemoryStore) Put(_ context.Context, rec credstore.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[keyFromRecord(rec)] = rec
	return nil
}

func (m *MemoryStore) GetLatest(_ context.Context, environment, name string) (credstore.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest credstore.Record
	var found bool
	for _, rec := range m.items {
		if rec.Environment == environment && rec.Name == name {
			if !found || rec.Version > latest.Version {
				latest = rec
				found = true
			}
		}
	}
	if !found {
		return credstore.Record{}, ErrNotFound
	}
	return latest, nil
}

func (m *MemoryStore) GetVersion(_ context.Context, environment, name, version string) (credstore.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.items {
		if rec.Environment == environment && rec.Name == name && rec.Version == version {
			return rec, nil
		}
	}
	return credstore.Record{}, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, environment, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, rec := range m.items {
		if rec.Environment == environment && rec.Name == name {
			delete(m.items, k)
		}
	}
	return nil
}

func (m *MemoryStore) List(_ context.Context, environment, name string) ([]credstore.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []credstore.Record
	for _, rec := range m.items {
		if environment != "" && rec.Environment != environment {
			continue
		}
		if name != "" && rec.Name != name {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func keyFromRecord(rec credstore.Record) string {
	return rec.Environment + "|" + rec.Name + "|" + rec.Version
}
