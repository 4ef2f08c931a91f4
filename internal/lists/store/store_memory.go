package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"remitguard/internal/lists/models"
	"remitguard/pkg/domain"
)

// InMemoryStore keeps list entries keyed by (type, address).
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*models.Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[string]*models.Entry)}
}

func (s *InMemoryStore) Upsert(_ context.Context, entry *models.Entry) (*models.Entry, error) {
	if entry == nil {
		return nil, fmt.Errorf("list entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := entry.Key()
	if existing, ok := s.entries[key]; ok {
		existing.Reason = entry.Reason
		existing.Scope = entry.Scope
		existing.UpdatedAt = entry.UpdatedAt
		out := *existing
		return &out, nil
	}
	stored := *entry
	s.entries[key] = &stored
	out := stored
	return &out, nil
}

func (s *InMemoryStore) Exists(_ context.Context, listType domain.ListType, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.entries[models.Key(listType, address)]
	return ok, nil
}

func (s *InMemoryStore) List(_ context.Context, listType *domain.ListType) ([]*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if listType != nil && e.ListType != *listType {
			continue
		}
		cp := *e
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Key() < out[j].Key()
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
