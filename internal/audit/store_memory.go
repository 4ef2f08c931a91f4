package audit

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"remitguard/pkg/domain"
)

// InMemoryStore keeps audit entries in insertion order. It backs tests and
// deployments without DATABASE_URL.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries []*Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Append(_ context.Context, entry *Entry) error {
	if entry == nil {
		return fmt.Errorf("audit entry is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *entry
	stored.Reasons = append([]string{}, entry.Reasons...)
	s.entries = append(s.entries, &stored)
	return nil
}

func (s *InMemoryStore) ListByDecision(_ context.Context, decisionID domain.DecisionID) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*Entry
	for _, e := range s.entries {
		if e.DecisionID == decisionID {
			cp := *e
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *InMemoryStore) Query(_ context.Context, filter Filter) ([]*Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Entry, 0)
	for i := len(s.entries) - 1; i >= 0; i-- {
		if filter.Matches(s.entries[i]) {
			cp := *s.entries[i]
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}
