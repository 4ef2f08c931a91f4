package store

import (
	"context"
	"fmt"
	"sync"

	"remitguard/internal/decision"
	"remitguard/pkg/domain"
	"remitguard/pkg/platform/sentinel"
)

// InMemoryStore keeps decision records in a map. It backs tests and
// deployments without DATABASE_URL.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[domain.DecisionID]*decision.Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[domain.DecisionID]*decision.Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record *decision.Record) error {
	if record == nil {
		return fmt.Errorf("decision record is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[record.ID]; exists {
		return fmt.Errorf("decision %s: %w", record.ID, sentinel.ErrConflict)
	}
	s.records[record.ID] = copyRecord(record)
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.DecisionID) (*decision.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyRecord(record), nil
}

func copyRecord(r *decision.Record) *decision.Record {
	cp := *r
	cp.Reasons = append([]string{}, r.Reasons...)
	return &cp
}
