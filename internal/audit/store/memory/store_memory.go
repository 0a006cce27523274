// Package memory provides the in-memory audit store used in tests and dev mode.
package memory

import (
	"context"
	"sync"

	"chamber/internal/audit"
	id "chamber/pkg/domain"
)

// InMemoryStore keeps the full log in append order plus a per-attorney index
// for violation lookups. Appends are serialized so the hash chain is assigned
// consistently under concurrency.
type InMemoryStore struct {
	mu         sync.RWMutex
	events     []*audit.Event
	byAttorney map[id.AttorneyID][]*audit.Event
	seq        uint64
	lastHash   string
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byAttorney: make(map[id.AttorneyID][]*audit.Event)}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
	s.byAttorney = make(map[id.AttorneyID][]*audit.Event)
	s.seq = 0
	s.lastHash = ""
}

func (s *InMemoryStore) Append(_ context.Context, event *audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.seq++
	event.Seq = s.seq
	if event.ID.IsNil() {
		event.ID = id.NewAuditID()
	}
	event.PrevHash = s.lastHash
	event.EntryHash = audit.ChainHash(s.lastHash, event)
	s.lastHash = event.EntryHash

	stored := *event
	s.events = append(s.events, &stored)
	s.byAttorney[event.AttorneyID] = append(s.byAttorney[event.AttorneyID], &stored)
	return nil
}

func (s *InMemoryStore) List(_ context.Context, filter audit.Filter) ([]*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	source := s.events
	if !filter.AttorneyID.IsNil() {
		source = s.byAttorney[filter.AttorneyID]
	}

	var matched []*audit.Event
	for _, e := range source {
		if filter.Matches(e) {
			copied := *e
			matched = append(matched, &copied)
		}
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[len(matched)-filter.Limit:]
	}
	return matched, nil
}

func (s *InMemoryStore) Last(_ context.Context) (*audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) == 0 {
		return nil, nil
	}
	copied := *s.events[len(s.events)-1]
	return &copied, nil
}
