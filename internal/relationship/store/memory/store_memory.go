// Package memory provides the in-memory relationship store.
package memory

import (
	"context"
	"sync"

	"chamber/internal/relationship"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

type pairKey struct {
	attorneyID id.AttorneyID
	clientID   id.ClientID
}

type Store struct {
	mu      sync.RWMutex
	byID    map[id.RelationshipID]*relationship.Relationship
	byPair  map[pairKey]id.RelationshipID
	waivers map[id.RelationshipID]*relationship.Waiver
}

func NewStore() *Store {
	return &Store{
		byID:    make(map[id.RelationshipID]*relationship.Relationship),
		byPair:  make(map[pairKey]id.RelationshipID),
		waivers: make(map[id.RelationshipID]*relationship.Waiver),
	}
}

func (s *Store) Save(_ context.Context, rel *relationship.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{attorneyID: rel.AttorneyID, clientID: rel.ClientID}
	if _, exists := s.byPair[key]; exists {
		return sentinel.ErrConflict
	}

	copied := *rel
	s.byID[rel.ID] = &copied
	s.byPair[key] = rel.ID
	return nil
}

func (s *Store) Update(_ context.Context, rel *relationship.Relationship) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[rel.ID]; !exists {
		return sentinel.ErrNotFound
	}
	copied := *rel
	s.byID[rel.ID] = &copied
	return nil
}

func (s *Store) FindByID(_ context.Context, relID id.RelationshipID) (*relationship.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rel, ok := s.byID[relID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *rel
	return &copied, nil
}

func (s *Store) FindByPair(_ context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*relationship.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	relID, ok := s.byPair[pairKey{attorneyID: attorneyID, clientID: clientID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *s.byID[relID]
	return &copied, nil
}

func (s *Store) ListActiveByAttorney(_ context.Context, attorneyID id.AttorneyID) ([]*relationship.Relationship, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var active []*relationship.Relationship
	for _, rel := range s.byID {
		if rel.AttorneyID == attorneyID && rel.Status == relationship.StatusActive {
			copied := *rel
			active = append(active, &copied)
		}
	}
	return active, nil
}

func (s *Store) SaveWaiver(_ context.Context, waiver *relationship.Waiver) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *waiver
	s.waivers[waiver.RelationshipID] = &copied
	return nil
}

func (s *Store) FindWaiverByRelationship(_ context.Context, relID id.RelationshipID) (*relationship.Waiver, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	waiver, ok := s.waivers[relID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *waiver
	return &copied, nil
}
