// Package memory provides in-memory firm stores for tests and dev mode.
package memory

import (
	"context"
	"sync"

	"chamber/internal/firm"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

type AttorneyStore struct {
	mu        sync.RWMutex
	attorneys map[id.AttorneyID]*firm.Attorney
}

func NewAttorneyStore() *AttorneyStore {
	return &AttorneyStore{attorneys: make(map[id.AttorneyID]*firm.Attorney)}
}

func (s *AttorneyStore) Save(_ context.Context, attorney *firm.Attorney) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.attorneys[attorney.ID]; ok && existing.Active {
		return sentinel.ErrInvalidState
	}
	copied := *attorney
	s.attorneys[attorney.ID] = &copied
	return nil
}

func (s *AttorneyStore) Deactivate(_ context.Context, attorneyID id.AttorneyID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	attorney, ok := s.attorneys[attorneyID]
	if !ok {
		return sentinel.ErrNotFound
	}
	attorney.Active = false
	return nil
}

func (s *AttorneyStore) FindByID(_ context.Context, attorneyID id.AttorneyID) (*firm.Attorney, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	attorney, ok := s.attorneys[attorneyID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *attorney
	return &copied, nil
}

type ClientStore struct {
	mu      sync.RWMutex
	clients map[id.ClientID]*firm.Client
}

func NewClientStore() *ClientStore {
	return &ClientStore{clients: make(map[id.ClientID]*firm.Client)}
}

func (s *ClientStore) Save(_ context.Context, client *firm.Client) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *client
	s.clients[client.ID] = &copied
	return nil
}

func (s *ClientStore) FindByID(_ context.Context, clientID id.ClientID) (*firm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	client, ok := s.clients[clientID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	copied := *client
	return &copied, nil
}

func (s *ClientStore) MarkConflictChecked(_ context.Context, clientID id.ClientID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	client, ok := s.clients[clientID]
	if !ok {
		return sentinel.ErrNotFound
	}
	client.ConflictChecked = true
	return nil
}

// FindByIDs returns the clients that exist; unknown IDs are skipped rather
// than failing the whole lookup.
func (s *ClientStore) FindByIDs(_ context.Context, clientIDs []id.ClientID) ([]*firm.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]*firm.Client, 0, len(clientIDs))
	for _, clientID := range clientIDs {
		if client, ok := s.clients[clientID]; ok {
			copied := *client
			clients = append(clients, &copied)
		}
	}
	return clients, nil
}
