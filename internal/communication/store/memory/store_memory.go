// Package memory provides the in-memory communication store.
package memory

import (
	"context"
	"sort"
	"sync"

	"chamber/internal/communication"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

type Store struct {
	mu             sync.RWMutex
	communications map[id.CommunicationID]*communication.Communication
}

func NewStore() *Store {
	return &Store{communications: make(map[id.CommunicationID]*communication.Communication)}
}

func (s *Store) Save(_ context.Context, comm *communication.Communication) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.communications[comm.ID] = copyCommunication(comm)
	return nil
}

func (s *Store) FindByID(_ context.Context, communicationID id.CommunicationID) (*communication.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	comm, ok := s.communications[communicationID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return copyCommunication(comm), nil
}

func (s *Store) ListByPair(_ context.Context, attorneyID id.AttorneyID, clientID id.ClientID) ([]*communication.Communication, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*communication.Communication
	for _, comm := range s.communications {
		if comm.AttorneyID == attorneyID && comm.ClientID == clientID {
			out = append(out, copyCommunication(comm))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AppendAccess(_ context.Context, communicationID id.CommunicationID, record communication.AccessRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	comm, ok := s.communications[communicationID]
	if !ok {
		return sentinel.ErrNotFound
	}
	comm.AccessLog = append(comm.AccessLog, record)
	return nil
}

func copyCommunication(comm *communication.Communication) *communication.Communication {
	copied := *comm
	copied.Participants = append([]string(nil), comm.Participants...)
	copied.AccessLog = append([]communication.AccessRecord(nil), comm.AccessLog...)
	return &copied
}
