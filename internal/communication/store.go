package communication

import (
	"context"

	id "chamber/pkg/domain"
)

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

// Store persists privileged communications. Implementations return
// sentinel.ErrNotFound for unknown communications.
type Store interface {
	Save(ctx context.Context, comm *Communication) error
	FindByID(ctx context.Context, communicationID id.CommunicationID) (*Communication, error)
	ListByPair(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) ([]*Communication, error)

	// AppendAccess adds one record to a communication's embedded access
	// log without rewriting the rest of the row.
	AppendAccess(ctx context.Context, communicationID id.CommunicationID, record AccessRecord) error
}
