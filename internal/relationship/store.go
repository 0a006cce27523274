package relationship

//go:generate mockgen -source=store.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	id "chamber/pkg/domain"
)

// Store persists relationships and waivers. The (attorney, client) pair is
// unique; Save returns sentinel.ErrConflict on a duplicate.
type Store interface {
	Save(ctx context.Context, rel *Relationship) error
	Update(ctx context.Context, rel *Relationship) error
	FindByID(ctx context.Context, relID id.RelationshipID) (*Relationship, error)
	FindByPair(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*Relationship, error)
	ListActiveByAttorney(ctx context.Context, attorneyID id.AttorneyID) ([]*Relationship, error)

	SaveWaiver(ctx context.Context, waiver *Waiver) error
	FindWaiverByRelationship(ctx context.Context, relID id.RelationshipID) (*Waiver, error)
}
