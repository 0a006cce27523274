package firm

import (
	"context"

	id "chamber/pkg/domain"
)

// AttorneyStore persists attorney records. Save rejects writes over an
// active record with sentinel.ErrInvalidState; Deactivate is the only
// mutation allowed after activation.
type AttorneyStore interface {
	Save(ctx context.Context, attorney *Attorney) error
	FindByID(ctx context.Context, attorneyID id.AttorneyID) (*Attorney, error)
	Deactivate(ctx context.Context, attorneyID id.AttorneyID) error
}

// ClientStore persists client records.
type ClientStore interface {
	Save(ctx context.Context, client *Client) error
	FindByID(ctx context.Context, clientID id.ClientID) (*Client, error)
	FindByIDs(ctx context.Context, clientIDs []id.ClientID) ([]*Client, error)
	MarkConflictChecked(ctx context.Context, clientID id.ClientID) error
}
