package access

import (
	"context"

	"chamber/internal/relationship"
	"chamber/internal/session"
	id "chamber/pkg/domain"
)

// SessionVerifier checks a presented session credential. Implemented by
// session.Service.
type SessionVerifier interface {
	Verify(ctx context.Context, sessionID id.SessionID, token string, attorneyID id.AttorneyID, clientID id.ClientID) (*session.VerifyResult, error)
}

// RelationshipVerifier confirms an active privileged relationship between an
// attorney and a client. Implemented by relationship.Service.
type RelationshipVerifier interface {
	Verify(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*relationship.Relationship, error)
}

// Verifier is the contract the research, case and document agents call
// before returning results tied to a client. The gate implements it; no
// agent touches privileged state directly.
type Verifier interface {
	VerifyRelationship(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (bool, error)
}

// Recorder lets those same agents file audit events about client-scoped work
// without a handle on the audit publisher. The gate implements it.
type Recorder interface {
	RecordEvent(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID, action string, details map[string]string) error
}
