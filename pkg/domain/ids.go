// Package domain defines typed identifiers shared across the privilege core.
//
// IDs are distinct types over uuid.UUID so the compiler rejects cross-type
// assignment (an AttorneyID can never be passed where a ClientID is expected).
// Construct them via the Parse* functions at trust boundaries; direct casting
// bypasses validation.
package domain

import (
	"github.com/google/uuid"

	dErrors "chamber/pkg/domain-errors"
)

type (
	// AttorneyID identifies an attorney admitted to the firm.
	AttorneyID uuid.UUID
	// ClientID identifies a client of the firm.
	ClientID uuid.UUID
	// SessionID identifies a privileged session.
	SessionID uuid.UUID
	// RelationshipID identifies an attorney-client relationship.
	RelationshipID uuid.UUID
	// CommunicationID identifies a privileged communication.
	CommunicationID uuid.UUID
	// WaiverID identifies a privilege waiver record.
	WaiverID uuid.UUID
	// AuditID identifies an audit log entry.
	AuditID uuid.UUID
)

func (id AttorneyID) String() string      { return uuid.UUID(id).String() }
func (id ClientID) String() string        { return uuid.UUID(id).String() }
func (id SessionID) String() string       { return uuid.UUID(id).String() }
func (id RelationshipID) String() string  { return uuid.UUID(id).String() }
func (id CommunicationID) String() string { return uuid.UUID(id).String() }
func (id WaiverID) String() string        { return uuid.UUID(id).String() }
func (id AuditID) String() string         { return uuid.UUID(id).String() }

func (id AttorneyID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }
func (id ClientID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id RelationshipID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id CommunicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id WaiverID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id AuditID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }

// NewAttorneyID returns a fresh random AttorneyID.
func NewAttorneyID() AttorneyID { return AttorneyID(uuid.New()) }

// NewClientID returns a fresh random ClientID.
func NewClientID() ClientID { return ClientID(uuid.New()) }

// NewSessionID returns a fresh random SessionID.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewRelationshipID returns a fresh random RelationshipID.
func NewRelationshipID() RelationshipID { return RelationshipID(uuid.New()) }

// NewCommunicationID returns a fresh random CommunicationID.
func NewCommunicationID() CommunicationID { return CommunicationID(uuid.New()) }

// NewWaiverID returns a fresh random WaiverID.
func NewWaiverID() WaiverID { return WaiverID(uuid.New()) }

// NewAuditID returns a fresh random AuditID.
func NewAuditID() AuditID { return AuditID(uuid.New()) }

// parseUUID enforces the shared parsing invariant: IDs must be valid,
// non-empty, non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s is required", kind)
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "invalid %s", kind)
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.Newf(dErrors.CodeInvalidInput, "%s must not be nil", kind)
	}
	return parsed, nil
}

// ParseAttorneyID constructs an AttorneyID from external input.
func ParseAttorneyID(raw string) (AttorneyID, error) {
	parsed, err := parseUUID(raw, "attorney id")
	return AttorneyID(parsed), err
}

// ParseClientID constructs a ClientID from external input.
func ParseClientID(raw string) (ClientID, error) {
	parsed, err := parseUUID(raw, "client id")
	return ClientID(parsed), err
}

// ParseSessionID constructs a SessionID from external input.
func ParseSessionID(raw string) (SessionID, error) {
	parsed, err := parseUUID(raw, "session id")
	return SessionID(parsed), err
}

// ParseRelationshipID constructs a RelationshipID from external input.
func ParseRelationshipID(raw string) (RelationshipID, error) {
	parsed, err := parseUUID(raw, "relationship id")
	return RelationshipID(parsed), err
}

// ParseCommunicationID constructs a CommunicationID from external input.
func ParseCommunicationID(raw string) (CommunicationID, error) {
	parsed, err := parseUUID(raw, "communication id")
	return CommunicationID(parsed), err
}
