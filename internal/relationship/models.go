// Package relationship manages formal attorney-client engagements and the
// privilege status attached to them.
package relationship

import (
	"time"

	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
)

// Status is the lifecycle state of a relationship.
type Status string

const (
	StatusActive     Status = "active"
	StatusTerminated Status = "terminated"
	StatusSuspended  Status = "suspended"
)

// PrivilegeStatus records the level of privilege protection the relationship
// confers on communications.
type PrivilegeStatus string

const (
	PrivilegeFull    PrivilegeStatus = "privileged"
	PrivilegeLimited PrivilegeStatus = "limited_privilege"
	PrivilegeNone    PrivilegeStatus = "none"
)

// Relationship is one formal engagement between an attorney and a client.
// At most one relationship exists per (attorney, client) pair.
type Relationship struct {
	ID              id.RelationshipID `json:"id"`
	AttorneyID      id.AttorneyID     `json:"attorney_id"`
	ClientID        id.ClientID       `json:"client_id"`
	Status          Status            `json:"status"`
	PrivilegeStatus PrivilegeStatus   `json:"privilege_status"`
	Matter          string            `json:"matter"`
	EngagedAt       time.Time         `json:"engaged_at"`
	TerminatedAt    *time.Time        `json:"terminated_at,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

// IsPrivileged reports whether communications under this relationship are
// protected. Only active relationships with full or limited privilege
// qualify.
func (r *Relationship) IsPrivileged() bool {
	if r.Status != StatusActive {
		return false
	}
	return r.PrivilegeStatus == PrivilegeFull || r.PrivilegeStatus == PrivilegeLimited
}

// Waiver documents informed client consent to a waivable conflict. All four
// fields are required before a conflicted relationship can be created.
type Waiver struct {
	ID               id.WaiverID       `json:"id"`
	RelationshipID   id.RelationshipID `json:"relationship_id"`
	ClientSignature  string            `json:"client_signature"`
	WaiverDate       string            `json:"waiver_date"`
	WaiverScope      string            `json:"waiver_scope"`
	AttorneyApproval string            `json:"attorney_approval"`
	ProcessedAt      time.Time         `json:"processed_at"`
}

// Validate checks that every required waiver field is present. It returns
// one error naming all missing fields so clients can fix them in one pass.
func (w *Waiver) Validate() error {
	var missing []string
	if w.ClientSignature == "" {
		missing = append(missing, "client_signature")
	}
	if w.WaiverDate == "" {
		missing = append(missing, "waiver_date")
	}
	if w.WaiverScope == "" {
		missing = append(missing, "waiver_scope")
	}
	if w.AttorneyApproval == "" {
		missing = append(missing, "attorney_approval")
	}
	if len(missing) > 0 {
		return dErrors.Newf(dErrors.CodeInvalidInput, "waiver missing required fields: %v", missing)
	}
	return nil
}
