// Package conflict screens prospective engagements against the firm's
// existing representations before a relationship can be formed.
package conflict

import (
	"time"

	id "chamber/pkg/domain"
)

// Type classifies a detected conflict of interest.
type Type string

const (
	// TypeDirect marks representation directly adverse to an existing
	// client. Direct conflicts cannot be waived.
	TypeDirect Type = "direct"

	// TypeBusiness marks a business-entity overlap with an existing
	// client. Waivable with informed consent from both clients.
	TypeBusiness Type = "business"

	// TypeExistingClient notes that the attorney already represents this
	// client. Informational only; never blocks and needs no waiver.
	TypeExistingClient Type = "existing_client"
)

// Conflict is one detected issue between a prospective engagement and an
// existing representation.
type Conflict struct {
	Type         Type        `json:"type"`
	WithClientID id.ClientID `json:"with_client_id"`
	Description  string      `json:"description"`
	Blocking     bool        `json:"blocking"`
	Waivable     bool        `json:"waivable"`
}

// Result is the outcome of one screening run.
//
// CanRepresent is false only when a blocking conflict exists. RequiresWaiver
// is true when waivable conflicts were found and none of them block.
type Result struct {
	CheckID        string      `json:"check_id"`
	AttorneyID     id.AttorneyID `json:"attorney_id"`
	ClientID       id.ClientID `json:"client_id"`
	CanRepresent   bool        `json:"can_represent"`
	RequiresWaiver bool        `json:"requires_waiver"`
	Conflicts      []Conflict  `json:"conflicts"`
	CheckedAt      time.Time   `json:"checked_at"`
}

// ActiveEngagement is one current representation considered during
// screening. Supplied by the relationship layer through EngagementSource.
type ActiveEngagement struct {
	ClientID    id.ClientID
	ClientName  string
	CompanyName string
	Matter      string
}
