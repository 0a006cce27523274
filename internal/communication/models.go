// Package communication holds privileged attorney-client communications.
// Content is stored encrypted and is only ever decrypted through the access
// gate; this package never sees plaintext.
package communication

import (
	"fmt"
	"time"

	id "chamber/pkg/domain"
)

// Type classifies a privileged communication.
type Type string

const (
	TypeLegalAdvice    Type = "legal_advice"
	TypeEmail          Type = "email"
	TypePhone          Type = "phone"
	TypeMeeting        Type = "meeting"
	TypeDocumentReview Type = "document_review"
)

// Access log actions.
const (
	AccessActionCreated  = "created"
	AccessActionAccessed = "accessed"
)

// AccessRecord is one entry in a communication's embedded access log.
type AccessRecord struct {
	At     time.Time     `json:"at"`
	Actor  id.AttorneyID `json:"actor"`
	Action string        `json:"action"`
}

// Communication is a privileged communication at rest. Ciphertext is the
// sealed content; the embedded access log records every creation and read.
type Communication struct {
	ID              id.CommunicationID `json:"id"`
	AttorneyID      id.AttorneyID      `json:"attorney_id"`
	ClientID        id.ClientID        `json:"client_id"`
	Type            Type               `json:"type"`
	Ciphertext      string             `json:"-"`
	Participants    []string           `json:"participants,omitempty"`
	WorkProduct     bool               `json:"work_product"`
	RetentionPolicy string             `json:"retention_policy"`
	AccessLog       []AccessRecord     `json:"access_log"`
	CreatedAt       time.Time          `json:"created_at"`
}

// RetentionPolicy names the retention rule for communications kept for the
// life of the relationship plus the given number of years.
func RetentionPolicy(years int) string {
	return fmt.Sprintf("client_relationship_plus_%d_years", years)
}
