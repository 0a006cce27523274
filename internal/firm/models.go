// Package firm holds the attorney and client records the privilege core
// protects. Identity management itself lives upstream; this package only
// keeps what conflict screening and relationship checks need.
package firm

import (
	"strings"
	"time"

	id "chamber/pkg/domain"
)

// ClientType distinguishes how a client entity is screened for conflicts.
type ClientType string

const (
	ClientIndividual ClientType = "individual"
	ClientCorporate  ClientType = "corporate"
	ClientGovernment ClientType = "government"
)

// Attorney is a licensed practitioner registered with the firm. An attorney
// record is immutable once active; deactivation is the only permitted change.
type Attorney struct {
	ID            id.AttorneyID
	Name          string
	BarNumber     string
	Email         string
	PracticeAreas []string
	Jurisdiction  string
	Active        bool
	CreatedAt     time.Time
}

// Client is a current or prospective client of the firm. ConflictChecked is
// set the first time the client passes through conflict screening.
type Client struct {
	ID              id.ClientID
	Name            string
	Type            ClientType
	CompanyName     string
	ConflictChecked bool
	CreatedAt       time.Time
}

// legal suffixes stripped during company name normalization
var companySuffixes = []string{
	"incorporated", "corporation", "inc", "corp", "llc", "llp", "ltd", "co",
}

// NormalizedCompanyName returns the company name in comparison form:
// lowercased, punctuation removed, trailing legal suffixes stripped.
// Screening treats two clients with equal normalized names as the same
// business entity.
func (c *Client) NormalizedCompanyName() string {
	return NormalizeCompanyName(c.CompanyName)
}

// NormalizeCompanyName applies the normalization used for business conflict
// matching. Empty input stays empty.
func NormalizeCompanyName(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	if lowered == "" {
		return ""
	}

	var b strings.Builder
	for _, r := range lowered {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == ' ':
			b.WriteRune(r)
		}
	}

	tokens := strings.Fields(b.String())
	for len(tokens) > 1 && isCompanySuffix(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	return strings.Join(tokens, " ")
}

func isCompanySuffix(token string) bool {
	for _, suffix := range companySuffixes {
		if token == suffix {
			return true
		}
	}
	return false
}
