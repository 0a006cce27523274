// Package session manages privilege sessions: short-lived, token-bound
// grants that gate access to privileged material.
package session

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"time"

	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
)

// Status is the lifecycle state of a privilege session.
type Status string

const (
	StatusActive      Status = "active"
	StatusExpired     Status = "expired"
	StatusInvalidated Status = "invalidated"
)

// PrivilegeLevel is the scope a session grants.
type PrivilegeLevel string

const (
	// PrivilegeFull covers attorney-client communications. Granted only
	// when the session is bound to a specific client.
	PrivilegeFull PrivilegeLevel = "full_privilege"

	// PrivilegeAttorneyOnly covers the attorney's own work product.
	PrivilegeAttorneyOnly PrivilegeLevel = "attorney_only"
)

// Denial reasons returned by Verify. The HTTP layer collapses the first two
// into a generic denial; the precise reason is kept for the audit trail.
const (
	ReasonInvalidSession   = "Invalid session"
	ReasonInvalidToken     = "Invalid session token"
	ReasonExpired          = "Session expired"
	ReasonAttorneyMismatch = "Attorney mismatch"
	ReasonClientMismatch   = "Client relationship mismatch"
)

// DenialCode classifies a denial reason for the audit trail and compliance
// reporting. Reviewers filter violations by code, not by display text.
func DenialCode(reason string) dErrors.Code {
	switch reason {
	case ReasonInvalidSession:
		return dErrors.CodeInvalidSession
	case ReasonInvalidToken:
		return dErrors.CodeTokenMismatch
	case ReasonExpired:
		return dErrors.CodeExpiredSession
	case ReasonAttorneyMismatch, ReasonClientMismatch:
		return dErrors.CodeIdentityMismatch
	}
	return dErrors.CodeUnauthorized
}

// Session is one privilege session. The raw token is returned to the caller
// exactly once at creation; only its hash is stored.
//
// ExpiresAt is fixed at creation. Verification does not slide the deadline:
// a long-running research session re-authenticates rather than staying open
// indefinitely on activity.
type Session struct {
	ID             id.SessionID   `json:"id"`
	AttorneyID     id.AttorneyID  `json:"attorney_id"`
	ClientID       id.ClientID    `json:"client_id,omitempty"`
	TokenHash      string         `json:"-"`
	PrivilegeLevel PrivilegeLevel `json:"privilege_level"`
	Status         Status         `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`
	ExpiresAt      time.Time      `json:"expires_at"`
	LastVerifiedAt time.Time      `json:"last_verified_at,omitempty"`
	AccessCount    int            `json:"access_count"`
}

// ExpiredAt reports whether the session deadline has passed at the given time.
func (s *Session) ExpiredAt(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// HashToken derives the stored form of a session token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// MatchesToken compares a presented token against the stored hash in
// constant time.
func (s *Session) MatchesToken(token string) bool {
	presented := HashToken(token)
	return subtle.ConstantTimeCompare([]byte(presented), []byte(s.TokenHash)) == 1
}

// VerifyResult is the outcome of one verification attempt. Reason is empty
// when Valid is true.
type VerifyResult struct {
	Valid          bool           `json:"valid"`
	Reason         string         `json:"reason,omitempty"`
	PrivilegeLevel PrivilegeLevel `json:"privilege_level,omitempty"`
	Session        *Session       `json:"-"`
}
