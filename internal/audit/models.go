// Package audit records every privilege-sensitive action in an append-only,
// hash-chained log. Compliance events use fail-closed semantics: if the audit
// entry cannot be persisted, the business operation must not proceed.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"

	id "chamber/pkg/domain"
)

// RuleCategory classifies audit events by the professional-conduct concern
// they document. This enables per-category reporting and retention policies.
type RuleCategory string

const (
	// CategorySession covers privilege session lifecycle events.
	CategorySession RuleCategory = "session_security"

	// CategoryConflict covers conflict-of-interest screening runs.
	CategoryConflict RuleCategory = "conflict_screening"

	// CategoryRelationship covers attorney-client relationship changes.
	CategoryRelationship RuleCategory = "relationship_management"

	// CategoryCommunication covers storage and retrieval of privileged content.
	CategoryCommunication RuleCategory = "communication_handling"

	// CategoryAccess covers access-control decisions, including denials.
	CategoryAccess RuleCategory = "access_control"
)

// ComplianceStatus records the outcome of an audited action against
// professional-conduct rules.
type ComplianceStatus string

const (
	StatusCompliant      ComplianceStatus = "compliant"
	StatusWarning        ComplianceStatus = "warning"
	StatusViolation      ComplianceStatus = "violation"
	StatusReviewRequired ComplianceStatus = "review_required"
)

// ActionType names an audited action.
type ActionType string

const (
	ActionSessionCreated         ActionType = "secure_session_created"
	ActionAccessVerified         ActionType = "privileged_access_verified"
	ActionSessionInvalidated     ActionType = "session_invalidated"
	ActionConflictCheck          ActionType = "conflict_check_performed"
	ActionRelationshipCreated    ActionType = "attorney_client_relationship_created"
	ActionRelationshipVerified   ActionType = "relationship_verification"
	ActionRelationshipTerminated ActionType = "attorney_client_relationship_terminated"
	ActionCommunicationStored    ActionType = "privileged_communication_stored"
	ActionCommunicationRead      ActionType = "privileged_communication_accessed"
	ActionAccessDenied           ActionType = "privileged_access_denied"
	ActionWaiverProcessed        ActionType = "privilege_waiver_processed"
	ActionAuthenticationRejected ActionType = "authentication_rejected"
	ActionServiceKeyRejected     ActionType = "service_key_rejected"
)

// actionCategories maps each action to its rule category. The map is the
// source of truth: stores derive the category from the action on append.
var actionCategories = map[ActionType]RuleCategory{
	ActionSessionCreated:     CategorySession,
	ActionAccessVerified:     CategorySession,
	ActionSessionInvalidated: CategorySession,

	ActionConflictCheck: CategoryConflict,

	ActionRelationshipCreated:    CategoryRelationship,
	ActionRelationshipVerified:   CategoryRelationship,
	ActionRelationshipTerminated: CategoryRelationship,
	ActionWaiverProcessed:        CategoryRelationship,

	ActionCommunicationStored: CategoryCommunication,
	ActionCommunicationRead:   CategoryCommunication,

	ActionAccessDenied:           CategoryAccess,
	ActionAuthenticationRejected: CategoryAccess,
	ActionServiceKeyRejected:     CategoryAccess,
}

// Category returns the RuleCategory for this action.
// Unknown actions default to CategoryAccess so nothing escapes review.
func (a ActionType) Category() RuleCategory {
	if cat, ok := actionCategories[a]; ok {
		return cat
	}
	return CategoryAccess
}

// Event is one append-only audit log entry. Seq, PrevHash, and EntryHash are
// assigned by the store on append; callers leave them zero.
type Event struct {
	ID         id.AuditID        `json:"id"`
	Seq        uint64            `json:"seq"`
	AttorneyID id.AttorneyID     `json:"attorney_id"`
	ClientID   id.ClientID       `json:"client_id,omitempty"`
	SessionID  id.SessionID      `json:"session_id,omitempty"`
	Action     ActionType        `json:"action"`
	Category   RuleCategory      `json:"category"`
	Status     ComplianceStatus  `json:"status"`
	Details    map[string]string `json:"details,omitempty"`
	ClientIP   string            `json:"client_ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	RequestID  string            `json:"request_id,omitempty"`
	Timestamp  time.Time         `json:"timestamp"`
	PrevHash   string            `json:"prev_hash"`
	EntryHash  string            `json:"entry_hash"`
}

// chainedPayload is the canonical form hashed into the chain. It excludes
// EntryHash itself; map keys are sorted by encoding/json, so the encoding is
// deterministic.
type chainedPayload struct {
	Seq        uint64            `json:"seq"`
	AttorneyID string            `json:"attorney_id"`
	ClientID   string            `json:"client_id,omitempty"`
	SessionID  string            `json:"session_id,omitempty"`
	Action     ActionType        `json:"action"`
	Category   RuleCategory      `json:"category"`
	Status     ComplianceStatus  `json:"status"`
	Details    map[string]string `json:"details,omitempty"`
	Timestamp  string            `json:"timestamp"`
	PrevHash   string            `json:"prev_hash"`
}

// ChainHash computes the tamper-evidence hash for an event given the previous
// entry's hash. An empty prev marks the genesis entry.
func ChainHash(prev string, e *Event) string {
	payload := chainedPayload{
		Seq:        e.Seq,
		AttorneyID: e.AttorneyID.String(),
		Action:     e.Action,
		Category:   e.Category,
		Status:     e.Status,
		Details:    e.Details,
		Timestamp:  e.Timestamp.UTC().Format(time.RFC3339Nano),
		PrevHash:   prev,
	}
	if !e.ClientID.IsNil() {
		payload.ClientID = e.ClientID.String()
	}
	if !e.SessionID.IsNil() {
		payload.SessionID = e.SessionID.String()
	}

	// Marshal of this struct cannot fail: every field is a string-like type.
	encoded, _ := json.Marshal(payload)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

// Filter narrows audit log queries. Zero-value fields match everything.
type Filter struct {
	AttorneyID id.AttorneyID
	ClientID   id.ClientID
	Action     ActionType
	Category   RuleCategory
	Status     ComplianceStatus
	Since      time.Time
	Until      time.Time
	Limit      int
}

// Matches reports whether the event passes every set field of the filter.
func (f Filter) Matches(e *Event) bool {
	if !f.AttorneyID.IsNil() && e.AttorneyID != f.AttorneyID {
		return false
	}
	if !f.ClientID.IsNil() && e.ClientID != f.ClientID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Category != "" && e.Category != f.Category {
		return false
	}
	if f.Status != "" && e.Status != f.Status {
		return false
	}
	if !f.Since.IsZero() && e.Timestamp.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && e.Timestamp.After(f.Until) {
		return false
	}
	return true
}
