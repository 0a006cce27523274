// Package access is the single choke point for privileged content. Every
// decryption of an attorney-client communication goes through the gate: a
// session check, a relationship check, an access-log entry and an audit
// record, in that order. No other package decrypts.
package access

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"chamber/internal/audit"
	"chamber/internal/communication"
	"chamber/internal/platform/metrics"
	"chamber/internal/privilege"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/platform/sentinel"
	"chamber/pkg/requestcontext"
)

var tracer = otel.Tracer("chamber/internal/access")

// Credentials identifies one privileged access attempt: the session being
// presented and the attorney/client pair it claims to act for.
type Credentials struct {
	SessionID  id.SessionID
	Token      string
	AttorneyID id.AttorneyID
	ClientID   id.ClientID
}

// ProtectParams describes a communication to seal and store.
type ProtectParams struct {
	Credentials
	Type         communication.Type
	Content      string
	Participants []string
	WorkProduct  bool
}

// Gate mediates all access to privileged communications.
type Gate struct {
	sessions       SessionVerifier
	relationships  RelationshipVerifier
	cipher         *privilege.Cipher
	store          communication.Store
	publisher      *audit.Publisher
	metrics        *metrics.Metrics
	logger         *slog.Logger
	retentionYears int
}

func NewGate(
	sessions SessionVerifier,
	relationships RelationshipVerifier,
	cipher *privilege.Cipher,
	store communication.Store,
	publisher *audit.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	retentionYears int,
) *Gate {
	return &Gate{
		sessions:       sessions,
		relationships:  relationships,
		cipher:         cipher,
		store:          store,
		publisher:      publisher,
		metrics:        m,
		logger:         logger,
		retentionYears: retentionYears,
	}
}

// Protect seals content and stores it as a privileged communication. The
// caller must hold a valid session and an active privileged relationship
// with the client.
func (g *Gate) Protect(ctx context.Context, params ProtectParams) (*communication.Communication, error) {
	if err := g.authorize(ctx, params.Credentials); err != nil {
		return nil, err
	}

	ciphertext, err := g.cipher.Encrypt(params.Content)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	comm := &communication.Communication{
		ID:              id.NewCommunicationID(),
		AttorneyID:      params.AttorneyID,
		ClientID:        params.ClientID,
		Type:            params.Type,
		Ciphertext:      ciphertext,
		Participants:    params.Participants,
		WorkProduct:     params.WorkProduct,
		RetentionPolicy: communication.RetentionPolicy(g.retentionYears),
		AccessLog: []communication.AccessRecord{
			{At: now, Actor: params.AttorneyID, Action: communication.AccessActionCreated},
		},
		CreatedAt: now,
	}

	if err := g.store.Save(ctx, comm); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "save communication")
	}

	if err := g.publisher.Emit(ctx, audit.Event{
		AttorneyID: params.AttorneyID,
		ClientID:   params.ClientID,
		SessionID:  params.SessionID,
		Action:     audit.ActionCommunicationStored,
		Status:     audit.StatusCompliant,
		Details: map[string]string{
			"communication_id": comm.ID.String(),
			"type":             string(comm.Type),
		},
	}); err != nil {
		return nil, err
	}

	return comm, nil
}

// AuthorizeAndDecrypt releases the plaintext of one communication. A failed
// session check returns a generic denial; the precise reason lives only in
// the audit trail. A missing or inactive relationship is a permission error,
// distinct from session failures. Plaintext is released only after the
// access record and audit event are durably written.
func (g *Gate) AuthorizeAndDecrypt(ctx context.Context, creds Credentials, communicationID id.CommunicationID) (string, error) {
	if err := g.authorize(ctx, creds); err != nil {
		return "", err
	}

	comm, err := g.store.FindByID(ctx, communicationID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "communication not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "find communication")
	}

	if comm.AttorneyID != creds.AttorneyID || comm.ClientID != creds.ClientID {
		return "", g.deny(ctx, creds, "communication belongs to another relationship")
	}

	ctx, span := tracer.Start(ctx, "access.decrypt")
	span.SetAttributes(attribute.String("communication.id", communicationID.String()))
	plaintext, err := g.cipher.Decrypt(comm.Ciphertext)
	if err != nil {
		span.RecordError(err)
		span.End()
		if g.metrics != nil {
			g.metrics.DecryptFailures.Inc()
		}
		if auditErr := g.publisher.Violation(ctx, audit.Event{
			AttorneyID: creds.AttorneyID,
			ClientID:   creds.ClientID,
			SessionID:  creds.SessionID,
			Action:     audit.ActionAccessDenied,
			Details: map[string]string{
				"communication_id": communicationID.String(),
				"reason":           "ciphertext integrity failure",
			},
		}); auditErr != nil {
			return "", auditErr
		}
		return "", err
	}
	span.End()

	record := communication.AccessRecord{
		At:     requestcontext.Now(ctx),
		Actor:  creds.AttorneyID,
		Action: communication.AccessActionAccessed,
	}
	if err := g.store.AppendAccess(ctx, communicationID, record); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "record communication access")
	}

	if err := g.publisher.Emit(ctx, audit.Event{
		AttorneyID: creds.AttorneyID,
		ClientID:   creds.ClientID,
		SessionID:  creds.SessionID,
		Action:     audit.ActionCommunicationRead,
		Status:     audit.StatusCompliant,
		Details:    map[string]string{"communication_id": communicationID.String()},
	}); err != nil {
		return "", err
	}

	return plaintext, nil
}

// RecordEvent implements the collaborator Recorder contract. Unknown actions
// land in the access-control category, so agent-originated events are never
// silently unclassified.
func (g *Gate) RecordEvent(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID, action string, details map[string]string) error {
	return g.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		Action:     audit.ActionType(action),
		Status:     audit.StatusCompliant,
		Details:    details,
	})
}

// VerifyRelationship implements the collaborator contract for agents that
// only need a yes/no before returning client-scoped results.
func (g *Gate) VerifyRelationship(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (bool, error) {
	_, err := g.relationships.Verify(ctx, attorneyID, clientID)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodePermission) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// authorize runs the session and relationship checks shared by Protect and
// AuthorizeAndDecrypt. The session check already audits its own denials with
// the precise reason; only the generic refusal leaves this package.
func (g *Gate) authorize(ctx context.Context, creds Credentials) error {
	result, err := g.sessions.Verify(ctx, creds.SessionID, creds.Token, creds.AttorneyID, creds.ClientID)
	if err != nil {
		return err
	}
	if !result.Valid {
		return dErrors.New(dErrors.CodeUnauthorized, "access denied")
	}

	if _, err := g.relationships.Verify(ctx, creds.AttorneyID, creds.ClientID); err != nil {
		return err
	}
	return nil
}

func (g *Gate) deny(ctx context.Context, creds Credentials, reason string) error {
	if err := g.publisher.Violation(ctx, audit.Event{
		AttorneyID: creds.AttorneyID,
		ClientID:   creds.ClientID,
		SessionID:  creds.SessionID,
		Action:     audit.ActionAccessDenied,
		Details:    map[string]string{"reason": reason},
	}); err != nil {
		return err
	}
	return dErrors.New(dErrors.CodePermission, "access denied")
}
