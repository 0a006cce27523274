package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"chamber/internal/audit"
	"chamber/internal/platform/metrics"
	"chamber/internal/platform/secrets"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/platform/sentinel"
	"chamber/pkg/requestcontext"
)

// Service manages the privilege session lifecycle. Creation and verification
// are fail-closed on auditing: an action that cannot be recorded is refused.
type Service struct {
	store     Store
	publisher *audit.Publisher
	metrics   *metrics.Metrics
	logger    *slog.Logger
	ttl       time.Duration
}

func NewService(store Store, publisher *audit.Publisher, m *metrics.Metrics, logger *slog.Logger, ttl time.Duration) *Service {
	return &Service{
		store:     store,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		ttl:       ttl,
	}
}

// Create opens a privilege session for an attorney, optionally bound to a
// client. A client-bound session carries full privilege; an unbound one is
// limited to the attorney's own work product.
//
// The raw token is returned once and never stored.
func (s *Service) Create(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*Session, string, error) {
	if attorneyID.IsNil() {
		return nil, "", dErrors.New(dErrors.CodeInvalidInput, "attorney ID is required")
	}

	token, err := secrets.Generate()
	if err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "generate session token")
	}

	level := PrivilegeAttorneyOnly
	if !clientID.IsNil() {
		level = PrivilegeFull
	}

	now := requestcontext.Now(ctx)
	session := &Session{
		ID:             id.NewSessionID(),
		AttorneyID:     attorneyID,
		ClientID:       clientID,
		TokenHash:      HashToken(token),
		PrivilegeLevel: level,
		Status:         StatusActive,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.ttl),
	}

	if err := s.store.Save(ctx, session); err != nil {
		return nil, "", dErrors.Wrap(err, dErrors.CodeInternal, "save session")
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		SessionID:  session.ID,
		Action:     audit.ActionSessionCreated,
		Status:     audit.StatusCompliant,
		Details: map[string]string{
			"privilege_level": string(level),
			"expires_at":      session.ExpiresAt.UTC().Format(time.RFC3339),
		},
	}); err != nil {
		// Fail closed: an unauditable session must not exist. Deletion is
		// best effort; an expired leftover is swept later.
		if delErr := s.store.Delete(ctx, session.ID); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back unaudited session",
				"session_id", session.ID,
				"error", delErr,
			)
		}
		return nil, "", err
	}

	if s.metrics != nil {
		s.metrics.SessionsCreated.Inc()
	}
	return session, token, nil
}

// Verify checks a presented session against the expected attorney and
// client. Checks run in a fixed order and stop at the first failure:
// existence, token, expiry, attorney binding, client binding.
//
// Every attempt is audited. Grants record privileged_access_verified;
// denials record privileged_access_denied with the precise reason.
func (s *Service) Verify(ctx context.Context, sessionID id.SessionID, token string, attorneyID id.AttorneyID, clientID id.ClientID) (*VerifyResult, error) {
	start := time.Now()
	result, err := s.verify(ctx, sessionID, token, attorneyID, clientID)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		outcome := "granted"
		if !result.Valid {
			outcome = "denied"
		}
		s.metrics.ObserveVerify(outcome, time.Since(start).Seconds())
	}
	return result, nil
}

func (s *Service) verify(ctx context.Context, sessionID id.SessionID, token string, attorneyID id.AttorneyID, clientID id.ClientID) (*VerifyResult, error) {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return s.deny(ctx, sessionID, attorneyID, clientID, ReasonInvalidSession)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "find session")
	}

	if !session.MatchesToken(token) {
		return s.deny(ctx, sessionID, attorneyID, clientID, ReasonInvalidToken)
	}

	now := requestcontext.Now(ctx)
	if session.Status != StatusActive || session.ExpiredAt(now) {
		// Opportunistic cleanup: an expired session is gone after the first
		// denial, so a retry reads as an unknown session.
		if err := s.store.Delete(ctx, session.ID); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.WarnContext(ctx, "failed to remove expired session",
				"session_id", session.ID,
				"error", err,
			)
		}
		return s.deny(ctx, sessionID, attorneyID, clientID, ReasonExpired)
	}

	if session.AttorneyID != attorneyID {
		return s.deny(ctx, sessionID, attorneyID, clientID, ReasonAttorneyMismatch)
	}

	// A client-bound check against an attorney-only session fails; a
	// client-bound session used without a client scope also fails.
	if session.ClientID != clientID {
		return s.deny(ctx, sessionID, attorneyID, clientID, ReasonClientMismatch)
	}

	if err := s.store.Touch(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to record session verification time",
			"session_id", session.ID,
			"error", err,
		)
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		SessionID:  session.ID,
		Action:     audit.ActionAccessVerified,
		Status:     audit.StatusCompliant,
		Details:    map[string]string{"privilege_level": string(session.PrivilegeLevel)},
	}); err != nil {
		return nil, err
	}

	return &VerifyResult{
		Valid:          true,
		PrivilegeLevel: session.PrivilegeLevel,
		Session:        session,
	}, nil
}

func (s *Service) deny(ctx context.Context, sessionID id.SessionID, attorneyID id.AttorneyID, clientID id.ClientID, reason string) (*VerifyResult, error) {
	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		SessionID:  sessionID,
		Action:     audit.ActionAccessDenied,
		Status:     audit.StatusViolation,
		Details: map[string]string{
			"reason": reason,
			"code":   string(DenialCode(reason)),
		},
	}); err != nil {
		return nil, err
	}
	return &VerifyResult{Valid: false, Reason: reason}, nil
}

// Invalidate ends a session ahead of its deadline. Only the owning attorney
// may invalidate it.
func (s *Service) Invalidate(ctx context.Context, sessionID id.SessionID, attorneyID id.AttorneyID) error {
	session, err := s.store.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeNotFound, "session not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "find session")
	}

	if session.AttorneyID != attorneyID {
		return dErrors.New(dErrors.CodePermission, "session belongs to another attorney")
	}

	if err := s.store.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "delete session")
	}

	if err := s.publisher.Emit(ctx, audit.Event{
		AttorneyID: attorneyID,
		ClientID:   session.ClientID,
		SessionID:  sessionID,
		Action:     audit.ActionSessionInvalidated,
		Status:     audit.StatusCompliant,
	}); err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.SessionsInvalidated.Inc()
	}
	return nil
}

// RunSweeper deletes expired sessions on the given interval until the
// context is cancelled. Backends with native TTL expiry make this a cheap
// no-op pass.
func (s *Service) RunSweeper(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			removed, err := s.store.DeleteExpired(ctx, time.Now().UTC())
			if err != nil {
				s.logger.ErrorContext(ctx, "session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				s.logger.InfoContext(ctx, "swept expired sessions", "removed", removed)
			}
		}
	}
}
