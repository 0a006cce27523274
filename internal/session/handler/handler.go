// Package handler exposes the privilege session endpoints.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"chamber/internal/session"
	"chamber/internal/transport/http/shared"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// genericDenial hides which credential failed. The audit trail keeps the
// precise reason; callers must not be able to enumerate session IDs.
const genericDenial = "Invalid session or token"

// Service defines the session operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*session.Session, string, error)
	Verify(ctx context.Context, sessionID id.SessionID, token string, attorneyID id.AttorneyID, clientID id.ClientID) (*session.VerifyResult, error)
	Invalidate(ctx context.Context, sessionID id.SessionID, attorneyID id.AttorneyID) error
}

type Handler struct {
	sessions Service
	logger   *slog.Logger
}

func New(sessions Service, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// Register attaches the session routes. The caller provides the middleware
// chain; every route here requires an authenticated attorney.
func (h *Handler) Register(r chi.Router) {
	r.Post("/session", h.handleCreate)
	r.Post("/session/verify", h.handleVerify)
	r.Delete("/session/{sessionID}", h.handleInvalidate)
}

type createRequest struct {
	ClientID string `json:"client_id,omitempty"`
}

type createResponse struct {
	SessionID      string `json:"session_id"`
	SessionToken   string `json:"session_token"`
	ExpiresAt      string `json:"expires_at"`
	PrivilegeLevel string `json:"privilege_level"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attorneyID := requestcontext.AttorneyID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	var clientID id.ClientID
	if req.ClientID != "" {
		parsed, err := id.ParseClientID(req.ClientID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		clientID = parsed
	}

	sess, token, err := h.sessions.Create(ctx, attorneyID, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to create session",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, createResponse{
		SessionID:      sess.ID.String(),
		SessionToken:   token,
		ExpiresAt:      sess.ExpiresAt.UTC().Format(time.RFC3339),
		PrivilegeLevel: string(sess.PrivilegeLevel),
	})
}

type verifyRequest struct {
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
	ClientID     string `json:"client_id,omitempty"`
}

type verifyResponse struct {
	Authorized          bool   `json:"authorized"`
	Reason              string `json:"reason,omitempty"`
	PrivilegeLevel      string `json:"privilege_level,omitempty"`
	RemainingTTLSeconds int64  `json:"remaining_ttl_seconds,omitempty"`
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attorneyID := requestcontext.AttorneyID(ctx)

	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	sessionID, err := id.ParseSessionID(req.SessionID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var clientID id.ClientID
	if req.ClientID != "" {
		parsed, err := id.ParseClientID(req.ClientID)
		if err != nil {
			shared.WriteError(w, err)
			return
		}
		clientID = parsed
	}

	result, err := h.sessions.Verify(ctx, sessionID, req.SessionToken, attorneyID, clientID)
	if err != nil {
		h.logger.ErrorContext(ctx, "session verification failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	if !result.Valid {
		shared.WriteJSON(w, http.StatusOK, verifyResponse{
			Authorized: false,
			Reason:     outwardReason(result.Reason),
		})
		return
	}

	remaining := int64(result.Session.ExpiresAt.Sub(requestcontext.Now(ctx)).Seconds())
	shared.WriteJSON(w, http.StatusOK, verifyResponse{
		Authorized:          true,
		PrivilegeLevel:      string(result.PrivilegeLevel),
		RemainingTTLSeconds: remaining,
	})
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attorneyID := requestcontext.AttorneyID(ctx)

	sessionID, err := id.ParseSessionID(chi.URLParam(r, "sessionID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.sessions.Invalidate(ctx, sessionID, attorneyID); err != nil {
		shared.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func outwardReason(reason string) string {
	switch reason {
	case session.ReasonInvalidSession, session.ReasonInvalidToken:
		return genericDenial
	default:
		return reason
	}
}
