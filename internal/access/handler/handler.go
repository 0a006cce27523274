// Package handler exposes the privileged communication endpoints. Both
// routes carry full session credentials in the body: the JWT identifies the
// attorney, the session token proves an active privilege session.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chamber/internal/access"
	"chamber/internal/communication"
	"chamber/internal/transport/http/shared"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// Gate defines the access-gate operations the handler delegates to.
type Gate interface {
	Protect(ctx context.Context, params access.ProtectParams) (*communication.Communication, error)
	AuthorizeAndDecrypt(ctx context.Context, creds access.Credentials, communicationID id.CommunicationID) (string, error)
}

type Handler struct {
	gate   Gate
	logger *slog.Logger
}

func New(gate Gate, logger *slog.Logger) *Handler {
	return &Handler{gate: gate, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/communications", h.handleProtect)
	r.Post("/communications/{communicationID}/access", h.handleAccess)
}

type credentialsRequest struct {
	SessionID    string `json:"session_id"`
	SessionToken string `json:"session_token"`
	ClientID     string `json:"client_id"`
}

func (cr *credentialsRequest) toCredentials(ctx context.Context) (access.Credentials, error) {
	sessionID, err := id.ParseSessionID(cr.SessionID)
	if err != nil {
		return access.Credentials{}, err
	}
	clientID, err := id.ParseClientID(cr.ClientID)
	if err != nil {
		return access.Credentials{}, err
	}
	return access.Credentials{
		SessionID:  sessionID,
		Token:      cr.SessionToken,
		AttorneyID: requestcontext.AttorneyID(ctx),
		ClientID:   clientID,
	}, nil
}

type protectRequest struct {
	credentialsRequest
	Type         string   `json:"type"`
	Content      string   `json:"content"`
	Participants []string `json:"participants,omitempty"`
	WorkProduct  bool     `json:"work_product,omitempty"`
}

func (h *Handler) handleProtect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req protectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Content == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "content is required"))
		return
	}

	creds, err := req.toCredentials(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	comm, err := h.gate.Protect(ctx, access.ProtectParams{
		Credentials:  creds,
		Type:         communication.Type(req.Type),
		Content:      req.Content,
		Participants: req.Participants,
		WorkProduct:  req.WorkProduct,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "communication protect refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, comm)
}

type accessResponse struct {
	CommunicationID string `json:"communication_id"`
	Content         string `json:"content"`
}

func (h *Handler) handleAccess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	communicationID, err := id.ParseCommunicationID(chi.URLParam(r, "communicationID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	creds, err := req.toCredentials(ctx)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	plaintext, err := h.gate.AuthorizeAndDecrypt(ctx, creds, communicationID)
	if err != nil {
		h.logger.WarnContext(ctx, "privileged access refused",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, accessResponse{
		CommunicationID: communicationID.String(),
		Content:         plaintext,
	})
}
