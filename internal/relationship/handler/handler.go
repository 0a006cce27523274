// Package handler exposes the relationship endpoints: conflict-screened
// creation, waiver processing, termination and the collaborator
// verify-relationship contract.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chamber/internal/conflict"
	"chamber/internal/relationship"
	"chamber/internal/transport/http/shared"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// Service defines the relationship operations the handler delegates to.
type Service interface {
	Create(ctx context.Context, params relationship.CreateParams) (*relationship.Relationship, *conflict.Result, error)
	Verify(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*relationship.Relationship, error)
	Terminate(ctx context.Context, attorneyID id.AttorneyID, clientID id.ClientID) (*relationship.Relationship, error)
	ProcessWaiver(ctx context.Context, relID id.RelationshipID, waiver relationship.Waiver) (*relationship.Waiver, error)
}

type Handler struct {
	relationships Service
	logger        *slog.Logger
}

func New(relationships Service, logger *slog.Logger) *Handler {
	return &Handler{relationships: relationships, logger: logger}
}

// Register attaches the attorney-facing relationship routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/relationships", h.handleCreate)
	r.Post("/relationships/terminate", h.handleTerminate)
	r.Post("/relationships/waiver", h.handleWaiver)
}

// RegisterCollaborator attaches the service-to-service contract used by the
// research agents before they return client-scoped results.
func (h *Handler) RegisterCollaborator(r chi.Router) {
	r.Get("/verify-relationship", h.handleVerifyRelationship)
}

type waiverRequest struct {
	ClientSignature  string `json:"client_signature"`
	WaiverDate       string `json:"waiver_date"`
	WaiverScope      string `json:"waiver_scope"`
	AttorneyApproval string `json:"attorney_approval"`
}

func (wr *waiverRequest) toWaiver() relationship.Waiver {
	return relationship.Waiver{
		ClientSignature:  wr.ClientSignature,
		WaiverDate:       wr.WaiverDate,
		WaiverScope:      wr.WaiverScope,
		AttorneyApproval: wr.AttorneyApproval,
	}
}

type createRequest struct {
	ClientID string         `json:"client_id"`
	Matter   string         `json:"matter"`
	Waiver   *waiverRequest `json:"waiver,omitempty"`
}

type createResponse struct {
	Relationship  *relationship.Relationship `json:"relationship"`
	ConflictCheck *conflict.Result           `json:"conflict_check"`
}

type conflictResponse struct {
	Error         string           `json:"error"`
	ConflictCheck *conflict.Result `json:"conflict_check"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attorneyID := requestcontext.AttorneyID(ctx)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	clientID, err := id.ParseClientID(req.ClientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	params := relationship.CreateParams{
		AttorneyID: attorneyID,
		ClientID:   clientID,
		Matter:     req.Matter,
	}
	if req.Waiver != nil {
		waiver := req.Waiver.toWaiver()
		params.Waiver = &waiver
	}

	rel, result, err := h.relationships.Create(ctx, params)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflictDetected) {
			// The screen result goes back so a human can resolve or waive.
			shared.WriteJSON(w, http.StatusConflict, conflictResponse{
				Error:         string(dErrors.CodeConflictDetected),
				ConflictCheck: result,
			})
			return
		}
		h.logger.ErrorContext(ctx, "failed to create relationship",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusCreated, createResponse{
		Relationship:  rel,
		ConflictCheck: result,
	})
}

type terminateRequest struct {
	ClientID string `json:"client_id"`
}

func (h *Handler) handleTerminate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	attorneyID := requestcontext.AttorneyID(ctx)

	var req terminateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	clientID, err := id.ParseClientID(req.ClientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	rel, err := h.relationships.Terminate(ctx, attorneyID, clientID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, rel)
}

type processWaiverRequest struct {
	RelationshipID string `json:"relationship_id"`
	waiverRequest
}

func (h *Handler) handleWaiver(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req processWaiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	relID, err := id.ParseRelationshipID(req.RelationshipID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	waiver, err := h.relationships.ProcessWaiver(ctx, relID, req.toWaiver())
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, waiver)
}

type verifyRelationshipResponse struct {
	Privileged bool `json:"privileged"`
}

func (h *Handler) handleVerifyRelationship(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attorneyID, err := id.ParseAttorneyID(r.URL.Query().Get("attorney_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	clientID, err := id.ParseClientID(r.URL.Query().Get("client_id"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	if _, err := h.relationships.Verify(ctx, attorneyID, clientID); err != nil {
		if dErrors.HasCode(err, dErrors.CodePermission) {
			shared.WriteJSON(w, http.StatusOK, verifyRelationshipResponse{Privileged: false})
			return
		}
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, verifyRelationshipResponse{Privileged: true})
}
