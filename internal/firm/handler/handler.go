// Package handler exposes attorney and client onboarding endpoints. The
// privilege core is not an identity provider; these records exist so conflict
// screening and relationship checks have names to match against.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"chamber/internal/firm"
	"chamber/internal/transport/http/shared"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/platform/sentinel"
	"chamber/pkg/requestcontext"
)

type Handler struct {
	attorneys firm.AttorneyStore
	clients   firm.ClientStore
	logger    *slog.Logger
}

func New(attorneys firm.AttorneyStore, clients firm.ClientStore, logger *slog.Logger) *Handler {
	return &Handler{attorneys: attorneys, clients: clients, logger: logger}
}

// Register attaches the onboarding routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attorneys", h.handleCreateAttorney)
	r.Get("/attorneys/{attorneyID}", h.handleGetAttorney)
	r.Post("/attorneys/{attorneyID}/deactivate", h.handleDeactivateAttorney)
	r.Post("/clients", h.handleCreateClient)
}

type attorneyRequest struct {
	Name          string   `json:"name"`
	BarNumber     string   `json:"bar_number"`
	Email         string   `json:"email"`
	PracticeAreas []string `json:"practice_areas,omitempty"`
	Jurisdiction  string   `json:"jurisdiction,omitempty"`
}

type attorneyResponse struct {
	AttorneyID    string   `json:"attorney_id"`
	Name          string   `json:"name"`
	BarNumber     string   `json:"bar_number"`
	Email         string   `json:"email"`
	PracticeAreas []string `json:"practice_areas,omitempty"`
	Jurisdiction  string   `json:"jurisdiction,omitempty"`
	Active        bool     `json:"active"`
}

func newAttorneyResponse(attorney *firm.Attorney) attorneyResponse {
	return attorneyResponse{
		AttorneyID:    attorney.ID.String(),
		Name:          attorney.Name,
		BarNumber:     attorney.BarNumber,
		Email:         attorney.Email,
		PracticeAreas: attorney.PracticeAreas,
		Jurisdiction:  attorney.Jurisdiction,
		Active:        attorney.Active,
	}
}

func (h *Handler) handleCreateAttorney(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req attorneyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Name == "" || req.BarNumber == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "name and bar_number are required"))
		return
	}

	attorney := &firm.Attorney{
		ID:            id.NewAttorneyID(),
		Name:          req.Name,
		BarNumber:     req.BarNumber,
		Email:         req.Email,
		PracticeAreas: req.PracticeAreas,
		Jurisdiction:  req.Jurisdiction,
		Active:        true,
		CreatedAt:     requestcontext.Now(ctx),
	}
	if err := h.attorneys.Save(ctx, attorney); err != nil {
		h.logger.ErrorContext(ctx, "failed to save attorney", "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "save attorney"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, newAttorneyResponse(attorney))
}

func (h *Handler) handleDeactivateAttorney(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attorneyID, err := id.ParseAttorneyID(chi.URLParam(r, "attorneyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid attorney id"))
		return
	}

	if err := h.attorneys.Deactivate(ctx, attorneyID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "attorney not found"))
			return
		}
		h.logger.ErrorContext(ctx, "failed to deactivate attorney", "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "deactivate attorney"))
		return
	}

	attorney, err := h.attorneys.FindByID(ctx, attorneyID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "load attorney"))
		return
	}
	shared.WriteJSON(w, http.StatusOK, newAttorneyResponse(attorney))
}

func (h *Handler) handleGetAttorney(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	attorneyID, err := id.ParseAttorneyID(chi.URLParam(r, "attorneyID"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid attorney id"))
		return
	}

	attorney, err := h.attorneys.FindByID(ctx, attorneyID)
	if err != nil {
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeNotFound, "attorney not found"))
		return
	}

	shared.WriteJSON(w, http.StatusOK, newAttorneyResponse(attorney))
}

type clientRequest struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	CompanyName string `json:"company_name,omitempty"`
}

type clientResponse struct {
	ClientID        string `json:"client_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	CompanyName     string `json:"company_name,omitempty"`
	ConflictChecked bool   `json:"conflict_checked"`
}

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req clientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}
	if req.Name == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "name is required"))
		return
	}
	clientType := firm.ClientType(req.Type)
	switch clientType {
	case firm.ClientIndividual, firm.ClientCorporate, firm.ClientGovernment:
	case "":
		clientType = firm.ClientIndividual
	default:
		shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "unknown client type"))
		return
	}

	client := &firm.Client{
		ID:          id.NewClientID(),
		Name:        req.Name,
		Type:        clientType,
		CompanyName: req.CompanyName,
		CreatedAt:   requestcontext.Now(ctx),
	}
	if err := h.clients.Save(ctx, client); err != nil {
		h.logger.ErrorContext(ctx, "failed to save client", "error", err)
		shared.WriteError(w, dErrors.Wrap(err, dErrors.CodeInternal, "save client"))
		return
	}

	shared.WriteJSON(w, http.StatusCreated, clientResponse{
		ClientID:        client.ID.String(),
		Name:            client.Name,
		Type:            string(client.Type),
		CompanyName:     client.CompanyName,
		ConflictChecked: client.ConflictChecked,
	})
}
