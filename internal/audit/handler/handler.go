// Package handler exposes the compliance reporting endpoints.
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"chamber/internal/audit"
	"chamber/internal/transport/http/shared"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// defaultWindowDays bounds summary and report queries when the caller gives
// no explicit window.
const defaultWindowDays = 30

// Service defines the reporting operations the handler delegates to.
type Service interface {
	Summary(ctx context.Context, filter audit.Filter) (*audit.Summary, error)
	ViolationsFor(ctx context.Context, attorneyID id.AttorneyID) ([]*audit.Event, error)
	Report(ctx context.Context, filter audit.Filter) (*audit.Report, error)
}

type Handler struct {
	reports Service
	logger  *slog.Logger
}

func New(reports Service, logger *slog.Logger) *Handler {
	return &Handler{reports: reports, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/audit/summary", h.handleSummary)
	r.Get("/audit/violations", h.handleViolations)
	r.Get("/audit/report", h.handleReport)
}

func (h *Handler) handleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := h.filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	summary, err := h.reports.Summary(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build compliance summary",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, summary)
}

func (h *Handler) handleViolations(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	violations, err := h.reports.ViolationsFor(ctx, requestcontext.AttorneyID(ctx))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if violations == nil {
		violations = []*audit.Event{}
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"violations": violations,
		"count":      len(violations),
	})
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	filter, err := h.filterFromQuery(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	report, err := h.reports.Report(ctx, filter)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	shared.WriteJSON(w, http.StatusOK, report)
}

// filterFromQuery scopes queries to the authenticated attorney and a
// bounded window (window_days, default 30).
func (h *Handler) filterFromQuery(r *http.Request) (audit.Filter, error) {
	ctx := r.Context()

	days := defaultWindowDays
	if raw := r.URL.Query().Get("window_days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			return audit.Filter{}, dErrors.New(dErrors.CodeInvalidInput, "window_days must be a positive integer")
		}
		days = parsed
	}

	return audit.Filter{
		AttorneyID: requestcontext.AttorneyID(ctx),
		Since:      requestcontext.Now(ctx).Add(-time.Duration(days) * 24 * time.Hour),
	}, nil
}
