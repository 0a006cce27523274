// Package httptransport assembles the HTTP surface: attorney-facing
// privilege routes behind JWT auth, the collaborator contract behind a
// service key, and the operational endpoints.
package httptransport

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	accesshandler "chamber/internal/access/handler"
	audithandler "chamber/internal/audit/handler"
	firmhandler "chamber/internal/firm/handler"
	"chamber/internal/platform/metrics"
	"chamber/internal/platform/middleware"
	platformredis "chamber/internal/platform/redis"
	"chamber/internal/privilege"
	relationshiphandler "chamber/internal/relationship/handler"
	sessionhandler "chamber/internal/session/handler"
	"chamber/internal/transport/http/shared"
	dErrors "chamber/pkg/domain-errors"
)

const requestTimeout = 30 * time.Second

// Deps carries everything the router wires together. DB and Redis are
// optional; health reports only on what is configured.
type Deps struct {
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Cipher         *privilege.Cipher
	JWTValidator   middleware.JWTValidator
	ServiceKeyHash string
	Auditor        middleware.DenialAuditor

	Sessions      *sessionhandler.Handler
	Relationships *relationshiphandler.Handler
	Access        *accesshandler.Handler
	Audit         *audithandler.Handler
	Firm          *firmhandler.Handler

	DB    *sql.DB
	Redis *platformredis.Client
}

// NewRouter wires all endpoints.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.ContentTypeJSON)
	r.Use(middleware.LatencyMiddleware(deps.Metrics))

	r.Get("/healthz", healthHandler(deps))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/privilege", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(deps.JWTValidator, deps.Auditor, deps.Logger))
			deps.Sessions.Register(r)
			deps.Relationships.Register(r)
			deps.Access.Register(r)
			deps.Audit.Register(r)
			deps.Firm.Register(r)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireServiceKey(deps.ServiceKeyHash, deps.Auditor, deps.Logger))
			deps.Relationships.RegisterCollaborator(r)
		})
	})

	return r
}

// healthHandler proves the process can still do its one non-negotiable job:
// round-trip the privilege cipher. Store pings cover the configured backends.
func healthHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		sealed, err := deps.Cipher.Encrypt("healthcheck")
		if err == nil {
			var opened string
			opened, err = deps.Cipher.Decrypt(sealed)
			if err == nil && opened != "healthcheck" {
				err = dErrors.New(dErrors.CodeEncryptionFailure, "cipher round trip mismatch")
			}
		}
		if err != nil {
			deps.Logger.ErrorContext(ctx, "health: cipher round trip failed", "error", err)
			shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "cipher failure"})
			return
		}

		if deps.DB != nil {
			if err := deps.DB.PingContext(ctx); err != nil {
				deps.Logger.ErrorContext(ctx, "health: database ping failed", "error", err)
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unavailable"})
				return
			}
		}
		if deps.Redis != nil {
			if err := deps.Redis.Health(ctx); err != nil {
				deps.Logger.ErrorContext(ctx, "health: redis ping failed", "error", err)
				shared.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "session store unavailable"})
				return
			}
		}

		shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
