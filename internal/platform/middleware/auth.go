package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"chamber/internal/audit"
	id "chamber/pkg/domain"
	"chamber/pkg/requestcontext"
)

// JWTValidator defines the interface for validating JWT tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator.
type JWTClaims struct {
	AttorneyID string
}

// DenialAuditor records edge-of-system denials without blocking the
// response. Satisfied by audit.Publisher via EmitAsync; a nil auditor
// disables the recording.
type DenialAuditor interface {
	EmitAsync(ctx context.Context, event audit.Event)
}

func auditDenial(ctx context.Context, auditor DenialAuditor, action audit.ActionType, r *http.Request, reason string) {
	if auditor == nil {
		return
	}
	auditor.EmitAsync(ctx, audit.Event{
		Action: action,
		Status: audit.StatusViolation,
		Details: map[string]string{
			"reason": reason,
			"path":   r.URL.Path,
		},
	})
}

// RequireAuth validates the Authorization bearer token and injects the
// authenticated attorney ID into the request context. Rejections are
// recorded asynchronously; there is no attorney identity to block on.
func RequireAuth(validator JWTValidator, auditor DenialAuditor, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				auditDenial(ctx, auditor, audit.ActionAuthenticationRejected, r, "missing bearer token")
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				auditDenial(ctx, auditor, audit.ActionAuthenticationRejected, r, "invalid token")
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			attorneyID, err := id.ParseAttorneyID(claims.AttorneyID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed subject",
					"error", err,
					"request_id", requestID,
				)
				auditDenial(ctx, auditor, audit.ActionAuthenticationRejected, r, "malformed subject")
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithAttorneyID(ctx, attorneyID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}
