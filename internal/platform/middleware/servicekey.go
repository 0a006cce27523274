package middleware

import (
	"log/slog"
	"net/http"

	"chamber/internal/audit"
	"chamber/internal/platform/secrets"
)

// RequireServiceKey guards service-to-service endpoints with a shared key.
// Callers present the key in the X-Service-Key header; only its bcrypt hash
// is held in configuration.
func RequireServiceKey(keyHash string, auditor DenialAuditor, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get("X-Service-Key")
			if key == "" || keyHash == "" {
				logger.WarnContext(r.Context(), "service request without key",
					"request_id", GetRequestID(r.Context()),
				)
				auditDenial(r.Context(), auditor, audit.ActionServiceKeyRejected, r, "missing service key")
				writeUnauthorized(w, "Missing service key")
				return
			}

			if err := secrets.Verify(key, keyHash); err != nil {
				logger.WarnContext(r.Context(), "service request with invalid key",
					"request_id", GetRequestID(r.Context()),
				)
				auditDenial(r.Context(), auditor, audit.ActionServiceKeyRejected, r, "invalid service key")
				writeUnauthorized(w, "Invalid service key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
