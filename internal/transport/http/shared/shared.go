// Package shared holds the response helpers every HTTP handler uses.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "chamber/pkg/domain-errors"
)

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into the JSON error envelope. Only
// the code leaves the process; messages stay in logs and the audit trail.
func WriteError(w http.ResponseWriter, err error) {
	WriteJSON(w, dErrors.ToHTTPStatus(err), map[string]string{
		"error": string(dErrors.CodeOf(err)),
	})
}
