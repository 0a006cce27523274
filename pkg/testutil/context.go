package testutil

import (
	"context"
	"net/http"

	id "chamber/pkg/domain"
	"chamber/pkg/requestcontext"
)

// WithAttorneyID adds an attorney ID to the request context.
// This simulates what the auth middleware would do for authenticated requests.
// If the attorneyID is not a valid UUID, it will not be added to the context.
func WithAttorneyID(req *http.Request, attorneyID string) *http.Request {
	if parsed, err := id.ParseAttorneyID(attorneyID); err == nil {
		ctx := requestcontext.WithAttorneyID(req.Context(), parsed)
		return req.WithContext(ctx)
	}
	return req
}

// WithSessionID adds a privilege session ID to the request context.
// If the sessionID is not a valid UUID, it will not be added to the context.
func WithSessionID(req *http.Request, sessionID string) *http.Request {
	if parsed, err := id.ParseSessionID(sessionID); err == nil {
		ctx := requestcontext.WithSessionID(req.Context(), parsed)
		return req.WithContext(ctx)
	}
	return req
}

// WithAuth adds both attorney ID and session ID to the request context.
// This is the typical state for an authenticated request.
// Invalid IDs are silently ignored.
func WithAuth(req *http.Request, attorneyID, sessionID string) *http.Request {
	ctx := req.Context()
	if attorneyID != "" {
		if parsed, err := id.ParseAttorneyID(attorneyID); err == nil {
			ctx = requestcontext.WithAttorneyID(ctx, parsed)
		}
	}
	if sessionID != "" {
		if parsed, err := id.ParseSessionID(sessionID); err == nil {
			ctx = requestcontext.WithSessionID(ctx, parsed)
		}
	}
	return req.WithContext(ctx)
}

// WithContextValue adds an arbitrary key-value pair to the request context.
func WithContextValue(req *http.Request, key, value any) *http.Request {
	ctx := context.WithValue(req.Context(), key, value)
	return req.WithContext(ctx)
}
