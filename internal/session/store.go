package session

import (
	"context"
	"time"

	id "chamber/pkg/domain"
)

// Store persists privilege sessions. Implementations return
// sentinel.ErrNotFound for unknown sessions.
type Store interface {
	Save(ctx context.Context, session *Session) error
	FindByID(ctx context.Context, sessionID id.SessionID) (*Session, error)
	Delete(ctx context.Context, sessionID id.SessionID) error

	// Touch records a successful verification without moving the expiry.
	Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error

	// DeleteExpired removes sessions whose deadline passed before now and
	// returns how many were removed. Backends with native TTL may no-op.
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}
