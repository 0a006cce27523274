// Package redis provides the distributed session store. Sessions expire
// natively through Redis TTLs, so multiple instances share one view of which
// sessions are alive.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"

	"chamber/internal/session"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

var lookupDurationMs = promauto.NewHistogram(prometheus.HistogramOpts{
	Name:    "chamber_session_lookup_duration_ms",
	Help:    "Latency of session lookups in milliseconds",
	Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
})

// Redis key prefix for privilege sessions
const sessionKeyPrefix = "privilege:session:"

// Store is the Redis-backed session store. This is the production
// implementation for deployments where multiple instances share session
// state.
type Store struct {
	client *redis.Client
}

func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func sessionKey(sessionID id.SessionID) string {
	return sessionKeyPrefix + sessionID.String()
}

// Save writes the session with a TTL matching its deadline. Redis expires
// the key on its own; DeleteExpired is a no-op for this store.
func (s *Store) Save(ctx context.Context, sess *session.Session) error {
	payload, err := json.Marshal(storedSession{
		ID:             sess.ID.String(),
		AttorneyID:     sess.AttorneyID.String(),
		ClientID:       clientIDString(sess.ClientID),
		TokenHash:      sess.TokenHash,
		PrivilegeLevel: string(sess.PrivilegeLevel),
		Status:         string(sess.Status),
		CreatedAt:      sess.CreatedAt,
		ExpiresAt:      sess.ExpiresAt,
		LastVerifiedAt: sess.LastVerifiedAt,
		AccessCount:    sess.AccessCount,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return sentinel.ErrExpired
	}
	return s.client.Set(ctx, sessionKey(sess.ID), payload, ttl).Err()
}

func (s *Store) FindByID(ctx context.Context, sessionID id.SessionID) (*session.Session, error) {
	start := time.Now()
	defer func() {
		lookupDurationMs.Observe(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return unmarshalSession(raw)
}

func (s *Store) Delete(ctx context.Context, sessionID id.SessionID) error {
	removed, err := s.client.Del(ctx, sessionKey(sessionID)).Result()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if removed == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// Touch rewrites the session with its verification time while keeping the
// original TTL (SET KEEPTTL), so the deadline never slides.
func (s *Store) Touch(ctx context.Context, sessionID id.SessionID, at time.Time) error {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return fmt.Errorf("unmarshal session: %w", err)
	}
	stored.LastVerifiedAt = at
	stored.AccessCount++

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(sessionID), payload, redis.KeepTTL).Err()
}

// DeleteExpired is a no-op: Redis TTLs remove expired sessions natively.
func (s *Store) DeleteExpired(context.Context, time.Time) (int, error) {
	return 0, nil
}

// storedSession is the JSON layout persisted in Redis.
type storedSession struct {
	ID             string    `json:"id"`
	AttorneyID     string    `json:"attorney_id"`
	ClientID       string    `json:"client_id,omitempty"`
	TokenHash      string    `json:"token_hash"`
	PrivilegeLevel string    `json:"privilege_level"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
	ExpiresAt      time.Time `json:"expires_at"`
	LastVerifiedAt time.Time `json:"last_verified_at,omitempty"`
	AccessCount    int       `json:"access_count"`
}

func unmarshalSession(raw []byte) (*session.Session, error) {
	var stored storedSession
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}

	sessionID, err := id.ParseSessionID(stored.ID)
	if err != nil {
		return nil, err
	}
	attorneyID, err := id.ParseAttorneyID(stored.AttorneyID)
	if err != nil {
		return nil, err
	}

	sess := &session.Session{
		ID:             sessionID,
		AttorneyID:     attorneyID,
		TokenHash:      stored.TokenHash,
		PrivilegeLevel: session.PrivilegeLevel(stored.PrivilegeLevel),
		Status:         session.Status(stored.Status),
		CreatedAt:      stored.CreatedAt,
		ExpiresAt:      stored.ExpiresAt,
		LastVerifiedAt: stored.LastVerifiedAt,
		AccessCount:    stored.AccessCount,
	}
	if stored.ClientID != "" {
		clientID, err := id.ParseClientID(stored.ClientID)
		if err != nil {
			return nil, err
		}
		sess.ClientID = clientID
	}
	return sess, nil
}

func clientIDString(clientID id.ClientID) string {
	if clientID.IsNil() {
		return ""
	}
	return clientID.String()
}
