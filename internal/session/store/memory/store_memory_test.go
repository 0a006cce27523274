package memory_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamber/internal/session"
	"chamber/internal/session/store/memory"
	id "chamber/pkg/domain"
	"chamber/pkg/platform/sentinel"
)

func newSession(expiresAt time.Time) *session.Session {
	now := time.Now().UTC()
	return &session.Session{
		ID:             id.NewSessionID(),
		AttorneyID:     id.NewAttorneyID(),
		ClientID:       id.NewClientID(),
		TokenHash:      session.HashToken("token"),
		PrivilegeLevel: session.PrivilegeFull,
		Status:         session.StatusActive,
		CreatedAt:      now,
		ExpiresAt:      expiresAt,
	}
}

func TestStore_SaveAndFind(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sess := newSession(time.Now().Add(time.Hour))

	require.NoError(t, store.Save(ctx, sess))

	found, err := store.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess, found)

	// The store hands out copies; mutating one must not leak back.
	found.Status = session.StatusExpired
	again, err := store.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, session.StatusActive, again.Status)
}

func TestStore_FindUnknown(t *testing.T) {
	store := memory.NewStore()

	_, err := store.FindByID(context.Background(), id.NewSessionID())
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestStore_Delete(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sess := newSession(time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, sess))

	require.NoError(t, store.Delete(ctx, sess.ID))

	_, err := store.FindByID(ctx, sess.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)

	assert.ErrorIs(t, store.Delete(ctx, sess.ID), sentinel.ErrNotFound)
}

func TestStore_Touch(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	sess := newSession(time.Now().Add(time.Hour))
	require.NoError(t, store.Save(ctx, sess))

	at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	require.NoError(t, store.Touch(ctx, sess.ID, at))

	found, err := store.FindByID(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, at, found.LastVerifiedAt)
	assert.Equal(t, 1, found.AccessCount)
	assert.Equal(t, sess.ExpiresAt, found.ExpiresAt, "touch must not extend expiry")

	assert.ErrorIs(t, store.Touch(ctx, id.NewSessionID(), at), sentinel.ErrNotFound)
}

func TestStore_DeleteExpired(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()
	now := time.Now().UTC()

	live := newSession(now.Add(time.Hour))
	expired1 := newSession(now.Add(-time.Minute))
	expired2 := newSession(now.Add(-time.Hour))
	for _, sess := range []*session.Session{live, expired1, expired2} {
		require.NoError(t, store.Save(ctx, sess))
	}

	removed, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, err = store.FindByID(ctx, live.ID)
	assert.NoError(t, err)
	_, err = store.FindByID(ctx, expired1.ID)
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				sess := newSession(time.Now().Add(time.Hour))
				if err := store.Save(ctx, sess); err != nil {
					t.Errorf("worker %d: save: %v", n, err)
					return
				}
				if _, err := store.FindByID(ctx, sess.ID); err != nil {
					t.Errorf("worker %d: find: %v", n, err)
					return
				}
				if err := store.Touch(ctx, sess.ID, time.Now()); err != nil {
					t.Errorf("worker %d: touch: %v", n, err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	removed, err := store.DeleteExpired(ctx, time.Now().Add(2*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, workers*25, removed, "expected all %d sessions present", workers*25)
}
