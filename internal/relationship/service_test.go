package relationship_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chamber/internal/audit"
	auditmemory "chamber/internal/audit/store/memory"
	"chamber/internal/conflict"
	"chamber/internal/platform/logger"
	"chamber/internal/relationship"
	"chamber/internal/relationship/mocks"
	relmemory "chamber/internal/relationship/store/memory"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/requestcontext"
)

// stubScreener returns a canned screening result.
type stubScreener struct {
	result *conflict.Result
	err    error
}

func (s stubScreener) Check(_ context.Context, attorneyID id.AttorneyID, clientID id.ClientID, _ string) (*conflict.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := *s.result
	result.AttorneyID = attorneyID
	result.ClientID = clientID
	return &result, nil
}

func clearResult() *conflict.Result {
	return &conflict.Result{CheckID: "check-1", CanRepresent: true}
}

func waiverResult() *conflict.Result {
	return &conflict.Result{
		CheckID:        "check-2",
		CanRepresent:   true,
		RequiresWaiver: true,
		Conflicts: []conflict.Conflict{
			{Type: conflict.TypeBusiness, Waivable: true},
		},
	}
}

func blockedResult() *conflict.Result {
	return &conflict.Result{
		CheckID: "check-3",
		Conflicts: []conflict.Conflict{
			{Type: conflict.TypeDirect, Blocking: true},
		},
	}
}

func completeWaiver() *relationship.Waiver {
	return &relationship.Waiver{
		ClientSignature:  "C. Client",
		WaiverDate:       "2025-03-14",
		WaiverScope:      "business entity overlap with Acme Corp",
		AttorneyApproval: "A. Attorney",
	}
}

type fixture struct {
	service    *relationship.Service
	store      *relmemory.Store
	auditStore *auditmemory.InMemoryStore
}

func newFixture(t *testing.T, screener relationship.Screener) *fixture {
	t.Helper()
	store := relmemory.NewStore()
	auditStore := auditmemory.NewInMemoryStore()
	svc := relationship.NewService(
		store,
		relationship.NewShardedTx(),
		screener,
		audit.NewPublisher(auditStore, logger.NewNop()),
		logger.NewNop(),
	)
	return &fixture{service: svc, store: store, auditStore: auditStore}
}

func (f *fixture) auditActions(t *testing.T, attorneyID id.AttorneyID) []audit.ActionType {
	t.Helper()
	events, err := f.auditStore.List(context.Background(), audit.Filter{AttorneyID: attorneyID})
	require.NoError(t, err)
	actions := make([]audit.ActionType, len(events))
	for i, e := range events {
		actions[i] = e.Action
	}
	return actions
}

func TestService_Create(t *testing.T) {
	t.Run("clean screening creates privileged relationship", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()

		rel, result, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID,
			ClientID:   clientID,
			Matter:     "contract review",
		})
		require.NoError(t, err)
		assert.True(t, result.CanRepresent)
		assert.Equal(t, relationship.StatusActive, rel.Status)
		assert.Equal(t, relationship.PrivilegeFull, rel.PrivilegeStatus)
		assert.True(t, rel.IsPrivileged())

		assert.Equal(t, []audit.ActionType{
			audit.ActionRelationshipCreated,
		}, f.auditActions(t, attorneyID))
	})

	t.Run("blocking conflict refuses creation", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: blockedResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()

		_, result, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID,
			ClientID:   clientID,
			Matter:     "adverse litigation",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflictDetected))
		assert.False(t, result.CanRepresent)

		_, findErr := f.store.FindByPair(context.Background(), attorneyID, clientID)
		assert.Error(t, findErr, "nothing should be persisted")
	})

	t.Run("waivable conflict without waiver is refused", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: waiverResult()})

		_, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: id.NewAttorneyID(),
			ClientID:   id.NewClientID(),
			Matter:     "overlapping entity work",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflictDetected))
	})

	t.Run("incomplete waiver is rejected", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: waiverResult()})
		waiver := completeWaiver()
		waiver.ClientSignature = ""

		_, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: id.NewAttorneyID(),
			ClientID:   id.NewClientID(),
			Matter:     "overlapping entity work",
			Waiver:     waiver,
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
		assert.Contains(t, err.Error(), "client_signature")
	})

	t.Run("complete waiver allows creation and is audited", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: waiverResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()

		rel, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID,
			ClientID:   clientID,
			Matter:     "overlapping entity work",
			Waiver:     completeWaiver(),
		})
		require.NoError(t, err)

		waiver, err := f.store.FindWaiverByRelationship(context.Background(), rel.ID)
		require.NoError(t, err)
		assert.Equal(t, rel.ID, waiver.RelationshipID)
		assert.False(t, waiver.ProcessedAt.IsZero())

		assert.Equal(t, []audit.ActionType{
			audit.ActionWaiverProcessed,
			audit.ActionRelationshipCreated,
		}, f.auditActions(t, attorneyID))
	})

	t.Run("duplicate pair is refused", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()
		params := relationship.CreateParams{AttorneyID: attorneyID, ClientID: clientID, Matter: "first"}

		_, _, err := f.service.Create(context.Background(), params)
		require.NoError(t, err)

		_, _, err = f.service.Create(context.Background(), params)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestService_Verify(t *testing.T) {
	t.Run("active privileged relationship verifies", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()
		_, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID, ClientID: clientID, Matter: "contract review",
		})
		require.NoError(t, err)

		rel, err := f.service.Verify(context.Background(), attorneyID, clientID)
		require.NoError(t, err)
		assert.True(t, rel.IsPrivileged())
	})

	t.Run("unknown pair is a violation", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID := id.NewAttorneyID()

		_, err := f.service.Verify(context.Background(), attorneyID, id.NewClientID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermission))

		events, err := f.auditStore.List(context.Background(), audit.Filter{
			AttorneyID: attorneyID,
			Status:     audit.StatusViolation,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.ActionRelationshipVerified, events[0].Action)
	})

	t.Run("terminated relationship no longer verifies", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()
		_, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID, ClientID: clientID, Matter: "contract review",
		})
		require.NoError(t, err)

		_, err = f.service.Terminate(context.Background(), attorneyID, clientID)
		require.NoError(t, err)

		_, err = f.service.Verify(context.Background(), attorneyID, clientID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermission))
	})
}

func TestService_Terminate(t *testing.T) {
	f := newFixture(t, stubScreener{result: clearResult()})
	attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()
	_, _, err := f.service.Create(context.Background(), relationship.CreateParams{
		AttorneyID: attorneyID, ClientID: clientID, Matter: "contract review",
	})
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	ctx := requestcontext.WithTime(context.Background(), now)

	rel, err := f.service.Terminate(ctx, attorneyID, clientID)
	require.NoError(t, err)
	assert.Equal(t, relationship.StatusTerminated, rel.Status)
	require.NotNil(t, rel.TerminatedAt)
	assert.Equal(t, now, *rel.TerminatedAt)

	_, err = f.service.Terminate(ctx, attorneyID, clientID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
}

func TestService_ProcessWaiver(t *testing.T) {
	t.Run("attaches waiver to existing relationship", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})
		attorneyID, clientID := id.NewAttorneyID(), id.NewClientID()
		rel, _, err := f.service.Create(context.Background(), relationship.CreateParams{
			AttorneyID: attorneyID, ClientID: clientID, Matter: "contract review",
		})
		require.NoError(t, err)

		saved, err := f.service.ProcessWaiver(context.Background(), rel.ID, *completeWaiver())
		require.NoError(t, err)
		assert.Equal(t, rel.ID, saved.RelationshipID)
		assert.False(t, saved.ID.IsNil())
	})

	t.Run("unknown relationship fails", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})

		_, err := f.service.ProcessWaiver(context.Background(), id.NewRelationshipID(), *completeWaiver())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("incomplete waiver fails before any lookup", func(t *testing.T) {
		f := newFixture(t, stubScreener{result: clearResult()})

		_, err := f.service.ProcessWaiver(context.Background(), id.NewRelationshipID(), relationship.Waiver{})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestService_WaiverNotSavedWhenRelationshipSaveFails pins the write ordering
// inside the creation transaction.
func TestService_WaiverNotSavedWhenRelationshipSaveFails(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	auditStore := auditmemory.NewInMemoryStore()
	svc := relationship.NewService(
		store,
		relationship.NewShardedTx(),
		stubScreener{result: waiverResult()},
		audit.NewPublisher(auditStore, logger.NewNop()),
		logger.NewNop(),
	)

	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(assert.AnError)
	// No SaveWaiver expectation: saving the waiver before the relationship
	// exists would orphan it.

	_, _, err := svc.Create(context.Background(), relationship.CreateParams{
		AttorneyID: id.NewAttorneyID(),
		ClientID:   id.NewClientID(),
		Matter:     "overlapping entity work",
		Waiver:     completeWaiver(),
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	events, listErr := auditStore.List(context.Background(), audit.Filter{})
	require.NoError(t, listErr)
	assert.Empty(t, events, "nothing should be audited for a failed save")
}
