package access_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"chamber/internal/access"
	"chamber/internal/audit"
	auditmemory "chamber/internal/audit/store/memory"
	"chamber/internal/communication"
	"chamber/internal/communication/mocks"
	commmemory "chamber/internal/communication/store/memory"
	"chamber/internal/platform/logger"
	"chamber/internal/privilege"
	"chamber/internal/relationship"
	"chamber/internal/session"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
)

type stubSessions struct {
	result *session.VerifyResult
	err    error
}

func (s stubSessions) Verify(context.Context, id.SessionID, string, id.AttorneyID, id.ClientID) (*session.VerifyResult, error) {
	return s.result, s.err
}

type stubRelationships struct {
	rel *relationship.Relationship
	err error
}

func (s stubRelationships) Verify(context.Context, id.AttorneyID, id.ClientID) (*relationship.Relationship, error) {
	return s.rel, s.err
}

func grantedSessions() stubSessions {
	return stubSessions{result: &session.VerifyResult{Valid: true, PrivilegeLevel: session.PrivilegeFull}}
}

func deniedSessions() stubSessions {
	return stubSessions{result: &session.VerifyResult{Valid: false, Reason: session.ReasonInvalidToken}}
}

func activeRelationships() stubRelationships {
	return stubRelationships{rel: &relationship.Relationship{Status: relationship.StatusActive}}
}

type fixture struct {
	gate       *access.Gate
	cipher     *privilege.Cipher
	store      *commmemory.Store
	auditStore *auditmemory.InMemoryStore
}

func newFixture(t *testing.T, sessions access.SessionVerifier, relationships access.RelationshipVerifier) *fixture {
	t.Helper()
	cipher, err := privilege.NewCipher(make([]byte, privilege.KeyLen))
	require.NoError(t, err)

	store := commmemory.NewStore()
	auditStore := auditmemory.NewInMemoryStore()
	gate := access.NewGate(
		sessions,
		relationships,
		cipher,
		store,
		audit.NewPublisher(auditStore, logger.NewNop()),
		nil,
		logger.NewNop(),
		7,
	)
	return &fixture{gate: gate, cipher: cipher, store: store, auditStore: auditStore}
}

func credentials() access.Credentials {
	return access.Credentials{
		SessionID:  id.NewSessionID(),
		Token:      "token",
		AttorneyID: id.NewAttorneyID(),
		ClientID:   id.NewClientID(),
	}
}

func (f *fixture) protect(t *testing.T, creds access.Credentials, content string) *communication.Communication {
	t.Helper()
	comm, err := f.gate.Protect(context.Background(), access.ProtectParams{
		Credentials: creds,
		Type:        communication.TypeLegalAdvice,
		Content:     content,
	})
	require.NoError(t, err)
	return comm
}

func TestGate_Protect(t *testing.T) {
	t.Run("seals and stores with an initial access record", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())
		creds := credentials()

		comm := f.protect(t, creds, "advice on the merger")

		stored, err := f.store.FindByID(context.Background(), comm.ID)
		require.NoError(t, err)
		assert.NotEqual(t, "advice on the merger", stored.Ciphertext)
		assert.Equal(t, communication.RetentionPolicy(7), stored.RetentionPolicy)
		require.Len(t, stored.AccessLog, 1)
		assert.Equal(t, communication.AccessActionCreated, stored.AccessLog[0].Action)
		assert.Equal(t, creds.AttorneyID, stored.AccessLog[0].Actor)

		plaintext, err := f.cipher.Decrypt(stored.Ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "advice on the merger", plaintext)

		events, err := f.auditStore.List(context.Background(), audit.Filter{Action: audit.ActionCommunicationStored})
		require.NoError(t, err)
		assert.Len(t, events, 1)
	})

	t.Run("denied session stores nothing", func(t *testing.T) {
		f := newFixture(t, deniedSessions(), activeRelationships())

		_, err := f.gate.Protect(context.Background(), access.ProtectParams{
			Credentials: credentials(),
			Type:        communication.TypeEmail,
			Content:     "never stored",
		})
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.EqualError(t, err, "access denied")
	})
}

func TestGate_AuthorizeAndDecrypt(t *testing.T) {
	t.Run("releases plaintext and records the access", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())
		creds := credentials()
		comm := f.protect(t, creds, "work product notes")

		plaintext, err := f.gate.AuthorizeAndDecrypt(context.Background(), creds, comm.ID)
		require.NoError(t, err)
		assert.Equal(t, "work product notes", plaintext)

		stored, err := f.store.FindByID(context.Background(), comm.ID)
		require.NoError(t, err)
		require.Len(t, stored.AccessLog, 2)
		assert.Equal(t, communication.AccessActionAccessed, stored.AccessLog[1].Action)

		events, err := f.auditStore.List(context.Background(), audit.Filter{Action: audit.ActionCommunicationRead})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, comm.ID.String(), events[0].Details["communication_id"])
	})

	t.Run("denied session never reaches the communication", func(t *testing.T) {
		f := newFixture(t, deniedSessions(), activeRelationships())

		// An unknown communication would surface NOT_FOUND if lookup ran;
		// the generic denial proves the session check comes first.
		_, err := f.gate.AuthorizeAndDecrypt(context.Background(), credentials(), id.NewCommunicationID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnauthorized))
		assert.EqualError(t, err, "access denied", "denial must not leak the reason")
	})

	t.Run("no privileged relationship is a permission error", func(t *testing.T) {
		permErr := dErrors.New(dErrors.CodePermission, "no privileged relationship between attorney and client")
		f := newFixture(t, grantedSessions(), stubRelationships{err: permErr})

		_, err := f.gate.AuthorizeAndDecrypt(context.Background(), credentials(), id.NewCommunicationID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermission))
	})

	t.Run("unknown communication", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())

		_, err := f.gate.AuthorizeAndDecrypt(context.Background(), credentials(), id.NewCommunicationID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("communication of another relationship is refused and audited", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())
		owner := credentials()
		comm := f.protect(t, owner, "someone else's privilege")

		intruder := credentials()
		_, err := f.gate.AuthorizeAndDecrypt(context.Background(), intruder, comm.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodePermission))

		events, err := f.auditStore.List(context.Background(), audit.Filter{
			AttorneyID: intruder.AttorneyID,
			Action:     audit.ActionAccessDenied,
		})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.StatusViolation, events[0].Status)
	})

	t.Run("tampered ciphertext fails closed and is audited", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())
		creds := credentials()
		comm := f.protect(t, creds, "original content")

		comm.Ciphertext = flipLastChar(comm.Ciphertext)
		require.NoError(t, f.store.Save(context.Background(), comm))

		_, err := f.gate.AuthorizeAndDecrypt(context.Background(), creds, comm.ID)
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeEncryptionFailure))

		events, err := f.auditStore.List(context.Background(), audit.Filter{Action: audit.ActionAccessDenied})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "ciphertext integrity failure", events[0].Details["reason"])
	})
}

func flipLastChar(ciphertext string) string {
	last := ciphertext[len(ciphertext)-1]
	replacement := byte('A')
	if last == 'A' {
		replacement = 'B'
	}
	return ciphertext[:len(ciphertext)-1] + string(replacement)
}

func TestGate_VerifyRelationship(t *testing.T) {
	t.Run("active relationship", func(t *testing.T) {
		f := newFixture(t, grantedSessions(), activeRelationships())

		ok, err := f.gate.VerifyRelationship(context.Background(), id.NewAttorneyID(), id.NewClientID())
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("permission denial is a clean false", func(t *testing.T) {
		permErr := dErrors.New(dErrors.CodePermission, "no privileged relationship between attorney and client")
		f := newFixture(t, grantedSessions(), stubRelationships{err: permErr})

		ok, err := f.gate.VerifyRelationship(context.Background(), id.NewAttorneyID(), id.NewClientID())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("infrastructure failure propagates", func(t *testing.T) {
		infraErr := dErrors.New(dErrors.CodeInternal, "relationship store unavailable")
		f := newFixture(t, grantedSessions(), stubRelationships{err: infraErr})

		_, err := f.gate.VerifyRelationship(context.Background(), id.NewAttorneyID(), id.NewClientID())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})
}

func newMockedGate(t *testing.T, store communication.Store) (*access.Gate, *auditmemory.InMemoryStore) {
	t.Helper()
	cipher, err := privilege.NewCipher(make([]byte, privilege.KeyLen))
	require.NoError(t, err)

	auditStore := auditmemory.NewInMemoryStore()
	gate := access.NewGate(
		grantedSessions(),
		activeRelationships(),
		cipher,
		store,
		audit.NewPublisher(auditStore, logger.NewNop()),
		nil,
		logger.NewNop(),
		7,
	)
	return gate, auditStore
}

func TestGate_Protect_StoreFailureFailsClosed(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(assert.AnError)

	gate, auditStore := newMockedGate(t, store)

	_, err := gate.Protect(context.Background(), access.ProtectParams{
		Credentials: credentials(),
		Type:        communication.TypeLegalAdvice,
		Content:     "privileged analysis",
	})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))

	events, listErr := auditStore.List(context.Background(), audit.Filter{Action: audit.ActionCommunicationStored})
	require.NoError(t, listErr)
	assert.Empty(t, events, "a failed save must not be audited as stored")
}

func TestGate_AuthorizeAndDecrypt_AccessRecordFailureWithholdsPlaintext(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockStore(ctrl)

	gate, auditStore := newMockedGate(t, store)
	creds := credentials()

	cipher, err := privilege.NewCipher(make([]byte, privilege.KeyLen))
	require.NoError(t, err)
	ciphertext, err := cipher.Encrypt("privileged analysis")
	require.NoError(t, err)

	commID := id.NewCommunicationID()
	store.EXPECT().FindByID(gomock.Any(), commID).Return(&communication.Communication{
		ID:         commID,
		AttorneyID: creds.AttorneyID,
		ClientID:   creds.ClientID,
		Type:       communication.TypeLegalAdvice,
		Ciphertext: ciphertext,
	}, nil)
	store.EXPECT().AppendAccess(gomock.Any(), commID, gomock.Any()).Return(assert.AnError)

	plaintext, err := gate.AuthorizeAndDecrypt(context.Background(), creds, commID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.Empty(t, plaintext, "plaintext must not be released when the access record cannot be written")

	events, listErr := auditStore.List(context.Background(), audit.Filter{Action: audit.ActionCommunicationRead})
	require.NoError(t, listErr)
	assert.Empty(t, events)
}

func TestGate_RecordEvent(t *testing.T) {
	f := newFixture(t, grantedSessions(), activeRelationships())
	attorney := id.NewAttorneyID()
	client := id.NewClientID()

	err := f.gate.RecordEvent(context.Background(), attorney, client,
		"research_results_returned", map[string]string{"query": "case law"})
	require.NoError(t, err)

	events, err := f.auditStore.List(context.Background(), audit.Filter{AttorneyID: attorney})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, audit.ActionType("research_results_returned"), events[0].Action)
	assert.Equal(t, audit.CategoryAccess, events[0].Category)
	assert.Equal(t, audit.StatusCompliant, events[0].Status)
}
