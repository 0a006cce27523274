package handler_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chamber/internal/audit"
	auditmemory "chamber/internal/audit/store/memory"
	"chamber/internal/platform/logger"
	"chamber/internal/session"
	"chamber/internal/session/handler"
	"chamber/internal/session/store/memory"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/testutil"
)

type fixture struct {
	router     chi.Router
	service    *session.Service
	attorneyID id.AttorneyID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	service := session.NewService(
		memory.NewStore(),
		audit.NewPublisher(auditmemory.NewInMemoryStore(), logger.NewNop()),
		nil,
		logger.NewNop(),
		60*time.Minute,
	)
	router := chi.NewRouter()
	handler.New(service, logger.NewNop()).Register(router)
	return &fixture{router: router, service: service, attorneyID: id.NewAttorneyID()}
}

type createdSession struct {
	SessionID      string `json:"session_id"`
	SessionToken   string `json:"session_token"`
	ExpiresAt      string `json:"expires_at"`
	PrivilegeLevel string `json:"privilege_level"`
}

func (f *fixture) createSession(t *testing.T, body map[string]any) *createdSession {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/session", body)
	req = testutil.WithAttorneyID(req, f.attorneyID.String())
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[createdSession](t, rr)
}

type verifyResult struct {
	Authorized          bool   `json:"authorized"`
	Reason              string `json:"reason"`
	PrivilegeLevel      string `json:"privilege_level"`
	RemainingTTLSeconds int64  `json:"remaining_ttl_seconds"`
}

func (f *fixture) verify(t *testing.T, body map[string]any) *verifyResult {
	t.Helper()
	req := testutil.NewJSONRequest(t, http.MethodPost, "/session/verify", body)
	req = testutil.WithAttorneyID(req, f.attorneyID.String())
	rr := testutil.DoRequest(f.router, req)
	testutil.AssertStatusOK(t, rr)
	return testutil.UnmarshalResponse[verifyResult](t, rr)
}

func TestHandleCreate(t *testing.T) {
	t.Run("client-bound session", func(t *testing.T) {
		f := newFixture(t)
		clientID := id.NewClientID()

		created := f.createSession(t, map[string]any{"client_id": clientID.String()})
		assert.NotEmpty(t, created.SessionID)
		assert.NotEmpty(t, created.SessionToken)
		assert.Equal(t, string(session.PrivilegeFull), created.PrivilegeLevel)

		expires, err := time.Parse(time.RFC3339, created.ExpiresAt)
		require.NoError(t, err)
		assert.True(t, expires.After(time.Now()))
	})

	t.Run("attorney-only session", func(t *testing.T) {
		f := newFixture(t)

		created := f.createSession(t, map[string]any{})
		assert.Equal(t, string(session.PrivilegeAttorneyOnly), created.PrivilegeLevel)
	})

	t.Run("malformed client id", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewJSONRequest(t, http.MethodPost, "/session", map[string]any{"client_id": "not-a-uuid"})
		req = testutil.WithAttorneyID(req, f.attorneyID.String())

		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("malformed body", func(t *testing.T) {
		f := newFixture(t)
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/session", "{not json")
		req = testutil.WithAttorneyID(req, f.attorneyID.String())

		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})
}

func TestHandleVerify(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		f := newFixture(t)
		clientID := id.NewClientID()
		created := f.createSession(t, map[string]any{"client_id": clientID.String()})

		result := f.verify(t, map[string]any{
			"session_id":    created.SessionID,
			"session_token": created.SessionToken,
			"client_id":     clientID.String(),
		})
		assert.True(t, result.Authorized)
		assert.Empty(t, result.Reason)
		assert.Equal(t, string(session.PrivilegeFull), result.PrivilegeLevel)
		assert.Greater(t, result.RemainingTTLSeconds, int64(0))
	})

	t.Run("wrong token and unknown session are indistinguishable", func(t *testing.T) {
		f := newFixture(t)
		created := f.createSession(t, map[string]any{})

		wrongToken := f.verify(t, map[string]any{
			"session_id":    created.SessionID,
			"session_token": "forged",
		})
		unknownSession := f.verify(t, map[string]any{
			"session_id":    id.NewSessionID().String(),
			"session_token": created.SessionToken,
		})

		assert.False(t, wrongToken.Authorized)
		assert.False(t, unknownSession.Authorized)
		assert.Equal(t, wrongToken.Reason, unknownSession.Reason)
		assert.NotContains(t, wrongToken.Reason, "token")
	})

	t.Run("client mismatch reason is explicit", func(t *testing.T) {
		f := newFixture(t)
		created := f.createSession(t, map[string]any{"client_id": id.NewClientID().String()})

		result := f.verify(t, map[string]any{
			"session_id":    created.SessionID,
			"session_token": created.SessionToken,
			"client_id":     id.NewClientID().String(),
		})
		assert.False(t, result.Authorized)
		assert.Equal(t, session.ReasonClientMismatch, result.Reason)
	})
}

func TestHandleInvalidate(t *testing.T) {
	t.Run("owner logout", func(t *testing.T) {
		f := newFixture(t)
		created := f.createSession(t, map[string]any{})

		req := testutil.NewRequest(t, http.MethodDelete, "/session/"+created.SessionID)
		req = testutil.WithAttorneyID(req, f.attorneyID.String())
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatus(t, rr, http.StatusNoContent)

		result := f.verify(t, map[string]any{
			"session_id":    created.SessionID,
			"session_token": created.SessionToken,
		})
		assert.False(t, result.Authorized)
	})

	t.Run("another attorney is refused", func(t *testing.T) {
		f := newFixture(t)
		created := f.createSession(t, map[string]any{})

		req := testutil.NewRequest(t, http.MethodDelete, "/session/"+created.SessionID)
		req = testutil.WithAttorneyID(req, id.NewAttorneyID().String())
		rr := testutil.DoRequest(f.router, req)
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodePermission))
	})
}
