package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"

	"chamber/internal/access"
	"chamber/internal/access/handler"
	"chamber/internal/communication"
	"chamber/internal/platform/logger"
	id "chamber/pkg/domain"
	dErrors "chamber/pkg/domain-errors"
	"chamber/pkg/testutil"
)

type stubGate struct {
	comm       *communication.Communication
	protectErr error
	plaintext  string
	accessErr  error

	protectParams *access.ProtectParams
	accessedID    id.CommunicationID
}

func (s *stubGate) Protect(_ context.Context, params access.ProtectParams) (*communication.Communication, error) {
	s.protectParams = &params
	if s.protectErr != nil {
		return nil, s.protectErr
	}
	return s.comm, nil
}

func (s *stubGate) AuthorizeAndDecrypt(_ context.Context, _ access.Credentials, communicationID id.CommunicationID) (string, error) {
	s.accessedID = communicationID
	if s.accessErr != nil {
		return "", s.accessErr
	}
	return s.plaintext, nil
}

func newRouter(gate handler.Gate) chi.Router {
	router := chi.NewRouter()
	handler.New(gate, logger.NewNop()).Register(router)
	return router
}

func do(t *testing.T, router chi.Router, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := testutil.NewJSONRequest(t, method, path, body)
	req = testutil.WithAttorneyID(req, id.NewAttorneyID().String())
	return testutil.DoRequest(router, req)
}

func credentialsBody() map[string]any {
	return map[string]any{
		"session_id":    id.NewSessionID().String(),
		"session_token": "token",
		"client_id":     id.NewClientID().String(),
	}
}

func TestHandleProtect(t *testing.T) {
	t.Run("stores and returns the communication", func(t *testing.T) {
		gate := &stubGate{comm: &communication.Communication{ID: id.NewCommunicationID()}}
		router := newRouter(gate)

		body := credentialsBody()
		body["type"] = "legal_advice"
		body["content"] = "advice"
		rr := do(t, router, http.MethodPost, "/communications", body)

		testutil.AssertStatus(t, rr, http.StatusCreated)
		assert.Equal(t, communication.TypeLegalAdvice, gate.protectParams.Type)
		assert.Equal(t, "advice", gate.protectParams.Content)
	})

	t.Run("content is required", func(t *testing.T) {
		router := newRouter(&stubGate{})

		body := credentialsBody()
		body["type"] = "email"
		rr := do(t, router, http.MethodPost, "/communications", body)
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("denied session", func(t *testing.T) {
		gate := &stubGate{protectErr: dErrors.New(dErrors.CodeUnauthorized, "access denied")}
		router := newRouter(gate)

		body := credentialsBody()
		body["content"] = "never stored"
		rr := do(t, router, http.MethodPost, "/communications", body)
		testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, string(dErrors.CodeUnauthorized))
	})
}

func TestHandleAccess(t *testing.T) {
	t.Run("releases the plaintext", func(t *testing.T) {
		gate := &stubGate{plaintext: "privileged notes"}
		router := newRouter(gate)
		communicationID := id.NewCommunicationID()

		rr := do(t, router, http.MethodPost, "/communications/"+communicationID.String()+"/access", credentialsBody())
		testutil.AssertStatusOK(t, rr)
		assert.Equal(t, communicationID, gate.accessedID)
		testutil.AssertJSONContains(t, rr, "content", "privileged notes")
	})

	t.Run("permission failure maps to 403", func(t *testing.T) {
		gate := &stubGate{accessErr: dErrors.New(dErrors.CodePermission, "access denied")}
		router := newRouter(gate)

		rr := do(t, router, http.MethodPost, "/communications/"+id.NewCommunicationID().String()+"/access", credentialsBody())
		testutil.AssertStatusAndError(t, rr, http.StatusForbidden, string(dErrors.CodePermission))
	})

	t.Run("malformed communication id", func(t *testing.T) {
		router := newRouter(&stubGate{})

		rr := do(t, router, http.MethodPost, "/communications/not-a-uuid/access", credentialsBody())
		testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, string(dErrors.CodeInvalidInput))
	})

	t.Run("tampered ciphertext maps to 500", func(t *testing.T) {
		gate := &stubGate{accessErr: dErrors.New(dErrors.CodeEncryptionFailure, "decrypt communication")}
		router := newRouter(gate)

		rr := do(t, router, http.MethodPost, "/communications/"+id.NewCommunicationID().String()+"/access", credentialsBody())
		testutil.AssertStatusAndError(t, rr, http.StatusInternalServerError, string(dErrors.CodeEncryptionFailure))
	})
}
