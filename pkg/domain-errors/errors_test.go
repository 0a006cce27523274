package dErrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "chamber/pkg/domain-errors"
)

func TestHasCode(t *testing.T) {
	err := dErrors.New(dErrors.CodeNotFound, "session not found")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestWrap(t *testing.T) {
	t.Run("preserves the cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := dErrors.Wrap(cause, dErrors.CodeInternal, "save session")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
		assert.ErrorIs(t, err, cause)
		assert.Contains(t, err.Error(), "save session")
	})

	t.Run("nil cause stays nil", func(t *testing.T) {
		assert.NoError(t, dErrors.Wrap(nil, dErrors.CodeInternal, "noop"))
	})

	t.Run("same code is not double-wrapped", func(t *testing.T) {
		inner := dErrors.New(dErrors.CodePermission, "session belongs to another attorney")
		assert.Equal(t, inner, dErrors.Wrap(inner, dErrors.CodePermission, "outer"))
	})

	t.Run("survives fmt wrapping", func(t *testing.T) {
		err := fmt.Errorf("handler: %w", dErrors.New(dErrors.CodeExpiredSession, "session expired"))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeExpiredSession))
	})
}

func TestToHTTPStatus(t *testing.T) {
	cases := []struct {
		code dErrors.Code
		want int
	}{
		{dErrors.CodeInvalidInput, http.StatusBadRequest},
		{dErrors.CodeNotFound, http.StatusNotFound},
		{dErrors.CodeConflictDetected, http.StatusConflict},
		{dErrors.CodeExpiredSession, http.StatusUnauthorized},
		{dErrors.CodePermission, http.StatusForbidden},
		{dErrors.CodeEncryptionFailure, http.StatusInternalServerError},
		{dErrors.CodeAuditWriteFailure, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(string(tc.code), func(t *testing.T) {
			assert.Equal(t, tc.want, dErrors.ToHTTPStatus(dErrors.New(tc.code, "x")))
		})
	}
}
