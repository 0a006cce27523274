package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "chamber/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be valid, non-empty, non-nil UUIDs"
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseAttorneyID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseAttorneyID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects nil UUID", func(t *testing.T) {
		_, err := ParseSessionID(uuid.Nil.String())
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseClientID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, ClientID(validUUID), id)
	})

	t.Run("relationship id round trips", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseRelationshipID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, RelationshipID(validUUID), id)

		_, err = ParseRelationshipID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	attorneyID := AttorneyID(uuid.New())
	clientID := ClientID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ AttorneyID = clientID   // compile error
	// var _ ClientID = attorneyID   // compile error

	// Verify they're distinct at runtime too
	assert.NotEqual(t, uuid.UUID(attorneyID), uuid.UUID(clientID))
}

func TestIsNil(t *testing.T) {
	assert.True(t, ClientID{}.IsNil())
	assert.False(t, NewClientID().IsNil())
}
