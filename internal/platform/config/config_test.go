package config

import (
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validKey(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(key)
}

func TestLoad_RefusesMissingKeyOutsideDevMode(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", "")
	t.Setenv("CHAMBER_DEV_MODE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CHAMBER_PRIVILEGE_KEY")
}

func TestLoad_DevModeToleratesMissingKey(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", "")
	t.Setenv("CHAMBER_DEV_MODE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Nil(t, cfg.PrivilegeKey)
	assert.True(t, cfg.DevMode)
}

func TestLoad_RejectsWrongKeyLength(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", base64.StdEncoding.EncodeToString([]byte("short")))
	t.Setenv("CHAMBER_DEV_MODE", "")
	t.Setenv("CHAMBER_JWT_SIGNING_KEY", "test-signing-key")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "32 bytes")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", validKey(t))
	t.Setenv("CHAMBER_JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("CHAMBER_ADDR", "")
	t.Setenv("CHAMBER_SESSION_TTL", "")
	t.Setenv("CHAMBER_RETENTION_YEARS", "")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, 60*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 7, cfg.RetentionYears)
	assert.Len(t, cfg.PrivilegeKey, 32)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", validKey(t))
	t.Setenv("CHAMBER_JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("CHAMBER_SESSION_TTL", "30m")
	t.Setenv("CHAMBER_RETENTION_YEARS", "10")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 10, cfg.RetentionYears)
}

func TestLoad_RejectsBadTTL(t *testing.T) {
	t.Setenv("CHAMBER_PRIVILEGE_KEY", validKey(t))
	t.Setenv("CHAMBER_JWT_SIGNING_KEY", "test-signing-key")
	t.Setenv("CHAMBER_SESSION_TTL", "sixty minutes")

	_, err := Load()
	require.Error(t, err)
}
