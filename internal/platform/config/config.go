// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config captures everything the server needs to start.
type Config struct {
	Addr           string
	DevMode        bool
	PrivilegeKey   []byte
	SessionTTL     time.Duration
	RetentionYears int
	DatabaseURL    string
	Redis          RedisConfig
	JWTSigningKey  string
	ServiceKeyHash string
}

// RedisConfig holds connection settings for the session store.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

const privilegeKeyLen = 32

// Load builds a Config from environment variables.
//
// CHAMBER_PRIVILEGE_KEY must hold a base64-encoded 256-bit key. Starting
// without one is refused outside dev mode: an ephemeral key would make every
// stored communication unreadable after a restart.
func Load() (Config, error) {
	cfg := Config{
		Addr:           envOr("CHAMBER_ADDR", ":8080"),
		DevMode:        os.Getenv("CHAMBER_DEV_MODE") == "true",
		SessionTTL:     60 * time.Minute,
		RetentionYears: 7,
		DatabaseURL:    os.Getenv("CHAMBER_DATABASE_URL"),
		JWTSigningKey:  os.Getenv("CHAMBER_JWT_SIGNING_KEY"),
		ServiceKeyHash: os.Getenv("CHAMBER_SERVICE_KEY_HASH"),
		Redis: RedisConfig{
			URL:          os.Getenv("CHAMBER_REDIS_URL"),
			PoolSize:     envInt("CHAMBER_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("CHAMBER_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
	}

	if raw := os.Getenv("CHAMBER_SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil {
			return Config{}, fmt.Errorf("parse CHAMBER_SESSION_TTL: %w", err)
		}
		cfg.SessionTTL = ttl
	}

	if raw := os.Getenv("CHAMBER_RETENTION_YEARS"); raw != "" {
		years, err := strconv.Atoi(raw)
		if err != nil || years < 1 {
			return Config{}, fmt.Errorf("CHAMBER_RETENTION_YEARS must be a positive integer, got %q", raw)
		}
		cfg.RetentionYears = years
	}

	key, err := loadPrivilegeKey(cfg.DevMode)
	if err != nil {
		return Config{}, err
	}
	cfg.PrivilegeKey = key

	if cfg.JWTSigningKey == "" {
		if !cfg.DevMode {
			return Config{}, fmt.Errorf("CHAMBER_JWT_SIGNING_KEY is required outside dev mode")
		}
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg, nil
}

func loadPrivilegeKey(devMode bool) ([]byte, error) {
	raw := os.Getenv("CHAMBER_PRIVILEGE_KEY")
	if raw == "" {
		if devMode {
			// Dev mode tolerates a missing key; privilege.NewCipher
			// generates an ephemeral one and logs loudly about it.
			return nil, nil
		}
		return nil, fmt.Errorf("CHAMBER_PRIVILEGE_KEY is required outside dev mode")
	}

	key, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return nil, fmt.Errorf("decode CHAMBER_PRIVILEGE_KEY: %w", err)
	}
	if len(key) != privilegeKeyLen {
		return nil, fmt.Errorf("CHAMBER_PRIVILEGE_KEY must decode to %d bytes, got %d", privilegeKeyLen, len(key))
	}
	return key, nil
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
