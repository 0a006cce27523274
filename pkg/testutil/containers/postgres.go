//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	_ "github.com/lib/pq"
)

// PostgresContainer wraps a testcontainers Postgres instance.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a new Postgres container and opens a database
// handle against it.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("chamber_test"),
		tcpostgres.WithUsername("chamber"),
		tcpostgres.WithPassword("chamber"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get postgres connection string: %v", err)
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to open postgres connection: %v", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	pc := &PostgresContainer{
		Container: container,
		DSN:       dsn,
		DB:        db,
	}

	t.Cleanup(func() {
		_ = pc.DB.Close()
		_ = pc.Container.Terminate(context.Background())
	})

	return pc
}

// Exec runs a statement against the database, failing the test on error.
// Use for schema setup and fixture loading.
func (p *PostgresContainer) Exec(t *testing.T, query string, args ...any) {
	t.Helper()
	if _, err := p.DB.Exec(query, args...); err != nil {
		t.Fatalf("exec failed: %v\nquery: %s", err, query)
	}
}

// schema mirrors the production tables. Kept here so integration tests can
// provision a fresh container without external migration tooling.
const schema = `
CREATE TABLE IF NOT EXISTS attorneys (
	id             UUID PRIMARY KEY,
	name           TEXT NOT NULL,
	bar_number     TEXT NOT NULL,
	email          TEXT NOT NULL,
	practice_areas TEXT[] NOT NULL DEFAULT '{}',
	jurisdiction   TEXT NOT NULL DEFAULT '',
	active         BOOLEAN NOT NULL DEFAULT TRUE,
	created_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS clients (
	id               UUID PRIMARY KEY,
	name             TEXT NOT NULL,
	client_type      TEXT NOT NULL,
	company_name     TEXT NOT NULL DEFAULT '',
	conflict_checked BOOLEAN NOT NULL DEFAULT FALSE,
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS relationships (
	id               UUID PRIMARY KEY,
	attorney_id      UUID NOT NULL,
	client_id        UUID NOT NULL,
	status           TEXT NOT NULL,
	privilege_status TEXT NOT NULL,
	matter           TEXT NOT NULL DEFAULT '',
	engaged_at       TIMESTAMPTZ NOT NULL,
	terminated_at    TIMESTAMPTZ,
	created_at       TIMESTAMPTZ NOT NULL,
	updated_at       TIMESTAMPTZ NOT NULL,
	UNIQUE (attorney_id, client_id)
);

CREATE TABLE IF NOT EXISTS waivers (
	id                UUID PRIMARY KEY,
	relationship_id   UUID NOT NULL UNIQUE,
	client_signature  TEXT NOT NULL,
	waiver_date       TEXT NOT NULL,
	waiver_scope      TEXT NOT NULL,
	attorney_approval TEXT NOT NULL,
	processed_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS privileged_communications (
	id               UUID PRIMARY KEY,
	attorney_id      UUID NOT NULL,
	client_id        UUID NOT NULL,
	comm_type        TEXT NOT NULL,
	ciphertext       TEXT NOT NULL,
	participants     TEXT[] NOT NULL DEFAULT '{}',
	work_product     BOOLEAN NOT NULL DEFAULT FALSE,
	retention_policy TEXT NOT NULL,
	access_log       JSONB NOT NULL DEFAULT '[]',
	created_at       TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_communications_pair
	ON privileged_communications (attorney_id, client_id, created_at);

CREATE TABLE IF NOT EXISTS audit_events (
	seq         BIGINT PRIMARY KEY,
	id          UUID NOT NULL,
	attorney_id UUID NOT NULL,
	client_id   UUID,
	session_id  UUID,
	action      TEXT NOT NULL,
	category    TEXT NOT NULL,
	status      TEXT NOT NULL,
	details     JSONB NOT NULL DEFAULT '{}',
	client_ip   TEXT NOT NULL DEFAULT '',
	user_agent  TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	occurred_at TIMESTAMPTZ NOT NULL,
	prev_hash   TEXT NOT NULL,
	entry_hash  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_events_attorney
	ON audit_events (attorney_id, occurred_at);
`

// ApplySchema creates the production tables in the test database.
func (p *PostgresContainer) ApplySchema(t *testing.T) {
	t.Helper()
	if _, err := p.DB.Exec(schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
}

// TruncateTables empties the named tables between tests.
func (p *PostgresContainer) TruncateTables(ctx context.Context, tables ...string) error {
	for _, table := range tables {
		if _, err := p.DB.ExecContext(ctx, "TRUNCATE TABLE "+table+" CASCADE"); err != nil {
			return err
		}
	}
	return nil
}
