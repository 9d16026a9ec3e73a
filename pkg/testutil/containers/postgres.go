//go:build integration

package containers

import (
	"context"
	"database/sql"
	"testing"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
)

// schema mirrors migrations/001_init.sql so integration tests run against the
// same shape production deploys.
const schema = `
CREATE TABLE IF NOT EXISTS consents (
    id              UUID PRIMARY KEY,
    owner_id        UUID        NOT NULL,
    recipient_name  TEXT        NOT NULL,
    recipient_role  TEXT        NOT NULL,
    scopes          TEXT[]      NOT NULL,
    duration_type   TEXT        NOT NULL,
    purpose         TEXT        NOT NULL,
    status          TEXT        NOT NULL,
    shareable_token TEXT        NOT NULL UNIQUE,
    created_at      TIMESTAMPTZ NOT NULL,
    expires_at      TIMESTAMPTZ NOT NULL,
    revoked_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS consent_audit_logs (
    id         UUID PRIMARY KEY,
    consent_id UUID        NOT NULL REFERENCES consents (id),
    action     TEXT        NOT NULL,
    actor_id   TEXT        NOT NULL,
    actor_type TEXT        NOT NULL,
    details    JSONB       NOT NULL DEFAULT '{}',
    timestamp  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
    id            UUID PRIMARY KEY,
    owner_id      UUID        NOT NULL,
    title         TEXT        NOT NULL,
    category      TEXT        NOT NULL,
    provider      TEXT        NOT NULL,
    document_date TIMESTAMPTZ NOT NULL,
    file_type     TEXT        NOT NULL,
    storage_path  TEXT        NOT NULL,
    created_at    TIMESTAMPTZ NOT NULL
);
`

// PostgresContainer wraps a testcontainers Postgres instance with the schema
// applied.
type PostgresContainer struct {
	Container testcontainers.Container
	DSN       string
	DB        *sql.DB
}

// NewPostgresContainer starts a Postgres container and applies the schema.
func NewPostgresContainer(t *testing.T) *PostgresContainer {
	t.Helper()

	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("carevault_test"),
		tcpostgres.WithUsername("carevault"),
		tcpostgres.WithPassword("carevault"),
		tcpostgres.BasicWaitStrategies(),
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
	if err := db.Ping(); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to ping postgres: %v", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		_ = container.Terminate(ctx)
		t.Fatalf("failed to apply schema: %v", err)
	}

	return &PostgresContainer{Container: container, DSN: dsn, DB: db}
}

// Truncate wipes all rows. Use between tests to ensure isolation.
func (p *PostgresContainer) Truncate(ctx context.Context) error {
	_, err := p.DB.ExecContext(ctx, `TRUNCATE consent_audit_logs, consents, documents`)
	return err
}
