package audit

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "carevault/pkg/domain"
	txcontext "carevault/pkg/platform/tx"
)

// PostgresStore persists audit entries in the consent_audit_logs table.
// Writes join an ambient SQL transaction when one is present in context, so a
// grant entry commits atomically with its consent row.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *PostgresStore) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *PostgresStore) Append(ctx context.Context, entry Entry) error {
	query := `
		INSERT INTO consent_audit_logs (id, consent_id, action, actor_id, actor_type, details, timestamp)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	details := entry.Details
	if details == nil {
		details = []byte("{}")
	}
	_, err := s.execer(ctx).ExecContext(ctx, query,
		entry.ID,
		uuid.UUID(entry.ConsentID),
		string(entry.Action),
		entry.ActorID,
		string(entry.ActorType),
		[]byte(details),
		entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByConsent(ctx context.Context, consentID id.ConsentID) ([]Entry, error) {
	query := `
		SELECT id, consent_id, action, actor_id, actor_type, details, timestamp
		FROM consent_audit_logs
		WHERE consent_id = $1
		ORDER BY timestamp DESC, id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(consentID))
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			entry      Entry
			consentRaw uuid.UUID
			action     string
			actorType  string
		)
		if err := rows.Scan(&entry.ID, &consentRaw, &action, &entry.ActorID, &actorType, &entry.Details, &entry.Timestamp); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entry.ConsentID = id.ConsentID(consentRaw)
		entry.Action = Action(action)
		entry.ActorType = ActorType(actorType)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}
