package consent

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
	txcontext "carevault/pkg/platform/tx"
)

// PostgresStore persists consents in the consents table. The shareable token
// carries a unique index; MarkExpired and Revoke are single-statement
// compare-and-sets so racing readers and revokers converge without locks.
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

const consentColumns = `id, owner_id, recipient_name, recipient_role, scopes, duration_type, purpose, status, shareable_token, created_at, expires_at, revoked_at`

func (s *PostgresStore) Create(ctx context.Context, c *Consent) error {
	scopes := make([]string, len(c.Scopes))
	for i, sc := range c.Scopes {
		scopes[i] = string(sc)
	}
	query := `
		INSERT INTO consents (` + consentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(c.ID),
		uuid.UUID(c.OwnerID),
		c.RecipientName,
		string(c.RecipientRole),
		pq.Array(scopes),
		string(c.DurationType),
		c.Purpose,
		string(c.Status),
		c.ShareableToken,
		c.CreatedAt,
		c.ExpiresAt,
		c.RevokedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert consent: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, consentID id.ConsentID) (*Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE id = $1`
	return s.findOne(ctx, query, uuid.UUID(consentID))
}

func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*Consent, error) {
	query := `SELECT ` + consentColumns + ` FROM consents WHERE shareable_token = $1`
	return s.findOne(ctx, query, token)
}

func (s *PostgresStore) findOne(ctx context.Context, query string, arg any) (*Consent, error) {
	c, err := scanConsent(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return c, nil
}

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Consent, error) {
	query := `
		SELECT ` + consentColumns + `
		FROM consents
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query consents: %w", err)
	}
	defer rows.Close()

	var consents []*Consent
	for rows.Next() {
		c, err := scanConsent(rows)
		if err != nil {
			return nil, err
		}
		consents = append(consents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate consents: %w", err)
	}
	return consents, nil
}

func (s *PostgresStore) MarkExpired(ctx context.Context, consentID id.ConsentID, now time.Time) error {
	// CAS: only an active row past its deadline transitions, so a concurrent
	// revoke is never overwritten and double-expiry is harmless.
	query := `
		UPDATE consents
		SET status = $1
		WHERE id = $2 AND status = $3 AND expires_at < $4
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		string(StatusExpired), uuid.UUID(consentID), string(StatusActive), now)
	if err != nil {
		return fmt.Errorf("mark consent expired: %w", err)
	}
	return nil
}

func (s *PostgresStore) Revoke(ctx context.Context, consentID id.ConsentID, revokedAt time.Time) error {
	query := `
		UPDATE consents
		SET status = $1, revoked_at = $2
		WHERE id = $3 AND status = $4
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		string(StatusRevoked), revokedAt, uuid.UUID(consentID), string(StatusActive))
	if err != nil {
		return fmt.Errorf("revoke consent: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke consent rows affected: %w", err)
	}
	if affected == 0 {
		// Either the row does not exist or it is already terminal; the
		// service distinguishes via a follow-up read.
		var exists bool
		if err := s.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM consents WHERE id = $1)`, uuid.UUID(consentID)).Scan(&exists); err != nil {
			return fmt.Errorf("revoke consent existence check: %w", err)
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return sentinel.ErrInvalidState
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanConsent(row rowScanner) (*Consent, error) {
	var (
		c         Consent
		consentID uuid.UUID
		ownerID   uuid.UUID
		role      string
		scopes    pq.StringArray
		duration  string
		status    string
		revokedAt sql.NullTime
	)
	err := row.Scan(&consentID, &ownerID, &c.RecipientName, &role, &scopes, &duration, &c.Purpose, &status, &c.ShareableToken, &c.CreatedAt, &c.ExpiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan consent: %w", err)
	}
	c.ID = id.ConsentID(consentID)
	c.OwnerID = id.UserID(ownerID)
	c.RecipientRole = id.RecipientRole(role)
	c.DurationType = id.DurationType(duration)
	c.Status = Status(status)
	c.Scopes = make([]id.Scope, len(scopes))
	for i, sc := range scopes {
		c.Scopes[i] = id.Scope(sc)
	}
	if revokedAt.Valid {
		t := revokedAt.Time
		c.RevokedAt = &t
	}
	return &c, nil
}
