package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
)

// PostgresStore reads from the documents table maintained by the upload
// pipeline.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const documentColumns = `id, owner_id, title, category, provider, document_date, file_type, storage_path, created_at`

func (s *PostgresStore) ListByOwner(ctx context.Context, ownerID id.UserID) ([]Record, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE owner_id = $1
		ORDER BY document_date DESC
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(ownerID))
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return records, nil
}

func (s *PostgresStore) FindByID(ctx context.Context, documentID id.DocumentID) (*Record, error) {
	query := `
		SELECT ` + documentColumns + `
		FROM documents
		WHERE id = $1
	`
	row := s.db.QueryRowContext(ctx, query, uuid.UUID(documentID))
	rec, err := scanDocument(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return rec, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*Record, error) {
	var (
		rec     Record
		docID   uuid.UUID
		ownerID uuid.UUID
	)
	err := row.Scan(&docID, &ownerID, &rec.Title, &rec.Category, &rec.Provider, &rec.DocumentDate, &rec.FileType, &rec.StoragePath, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan document: %w", err)
	}
	rec.ID = id.DocumentID(docID)
	rec.OwnerID = id.UserID(ownerID)
	return &rec, nil
}
