// Package document is the read-only collaborator the share gateway draws
// from. The vault's upload/OCR pipeline owns the write side; this package
// only exposes sanitized projections, never extracted text, embeddings, or
// raw storage paths.
package document

import (
	"time"

	id "carevault/pkg/domain"
)

// Record is the stored shape. StoragePath stays inside this package and the
// signed-URL issuer; it must never appear in an API response.
type Record struct {
	ID           id.DocumentID
	OwnerID      id.UserID
	Title        string
	Category     string
	Provider     string
	DocumentDate time.Time
	FileType     string
	StoragePath  string
	CreatedAt    time.Time
}

// Summary is the sanitized projection served to grantees and owners.
type Summary struct {
	ID           id.DocumentID
	Title        string
	Category     string
	Provider     string
	DocumentDate time.Time
	FileType     string
}

// Summarize strips a record down to its shareable fields.
func Summarize(rec Record) Summary {
	return Summary{
		ID:           rec.ID,
		Title:        rec.Title,
		Category:     rec.Category,
		Provider:     rec.Provider,
		DocumentDate: rec.DocumentDate,
		FileType:     rec.FileType,
	}
}

// FileLocator is a short-lived handle for downloading one file.
type FileLocator struct {
	URL       string
	ExpiresIn time.Duration
}
