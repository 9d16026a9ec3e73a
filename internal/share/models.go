// Package share is the public, token-authenticated read path. Anonymous
// holders of a valid shareable token get scope-limited, sanitized views of
// the owner's data; every disclosure lands in the audit trail.
package share

import (
	"fmt"
	"time"

	"carevault/internal/consent"
	"carevault/internal/document"
	id "carevault/pkg/domain"
)

// ConsentSummary is what a grantee may learn about the consent itself. It
// never carries the owner's identity or the raw token.
type ConsentSummary struct {
	RecipientName string
	RecipientRole id.RecipientRole
	Scopes        []id.Scope
	Purpose       string
	CreatedAt     time.Time
	ExpiresAt     time.Time
}

func summarize(c *consent.Consent) *ConsentSummary {
	return &ConsentSummary{
		RecipientName: c.RecipientName,
		RecipientRole: c.RecipientRole,
		Scopes:        c.Scopes,
		Purpose:       c.Purpose,
		CreatedAt:     c.CreatedAt,
		ExpiresAt:     c.ExpiresAt,
	}
}

// FileGrant is the successful result of a file access: a short-lived
// download locator, never the storage path itself.
type FileGrant struct {
	Locator document.FileLocator
}

// GoneError reports that a link stopped working and why. Disclosing the
// terminal state is deliberate: the link is not secret-equivalent to a
// password, and a grantee deserves to know whether it expired or was revoked.
type GoneError struct {
	Status    consent.Status
	Timestamp time.Time // ExpiresAt for expired, RevokedAt for revoked
}

func (e *GoneError) Error() string {
	return fmt.Sprintf("share link %s at %s", e.Status, e.Timestamp.Format(time.RFC3339))
}

func goneFor(c *consent.Consent) *GoneError {
	if c.Status == consent.StatusRevoked && c.RevokedAt != nil {
		return &GoneError{Status: consent.StatusRevoked, Timestamp: *c.RevokedAt}
	}
	return &GoneError{Status: c.Status, Timestamp: c.ExpiresAt}
}
