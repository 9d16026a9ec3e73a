// Package consent implements time-bound, scope-limited, revocable delegation
// of a record owner's data to a named recipient. A consent is never physically
// deleted: the audit trail references it indefinitely.
package consent

import (
	"time"

	id "carevault/pkg/domain"
)

// Status is the lifecycle state of a consent.
//
//	        create
//	  [ ] --------> active
//	active --(now past expiry, observed on any read)--> expired   [terminal]
//	active --(owner revoke)--> revoked                            [terminal]
//
// There is no path out of a terminal state.
type Status string

const (
	StatusActive  Status = "active"
	StatusExpired Status = "expired"
	StatusRevoked Status = "revoked"
)

// ParseStatus validates a status filter value from external input.
func ParseStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusActive, StatusExpired, StatusRevoked:
		return Status(s), true
	default:
		return "", false
	}
}

// IsTerminal reports whether the status can never change again.
func (s Status) IsTerminal() bool {
	return s == StatusExpired || s == StatusRevoked
}

// Consent grants a recipient read access to a subset of the owner's data
// until it expires or is revoked. All fields except Status and RevokedAt are
// immutable after creation; edits require revoke plus recreate.
type Consent struct {
	ID            id.ConsentID
	OwnerID       id.UserID
	RecipientName string
	RecipientRole id.RecipientRole
	Scopes        []id.Scope
	DurationType  id.DurationType
	Purpose       string
	Status        Status
	// ShareableToken is the sole credential for the public access path.
	// Opaque, unguessable, globally unique across all consents ever created.
	ShareableToken string
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
}

// EffectiveStatus computes the status as of now without trusting a stale
// stored value. Revoked wins over time-based expiry.
func (c *Consent) EffectiveStatus(now time.Time) Status {
	if c.Status == StatusRevoked {
		return StatusRevoked
	}
	if c.Status == StatusExpired || now.After(c.ExpiresAt) {
		return StatusExpired
	}
	return StatusActive
}

// Permits reports whether this consent's scopes cover the requested data
// category. Liveness is checked separately; a revoked consent still "permits"
// in the scope sense and is rejected upstream.
func (c *Consent) Permits(requested id.Scope) bool {
	return id.ScopesPermit(c.Scopes, requested)
}
