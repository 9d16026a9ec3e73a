package consent

import (
	"context"
	"time"

	id "carevault/pkg/domain"
)

// Store is the durable consent table, keyed by id and by unique shareable
// token. Both implementations (memory, PostgreSQL) honor the same contract:
//
//   - Create fails with sentinel.ErrConflict when the shareable token is
//     already taken; the caller regenerates and retries.
//   - MarkExpired persists the lazy active->expired transition. It is a
//     compare-and-set: only an active row past its expiry changes, so
//     concurrent readers racing past the deadline all converge and a revoked
//     row is never overwritten. Idempotent; a no-op is not an error.
//   - Revoke is a compare-and-set against StatusActive. It returns
//     sentinel.ErrInvalidState when the row is already terminal so the
//     service can treat double-revoke as harmless.
//   - Lookups return sentinel.ErrNotFound for unknown ids/tokens.
type Store interface {
	Create(ctx context.Context, c *Consent) error
	FindByID(ctx context.Context, consentID id.ConsentID) (*Consent, error)
	FindByToken(ctx context.Context, token string) (*Consent, error)
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]*Consent, error)
	MarkExpired(ctx context.Context, consentID id.ConsentID, now time.Time) error
	Revoke(ctx context.Context, consentID id.ConsentID, revokedAt time.Time) error
}
