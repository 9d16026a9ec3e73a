package audit

import (
	"context"

	id "carevault/pkg/domain"
)

// Store is the append-only audit log. ListByConsent returns entries newest
// first; ties on timestamp keep insertion order stable enough for display.
type Store interface {
	Append(ctx context.Context, entry Entry) error
	ListByConsent(ctx context.Context, consentID id.ConsentID) ([]Entry, error)
}
