package document

import (
	"context"

	id "carevault/pkg/domain"
)

// Store reads documents for the share gateway. ListByOwner returns newest
// document-date first.
type Store interface {
	ListByOwner(ctx context.Context, ownerID id.UserID) ([]Record, error)
	FindByID(ctx context.Context, documentID id.DocumentID) (*Record, error)
}

// SignedURLIssuer exchanges a storage path for a short-lived download URL.
// Production wires the object-storage signer; tests use the local stub.
type SignedURLIssuer interface {
	Issue(ctx context.Context, storagePath string) (*FileLocator, error)
}
