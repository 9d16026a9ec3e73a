package document

import (
	"context"
	"net/url"
	"time"
)

// LocalURLIssuer builds unsigned download URLs off a base path. It stands in
// for the object-storage signer in tests and single-node deployments where
// the file server sits behind the same process boundary.
type LocalURLIssuer struct {
	baseURL string
	ttl     time.Duration
}

// NewLocalURLIssuer builds an issuer rooted at baseURL.
func NewLocalURLIssuer(baseURL string, ttl time.Duration) *LocalURLIssuer {
	return &LocalURLIssuer{baseURL: baseURL, ttl: ttl}
}

func (i *LocalURLIssuer) Issue(_ context.Context, storagePath string) (*FileLocator, error) {
	return &FileLocator{
		URL:       i.baseURL + "/files/" + url.PathEscape(storagePath),
		ExpiresIn: i.ttl,
	}, nil
}
