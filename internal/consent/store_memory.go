package consent

import (
	"context"
	"sort"
	"sync"
	"time"

	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
)

// InMemoryStore keeps consents in process memory behind one mutex, which
// makes the CAS semantics of MarkExpired and Revoke trivial. Used by tests
// and single-node development.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.ConsentID]*Consent
	byToken map[string]id.ConsentID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.ConsentID]*Consent),
		byToken: make(map[string]id.ConsentID),
	}
}

func (s *InMemoryStore) Create(_ context.Context, c *Consent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byToken[c.ShareableToken]; taken {
		return sentinel.ErrConflict
	}
	if _, exists := s.byID[c.ID]; exists {
		return sentinel.ErrConflict
	}
	clone := *c
	s.byID[c.ID] = &clone
	s.byToken[c.ShareableToken] = c.ID
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, consentID id.ConsentID) (*Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.byID[consentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *c
	return &clone, nil
}

func (s *InMemoryStore) FindByToken(_ context.Context, token string) (*Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	consentID, ok := s.byToken[token]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	clone := *s.byID[consentID]
	return &clone, nil
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]*Consent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var consents []*Consent
	for _, c := range s.byID {
		if c.OwnerID == ownerID {
			clone := *c
			consents = append(consents, &clone)
		}
	}
	sort.SliceStable(consents, func(i, j int) bool {
		return consents[i].CreatedAt.After(consents[j].CreatedAt)
	})
	return consents, nil
}

func (s *InMemoryStore) MarkExpired(_ context.Context, consentID id.ConsentID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[consentID]
	if !ok {
		return sentinel.ErrNotFound
	}
	// CAS: only an active row past its deadline transitions. Losing the race
	// to another reader, or to a revoke, is not an error.
	if c.Status == StatusActive && now.After(c.ExpiresAt) {
		c.Status = StatusExpired
	}
	return nil
}

func (s *InMemoryStore) Revoke(_ context.Context, consentID id.ConsentID, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.byID[consentID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if c.Status != StatusActive {
		return sentinel.ErrInvalidState
	}
	c.Status = StatusRevoked
	t := revokedAt
	c.RevokedAt = &t
	return nil
}
