package audit

import (
	"context"
	"sort"
	"sync"

	id "carevault/pkg/domain"
)

// InMemoryStore keeps audit entries in process memory. Used by tests and
// single-node development; production uses the PostgreSQL store.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[id.ConsentID][]Entry
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{entries: make(map[id.ConsentID][]Entry)}
}

func (s *InMemoryStore) Append(_ context.Context, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ConsentID] = append(s.entries[entry.ConsentID], entry)
	return nil
}

func (s *InMemoryStore) ListByConsent(_ context.Context, consentID id.ConsentID) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := append([]Entry{}, s.entries[consentID]...)
	// Newest first; stable so same-timestamp entries keep append order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	return entries, nil
}
