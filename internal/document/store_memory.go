package document

import (
	"context"
	"sort"
	"sync"

	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
)

// InMemoryStore backs tests and local development.
type InMemoryStore struct {
	mu      sync.RWMutex
	byID    map[id.DocumentID]Record
	byOwner map[id.UserID][]id.DocumentID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		byID:    make(map[id.DocumentID]Record),
		byOwner: make(map[id.UserID][]id.DocumentID),
	}
}

// Put seeds a document. Test helper; the upload pipeline owns real writes.
func (s *InMemoryStore) Put(rec Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[rec.ID]; !exists {
		s.byOwner[rec.OwnerID] = append(s.byOwner[rec.OwnerID], rec.ID)
	}
	s.byID[rec.ID] = rec
}

func (s *InMemoryStore) ListByOwner(_ context.Context, ownerID id.UserID) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]Record, 0, len(s.byOwner[ownerID]))
	for _, docID := range s.byOwner[ownerID] {
		records = append(records, s.byID[docID])
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].DocumentDate.After(records[j].DocumentDate)
	})
	return records, nil
}

func (s *InMemoryStore) FindByID(_ context.Context, documentID id.DocumentID) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.byID[documentID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return &rec, nil
}
