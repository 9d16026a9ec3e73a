package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "carevault/pkg/domain"
)

func TestInMemoryStore_NewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	consentID := id.NewConsentID()
	base := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	actions := []Action{ActionGrant, ActionAccess, ActionRevoke}
	for i, action := range actions {
		require.NoError(t, store.Append(ctx, Entry{
			ID:        uuid.New(),
			ConsentID: consentID,
			Action:    action,
			ActorID:   "actor",
			ActorType: ActorUser,
			Details:   json.RawMessage(`{}`),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	entries, err := store.ListByConsent(ctx, consentID)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, ActionRevoke, entries[0].Action)
	assert.Equal(t, ActionAccess, entries[1].Action)
	assert.Equal(t, ActionGrant, entries[2].Action)
}

func TestInMemoryStore_SameInstantKeepsAppendOrder(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	consentID := id.NewConsentID()
	ts := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	for _, action := range []Action{ActionGrant, ActionAccess} {
		require.NoError(t, store.Append(ctx, Entry{
			ID:        uuid.New(),
			ConsentID: consentID,
			Action:    action,
			ActorID:   "actor",
			ActorType: ActorUser,
			Timestamp: ts,
		}))
	}

	entries, err := store.ListByConsent(ctx, consentID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionGrant, entries[0].Action)
}

func TestInMemoryStore_IsolatesConsents(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	first := id.NewConsentID()
	second := id.NewConsentID()

	require.NoError(t, store.Append(ctx, Entry{ID: uuid.New(), ConsentID: first, Action: ActionGrant, Timestamp: time.Now()}))

	entries, err := store.ListByConsent(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
