package consent

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
)

func newStoredConsent(token string, expiresAt time.Time) *Consent {
	return &Consent{
		ID:             id.NewConsentID(),
		OwnerID:        id.NewUserID(),
		RecipientName:  "Dr. Osei",
		RecipientRole:  id.RoleDoctor,
		Scopes:         []id.Scope{id.ScopeDocuments},
		DurationType:   id.Duration24h,
		Purpose:        "follow-up visit",
		Status:         StatusActive,
		ShareableToken: token,
		CreatedAt:      expiresAt.Add(-24 * time.Hour),
		ExpiresAt:      expiresAt,
	}
}

func TestInMemoryStore_TokenUniqueness(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	expiry := time.Now().Add(time.Hour)

	require.NoError(t, store.Create(ctx, newStoredConsent("tok-1", expiry)))

	err := store.Create(ctx, newStoredConsent("tok-1", expiry))
	assert.ErrorIs(t, err, sentinel.ErrConflict)
}

func TestInMemoryStore_FindByToken(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	c := newStoredConsent("tok-find", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, c))

	found, err := store.FindByToken(ctx, "tok-find")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)

	_, err = store.FindByToken(ctx, "tok-missing")
	assert.ErrorIs(t, err, sentinel.ErrNotFound)
}

func TestInMemoryStore_MarkExpired(t *testing.T) {
	ctx := context.Background()

	t.Run("active past deadline transitions", func(t *testing.T) {
		store := NewInMemoryStore()
		expiry := time.Now().Add(-time.Minute)
		c := newStoredConsent("tok-a", expiry)
		require.NoError(t, store.Create(ctx, c))

		require.NoError(t, store.MarkExpired(ctx, c.ID, time.Now()))

		got, err := store.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, got.Status)
	})

	t.Run("active before deadline is untouched", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-b", time.Now().Add(time.Hour))
		require.NoError(t, store.Create(ctx, c))

		require.NoError(t, store.MarkExpired(ctx, c.ID, time.Now()))

		got, err := store.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusActive, got.Status)
	})

	t.Run("revoked is never overwritten", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-c", time.Now().Add(-time.Minute))
		require.NoError(t, store.Create(ctx, c))
		require.NoError(t, store.Revoke(ctx, c.ID, time.Now()))

		require.NoError(t, store.MarkExpired(ctx, c.ID, time.Now()))

		got, err := store.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRevoked, got.Status)
	})

	t.Run("idempotent under concurrent readers", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-d", time.Now().Add(-time.Minute))
		require.NoError(t, store.Create(ctx, c))

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, store.MarkExpired(ctx, c.ID, time.Now()))
			}()
		}
		wg.Wait()

		got, err := store.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusExpired, got.Status)
	})
}

func TestInMemoryStore_Revoke(t *testing.T) {
	ctx := context.Background()

	t.Run("active transitions to revoked", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-r1", time.Now().Add(time.Hour))
		require.NoError(t, store.Create(ctx, c))

		revokedAt := time.Now()
		require.NoError(t, store.Revoke(ctx, c.ID, revokedAt))

		got, err := store.FindByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusRevoked, got.Status)
		require.NotNil(t, got.RevokedAt)
		assert.WithinDuration(t, revokedAt, *got.RevokedAt, time.Second)
	})

	t.Run("second revoke reports invalid state", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-r2", time.Now().Add(time.Hour))
		require.NoError(t, store.Create(ctx, c))
		require.NoError(t, store.Revoke(ctx, c.ID, time.Now()))

		err := store.Revoke(ctx, c.ID, time.Now())
		assert.ErrorIs(t, err, sentinel.ErrInvalidState)
	})

	t.Run("missing consent reports not found", func(t *testing.T) {
		store := NewInMemoryStore()
		err := store.Revoke(ctx, id.NewConsentID(), time.Now())
		assert.ErrorIs(t, err, sentinel.ErrNotFound)
	})

	t.Run("exactly one concurrent revoke wins", func(t *testing.T) {
		store := NewInMemoryStore()
		c := newStoredConsent("tok-r3", time.Now().Add(time.Hour))
		require.NoError(t, store.Create(ctx, c))

		var wg sync.WaitGroup
		results := make(chan error, 8)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- store.Revoke(ctx, c.ID, time.Now())
			}()
		}
		wg.Wait()
		close(results)

		var wins, losses int
		for err := range results {
			switch {
			case err == nil:
				wins++
			default:
				assert.ErrorIs(t, err, sentinel.ErrInvalidState)
				losses++
			}
		}
		assert.Equal(t, 1, wins)
		assert.Equal(t, 7, losses)
	})
}

func TestInMemoryStore_ListByOwner(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	owner := id.NewUserID()
	base := time.Now()

	for i, token := range []string{"tok-l1", "tok-l2", "tok-l3"} {
		c := newStoredConsent(token, base.Add(time.Hour))
		c.OwnerID = owner
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, store.Create(ctx, c))
	}
	other := newStoredConsent("tok-other", base.Add(time.Hour))
	require.NoError(t, store.Create(ctx, other))

	consents, err := store.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, consents, 3)
	assert.Equal(t, "tok-l3", consents[0].ShareableToken)
	assert.Equal(t, "tok-l1", consents[2].ShareableToken)
}

func TestInMemoryStore_ClonesOnRead(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	c := newStoredConsent("tok-clone", time.Now().Add(time.Hour))
	require.NoError(t, store.Create(ctx, c))

	got, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	got.Status = StatusRevoked

	again, err := store.FindByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusActive, again.Status)
}
