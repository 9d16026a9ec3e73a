//go:build integration

package consent_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"carevault/internal/consent"
	id "carevault/pkg/domain"
	"carevault/pkg/platform/sentinel"
	"carevault/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *consent.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = consent.NewPostgresStore(s.postgres.DB)
}

func (s *PostgresStoreSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func newTestConsent(token string, expiresAt time.Time) *consent.Consent {
	return &consent.Consent{
		ID:             id.NewConsentID(),
		OwnerID:        id.NewUserID(),
		RecipientName:  "Dr. Osei",
		RecipientRole:  id.RoleDoctor,
		Scopes:         []id.Scope{id.ScopeDocuments, id.ScopeEmergency},
		DurationType:   id.Duration24h,
		Purpose:        "follow-up visit",
		Status:         consent.StatusActive,
		ShareableToken: token,
		CreatedAt:      expiresAt.Add(-24 * time.Hour),
		ExpiresAt:      expiresAt,
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	c := newTestConsent("tok-rt", time.Now().Add(time.Hour).UTC())
	s.Require().NoError(s.store.Create(ctx, c))

	byID, err := s.store.FindByID(ctx, c.ID)
	s.Require().NoError(err)
	s.Equal(c.ShareableToken, byID.ShareableToken)
	s.Equal([]id.Scope{id.ScopeDocuments, id.ScopeEmergency}, byID.Scopes)
	s.Equal(consent.StatusActive, byID.Status)
	s.Nil(byID.RevokedAt)

	byToken, err := s.store.FindByToken(ctx, "tok-rt")
	s.Require().NoError(err)
	s.Equal(c.ID, byToken.ID)
}

func (s *PostgresStoreSuite) TestTokenUniqueViolation() {
	ctx := context.Background()
	s.Require().NoError(s.store.Create(ctx, newTestConsent("tok-dup", time.Now().Add(time.Hour))))

	err := s.store.Create(ctx, newTestConsent("tok-dup", time.Now().Add(time.Hour)))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestMarkExpiredCAS() {
	ctx := context.Background()

	s.Run("past deadline transitions once", func() {
		c := newTestConsent("tok-exp", time.Now().Add(-time.Minute))
		s.Require().NoError(s.store.Create(ctx, c))

		s.Require().NoError(s.store.MarkExpired(ctx, c.ID, time.Now()))
		got, err := s.store.FindByID(ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(consent.StatusExpired, got.Status)
	})

	s.Run("before deadline is untouched", func() {
		c := newTestConsent("tok-live", time.Now().Add(time.Hour))
		s.Require().NoError(s.store.Create(ctx, c))

		s.Require().NoError(s.store.MarkExpired(ctx, c.ID, time.Now()))
		got, err := s.store.FindByID(ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(consent.StatusActive, got.Status)
	})

	s.Run("never overwrites revoked", func() {
		c := newTestConsent("tok-rvk", time.Now().Add(-time.Minute))
		s.Require().NoError(s.store.Create(ctx, c))
		s.Require().NoError(s.store.Revoke(ctx, c.ID, time.Now()))

		s.Require().NoError(s.store.MarkExpired(ctx, c.ID, time.Now()))
		got, err := s.store.FindByID(ctx, c.ID)
		s.Require().NoError(err)
		s.Equal(consent.StatusRevoked, got.Status)
	})
}

func (s *PostgresStoreSuite) TestConcurrentRevoke() {
	ctx := context.Background()
	c := newTestConsent("tok-race", time.Now().Add(time.Hour))
	s.Require().NoError(s.store.Create(ctx, c))

	const goroutines = 20
	var wg sync.WaitGroup
	var wins, losses atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			switch err := s.store.Revoke(ctx, c.ID, time.Now()); err {
			case nil:
				wins.Add(1)
			case sentinel.ErrInvalidState:
				losses.Add(1)
			default:
				s.Failf("unexpected revoke error", "%v", err)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), wins.Load())
	s.Equal(int32(goroutines-1), losses.Load())
}

func (s *PostgresStoreSuite) TestRevokeMissing() {
	err := s.store.Revoke(context.Background(), id.NewConsentID(), time.Now())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestListByOwnerOrdering() {
	ctx := context.Background()
	owner := id.NewUserID()
	base := time.Now().UTC()

	for i, token := range []string{"tok-1", "tok-2", "tok-3"} {
		c := newTestConsent(token, base.Add(time.Hour))
		c.OwnerID = owner
		c.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		s.Require().NoError(s.store.Create(ctx, c))
	}

	consents, err := s.store.ListByOwner(ctx, owner)
	s.Require().NoError(err)
	s.Require().Len(consents, 3)
	s.Equal("tok-3", consents[0].ShareableToken)
	s.Equal("tok-1", consents[2].ShareableToken)
}
