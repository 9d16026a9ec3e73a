//go:build integration

package audit_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/suite"

	"carevault/internal/audit"
	"carevault/internal/consent"
	id "carevault/pkg/domain"
	txcontext "carevault/pkg/platform/tx"
	"carevault/pkg/testutil/containers"
)

type AuditPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *audit.PostgresStore
	consents *consent.PostgresStore
}

func TestAuditPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(AuditPostgresSuite))
}

func (s *AuditPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	s.store = audit.NewPostgresStore(s.postgres.DB)
	s.consents = consent.NewPostgresStore(s.postgres.DB)
}

func (s *AuditPostgresSuite) TearDownSuite() {
	_ = s.postgres.DB.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *AuditPostgresSuite) SetupTest() {
	s.Require().NoError(s.postgres.Truncate(context.Background()))
}

func (s *AuditPostgresSuite) seedConsent(token string) *consent.Consent {
	c := &consent.Consent{
		ID:             id.NewConsentID(),
		OwnerID:        id.NewUserID(),
		RecipientName:  "Dr. Osei",
		RecipientRole:  id.RoleDoctor,
		Scopes:         []id.Scope{id.ScopeDocuments},
		DurationType:   id.Duration24h,
		Purpose:        "follow-up visit",
		Status:         consent.StatusActive,
		ShareableToken: token,
		CreatedAt:      time.Now().UTC(),
		ExpiresAt:      time.Now().Add(24 * time.Hour).UTC(),
	}
	s.Require().NoError(s.consents.Create(context.Background(), c))
	return c
}

func (s *AuditPostgresSuite) entry(consentID id.ConsentID, action audit.Action, ts time.Time) audit.Entry {
	return audit.Entry{
		ID:        uuid.New(),
		ConsentID: consentID,
		Action:    action,
		ActorID:   "203.0.113.9",
		ActorType: audit.ActorRecipient,
		Details:   json.RawMessage(`{"resource":"consent"}`),
		Timestamp: ts,
	}
}

func (s *AuditPostgresSuite) TestAppendAndListNewestFirst() {
	ctx := context.Background()
	c := s.seedConsent("tok-audit")
	base := time.Now().UTC()

	s.Require().NoError(s.store.Append(ctx, s.entry(c.ID, audit.ActionGrant, base)))
	s.Require().NoError(s.store.Append(ctx, s.entry(c.ID, audit.ActionAccess, base.Add(time.Minute))))

	entries, err := s.store.ListByConsent(ctx, c.ID)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal(audit.ActionAccess, entries[0].Action)
	s.Equal(audit.ActionGrant, entries[1].Action)
	s.JSONEq(`{"resource":"consent"}`, string(entries[0].Details))
}

func (s *AuditPostgresSuite) TestAppendJoinsAmbientTransaction() {
	ctx := context.Background()
	c := s.seedConsent("tok-tx")

	tx, err := s.postgres.DB.BeginTx(ctx, nil)
	s.Require().NoError(err)

	txCtx := txcontext.WithTx(ctx, tx)
	s.Require().NoError(s.store.Append(txCtx, s.entry(c.ID, audit.ActionAccess, time.Now().UTC())))
	s.Require().NoError(tx.Rollback())

	// The rolled-back entry must not be visible.
	entries, err := s.store.ListByConsent(ctx, c.ID)
	s.Require().NoError(err)
	s.Empty(entries)
}
