// Package service is the consent lifecycle engine: it creates consents,
// computes expiry, evaluates effective status lazily on every read, and
// enforces the revoke/expire state machine. Handlers stay thin; stores stay
// dumb.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"carevault/internal/audit"
	"carevault/internal/consent"
	"carevault/internal/platform/metrics"
	id "carevault/pkg/domain"
	dErrors "carevault/pkg/domain-errors"
	"carevault/pkg/platform/sentinel"
	"carevault/pkg/requestcontext"
)

// maxTokenAttempts bounds regeneration after a shareable-token uniqueness
// collision. Exhaustion is a storage fault, not a validation failure.
const maxTokenAttempts = 3

// Service orchestrates consent lifecycle operations. Every grant and revoke
// is paired with its audit entry inside one transactional boundary.
type Service struct {
	consents consent.Store
	auditLog audit.Store
	tx       TxRunner
	metrics  *metrics.Metrics
}

// New builds the lifecycle engine. Pass NoopTx for stores without real
// transactions (the in-memory pair).
func New(consents consent.Store, auditLog audit.Store, tx TxRunner, m *metrics.Metrics) *Service {
	if tx == nil {
		tx = NoopTx{}
	}
	return &Service{consents: consents, auditLog: auditLog, tx: tx, metrics: m}
}

// CreateParams carries owner input for a new consent. OwnerID comes from the
// authenticated session, never from the request body.
type CreateParams struct {
	OwnerID          id.UserID
	RecipientName    string
	RecipientRole    id.RecipientRole
	Scopes           []id.Scope
	DurationType     id.DurationType
	CustomExpiryDate *time.Time
	Purpose          string
}

func (p CreateParams) validate() error {
	if p.OwnerID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "owner is required")
	}
	if p.RecipientName == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "recipient name is required")
	}
	if !p.RecipientRole.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid recipient role")
	}
	if len(p.Scopes) == 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "scopes must not be empty")
	}
	for _, sc := range p.Scopes {
		if !sc.IsValid() {
			return dErrors.New(dErrors.CodeInvalidInput, "invalid scope: "+sc.String())
		}
	}
	if p.Purpose == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "purpose is required")
	}
	return nil
}

// Create validates the request, allocates a unique shareable token, persists
// the consent with an active status, and records the paired grant audit
// entry. Nothing is persisted when validation fails.
func (s *Service) Create(ctx context.Context, params CreateParams) (*consent.Consent, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	expiresAt, err := params.DurationType.ExpiryFrom(now, params.CustomExpiryDate)
	if err != nil {
		return nil, err
	}

	details, err := json.Marshal(audit.GrantDetails{
		Scopes:       scopeStrings(params.Scopes),
		DurationType: params.DurationType.String(),
	})
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode grant details")
	}

	// Each attempt runs in its own transaction: a token collision aborts the
	// whole write pair and we retry with a fresh token.
	for attempt := 0; attempt < maxTokenAttempts; attempt++ {
		token, err := consent.GenerateToken()
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate shareable token")
		}

		c := &consent.Consent{
			ID:             id.NewConsentID(),
			OwnerID:        params.OwnerID,
			RecipientName:  params.RecipientName,
			RecipientRole:  params.RecipientRole,
			Scopes:         params.Scopes,
			DurationType:   params.DurationType,
			Purpose:        params.Purpose,
			Status:         consent.StatusActive,
			ShareableToken: token,
			CreatedAt:      now,
			ExpiresAt:      expiresAt,
		}

		err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
			if err := s.consents.Create(txCtx, c); err != nil {
				return err
			}
			return s.auditLog.Append(txCtx, audit.Entry{
				ID:        uuid.New(),
				ConsentID: c.ID,
				Action:    audit.ActionGrant,
				ActorID:   params.OwnerID.String(),
				ActorType: audit.ActorUser,
				Details:   details,
				Timestamp: now,
			})
		})
		if errors.Is(err, sentinel.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create consent")
		}

		s.metrics.ConsentsGranted.Inc()
		return c, nil
	}

	return nil, dErrors.New(dErrors.CodeInternal, "could not allocate a unique shareable token")
}

// Get returns one consent with a fresh status. Ownership mismatch is
// Forbidden, not NotFound: the record exists and the attempt is auditable.
func (s *Service) Get(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) (*consent.Consent, error) {
	c, err := s.consents.FindByID(ctx, consentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "consent not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consent")
	}
	if c.OwnerID != ownerID {
		return nil, dErrors.New(dErrors.CodeForbidden, "consent belongs to another user")
	}
	return s.refreshStatus(ctx, c), nil
}

// GetByToken resolves a shareable token to its consent with a fresh status.
// Unknown tokens are NotFound; liveness is the caller's decision because the
// public gateway discloses why access ended while internal callers may not.
func (s *Service) GetByToken(ctx context.Context, token string) (*consent.Consent, error) {
	c, err := s.consents.FindByToken(ctx, token)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "unknown share link")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to resolve share link")
	}
	return s.refreshStatus(ctx, c), nil
}

// List returns the owner's consents newest-created first, each with a fresh
// status, optionally filtered by effective status.
func (s *Service) List(ctx context.Context, ownerID id.UserID, statusFilter *consent.Status) ([]*consent.Consent, error) {
	consents, err := s.consents.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consents")
	}
	filtered := make([]*consent.Consent, 0, len(consents))
	for _, c := range consents {
		c = s.refreshStatus(ctx, c)
		if statusFilter != nil && c.Status != *statusFilter {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered, nil
}

// Revoke transitions an active consent to revoked and records the paired
// audit entry. Revoking an already-terminal consent is a harmless no-op that
// returns the record unchanged; time-based expiry is never undone.
func (s *Service) Revoke(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) (*consent.Consent, error) {
	c, err := s.Get(ctx, ownerID, consentID)
	if err != nil {
		return nil, err
	}
	if c.Status.IsTerminal() {
		return c, nil
	}

	now := requestcontext.Now(ctx)
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.consents.Revoke(txCtx, consentID, now); err != nil {
			return err
		}
		return s.auditLog.Append(txCtx, audit.Entry{
			ID:        uuid.New(),
			ConsentID: consentID,
			Action:    audit.ActionRevoke,
			ActorID:   ownerID.String(),
			ActorType: audit.ActorUser,
			Details:   json.RawMessage(`{}`),
			Timestamp: now,
		})
	})
	if errors.Is(err, sentinel.ErrInvalidState) {
		// Lost the race to another revoke or to lazy expiry; both are
		// terminal, so return what the store settled on.
		return s.Get(ctx, ownerID, consentID)
	}
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to revoke consent")
	}

	c.Status = consent.StatusRevoked
	revokedAt := now
	c.RevokedAt = &revokedAt
	s.metrics.ConsentsRevoked.Inc()
	return c, nil
}

// AuditTrail returns all audit entries for one of the owner's consents,
// newest first.
func (s *Service) AuditTrail(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) ([]audit.Entry, error) {
	if _, err := s.Get(ctx, ownerID, consentID); err != nil {
		return nil, err
	}
	entries, err := s.auditLog.ListByConsent(ctx, consentID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load audit trail")
	}
	return entries, nil
}

// refreshStatus applies the lazy active->expired transition. Correctness
// comes from computing the status fresh; the persistence write is an
// optimization and stays off the critical path.
func (s *Service) refreshStatus(ctx context.Context, c *consent.Consent) *consent.Consent {
	now := requestcontext.Now(ctx)
	effective := c.EffectiveStatus(now)
	if effective == consent.StatusExpired && c.Status == consent.StatusActive {
		c.Status = consent.StatusExpired
		if err := s.consents.MarkExpired(ctx, c.ID, now); err == nil {
			s.metrics.ConsentsExpired.Inc()
		}
	}
	return c
}

func scopeStrings(scopes []id.Scope) []string {
	out := make([]string, len(scopes))
	for i, sc := range scopes {
		out[i] = sc.String()
	}
	return out
}
