package share

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"

	"carevault/internal/audit"
	"carevault/internal/consent"
	"carevault/internal/document"
	"carevault/internal/platform/device"
	"carevault/internal/platform/metrics"
	id "carevault/pkg/domain"
	dErrors "carevault/pkg/domain-errors"
	"carevault/pkg/platform/sentinel"
	"carevault/pkg/requestcontext"
)

// ConsentResolver is the slice of the lifecycle engine the gateway needs:
// token resolution with lazily refreshed status.
type ConsentResolver interface {
	GetByToken(ctx context.Context, token string) (*consent.Consent, error)
}

// Service serves the public share path. Each sub-resource fetch (consent
// metadata, document list, individual file) is an independently reachable
// disclosure and gets its own access audit entry. Audit writes fail closed:
// an access that cannot be recorded is refused.
type Service struct {
	consents  ConsentResolver
	documents document.Store
	files     document.SignedURLIssuer
	auditLog  audit.Store
	metrics   *metrics.Metrics
}

func New(consents ConsentResolver, documents document.Store, files document.SignedURLIssuer, auditLog audit.Store, m *metrics.Metrics) *Service {
	return &Service{consents: consents, documents: documents, files: files, auditLog: auditLog, metrics: m}
}

// AccessConsent resolves a token into a sanitized consent view. Expired and
// revoked links answer with GoneError so the grantee learns why access ended.
func (s *Service) AccessConsent(ctx context.Context, token string) (*ConsentSummary, error) {
	c, err := s.resolveLive(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.recordAccess(ctx, c, "consent", nil); err != nil {
		return nil, err
	}
	s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeOK).Inc()
	return summarize(c), nil
}

// AccessDocuments lists the owner's documents as sanitized summaries. A live
// link whose scopes do not cover documents gets an empty list, not an error:
// a grantee must not be able to probe scope configuration.
func (s *Service) AccessDocuments(ctx context.Context, token string) ([]document.Summary, error) {
	c, err := s.resolveLive(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := s.recordAccess(ctx, c, "documents", nil); err != nil {
		return nil, err
	}

	if !c.Permits(id.ScopeDocuments) {
		s.metrics.ScopeDenials.Inc()
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeOK).Inc()
		return []document.Summary{}, nil
	}

	records, err := s.documents.ListByOwner(ctx, c.OwnerID)
	if err != nil {
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list documents")
	}
	summaries := make([]document.Summary, 0, len(records))
	for _, rec := range records {
		summaries = append(summaries, document.Summarize(rec))
	}
	s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeOK).Inc()
	return summaries, nil
}

// AccessDocumentFile exchanges a document reference for a short-lived
// download locator. The document must belong to the same owner as the
// consent: a mismatch is Forbidden, not NotFound, to keep cross-tenant id
// guessing distinguishable in tests even when HTTP collapses the two.
func (s *Service) AccessDocumentFile(ctx context.Context, token string, documentID id.DocumentID) (*FileGrant, error) {
	c, err := s.resolveLive(ctx, token)
	if err != nil {
		return nil, err
	}

	if !c.Permits(id.ScopeDocuments) {
		s.metrics.ScopeDenials.Inc()
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeDenied).Inc()
		return nil, dErrors.New(dErrors.CodeForbidden, "share link does not cover documents")
	}

	rec, err := s.documents.FindByID(ctx, documentID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeNotFound).Inc()
			return nil, dErrors.New(dErrors.CodeNotFound, "document not found")
		}
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load document")
	}
	if rec.OwnerID != c.OwnerID {
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeDenied).Inc()
		return nil, dErrors.New(dErrors.CodeForbidden, "document does not belong to this share")
	}

	if err := s.recordAccess(ctx, c, "document_file", map[string]string{"document_id": documentID.String()}); err != nil {
		return nil, err
	}

	locator, err := s.files.Issue(ctx, rec.StoragePath)
	if err != nil {
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeError).Inc()
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to issue download link")
	}
	s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeOK).Inc()
	return &FileGrant{Locator: *locator}, nil
}

// resolveLive maps a token to a live consent or the appropriate refusal.
func (s *Service) resolveLive(ctx context.Context, token string) (*consent.Consent, error) {
	c, err := s.consents.GetByToken(ctx, token)
	if err != nil {
		if dErrors.Is(err, dErrors.CodeNotFound) {
			s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeNotFound).Inc()
		} else {
			s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeError).Inc()
		}
		return nil, err
	}
	if c.Status.IsTerminal() {
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeGone).Inc()
		return nil, goneFor(c)
	}
	return c, nil
}

// recordAccess appends the access audit entry. ActorID is the client IP, the
// best identity an anonymous grantee has. A failed append refuses the access:
// an unrecorded disclosure would be invisible to the owner.
func (s *Service) recordAccess(ctx context.Context, c *consent.Consent, resource string, extra map[string]string) error {
	userAgent := requestcontext.UserAgent(ctx)
	payload := map[string]string{
		"resource":   resource,
		"user_agent": userAgent,
		"device":     device.ParseUserAgent(userAgent),
	}
	for k, v := range extra {
		payload[k] = v
	}
	details, err := json.Marshal(payload)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode access details")
	}

	actorID := requestcontext.ClientIP(ctx)
	if actorID == "" {
		actorID = "unknown"
	}
	entry := audit.Entry{
		ID:        uuid.New(),
		ConsentID: c.ID,
		Action:    audit.ActionAccess,
		ActorID:   actorID,
		ActorType: audit.ActorRecipient,
		Details:   details,
		Timestamp: requestcontext.Now(ctx),
	}
	if err := s.auditLog.Append(ctx, entry); err != nil {
		s.metrics.AuditWriteFailures.Inc()
		s.metrics.ShareAccesses.WithLabelValues(metrics.OutcomeError).Inc()
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "access could not be recorded")
	}
	return nil
}
