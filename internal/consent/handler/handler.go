// Package handler exposes the owner-facing consent management API. Every
// route requires an authenticated session; the public share surface lives in
// the share package.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carevault/internal/audit"
	"carevault/internal/consent"
	"carevault/internal/consent/service"
	"carevault/internal/platform/middleware"
	"carevault/internal/platform/qr"
	id "carevault/pkg/domain"
	dErrors "carevault/pkg/domain-errors"
	"carevault/pkg/platform/httputil"
	"carevault/pkg/requestcontext"
)

// Service defines the consent lifecycle operations the handler depends on.
type Service interface {
	Create(ctx context.Context, params service.CreateParams) (*consent.Consent, error)
	Get(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) (*consent.Consent, error)
	List(ctx context.Context, ownerID id.UserID, statusFilter *consent.Status) ([]*consent.Consent, error)
	Revoke(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) (*consent.Consent, error)
	AuditTrail(ctx context.Context, ownerID id.UserID, consentID id.ConsentID) ([]audit.Entry, error)
}

// Handler handles the owner consent management endpoints.
type Handler struct {
	logger       *slog.Logger
	consents     Service
	qrEncoder    *qr.Encoder
	baseURL      string
	jwtValidator middleware.JWTValidator
}

// New creates a new consent Handler. baseURL is the public origin used to
// build shareable links.
func New(
	consents Service,
	qrEncoder *qr.Encoder,
	baseURL string,
	logger *slog.Logger,
	jwtValidator middleware.JWTValidator) *Handler {
	return &Handler{
		logger:       logger,
		consents:     consents,
		qrEncoder:    qrEncoder,
		baseURL:      baseURL,
		jwtValidator: jwtValidator,
	}
}

// Register registers the consent routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	consentRouter := chi.NewRouter()
	consentRouter.Use(middleware.Recovery(h.logger))
	consentRouter.Use(middleware.RequestID)
	consentRouter.Use(middleware.RequestTime)
	consentRouter.Use(middleware.ClientMetadata)
	consentRouter.Use(middleware.Logger(h.logger))
	consentRouter.Use(middleware.ContentTypeJSON)
	consentRouter.Use(middleware.RequireAuth(h.jwtValidator, h.logger))
	consentRouter.Post("/", h.handleCreateConsent)
	consentRouter.Get("/", h.handleListConsents)
	consentRouter.Get("/{consentID}", h.handleGetConsent)
	consentRouter.Delete("/{consentID}", h.handleRevokeConsent)
	consentRouter.Get("/{consentID}/audit", h.handleAuditTrail)
	consentRouter.Get("/{consentID}/qr", h.handleQRCode)

	r.Mount("/consents", consentRouter)
}

// handleCreateConsent grants a new consent for the authenticated owner.
func (h *Handler) handleCreateConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := requestcontext.UserID(ctx)

	var req createConsentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid create consent request",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid request body"))
		return
	}

	params, err := req.toParams(ownerID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.consents.Create(ctx, params)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to create consent")
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, toConsentResponse(c))
}

// handleListConsents returns the owner's consents, optionally filtered by
// effective status (?status=active|expired|revoked).
func (h *Handler) handleListConsents(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ownerID := requestcontext.UserID(ctx)

	var statusFilter *consent.Status
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, ok := consent.ParseStatus(raw)
		if !ok {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid status filter: "+raw))
			return
		}
		statusFilter = &status
	}

	consents, err := h.consents.List(ctx, ownerID, statusFilter)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to list consents")
		return
	}

	out := make([]consentResponse, len(consents))
	for i, c := range consents {
		out[i] = toConsentResponse(c)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"consents": out})
}

func (h *Handler) handleGetConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consentID, err := id.ParseConsentID(chi.URLParam(r, "consentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.consents.Get(ctx, requestcontext.UserID(ctx), consentID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load consent")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toConsentResponse(c))
}

// handleRevokeConsent revokes the consent. Revoking an already-terminal
// consent answers 200 with the unchanged record.
func (h *Handler) handleRevokeConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consentID, err := id.ParseConsentID(chi.URLParam(r, "consentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.consents.Revoke(ctx, requestcontext.UserID(ctx), consentID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to revoke consent")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, toConsentResponse(c))
}

func (h *Handler) handleAuditTrail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consentID, err := id.ParseConsentID(chi.URLParam(r, "consentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.consents.AuditTrail(ctx, requestcontext.UserID(ctx), consentID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load audit trail")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"entries": toAuditResponse(entries)})
}

// handleQRCode renders the shareable link as a QR code data URL so the owner
// can hand it over face to face.
func (h *Handler) handleQRCode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consentID, err := id.ParseConsentID(chi.URLParam(r, "consentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	c, err := h.consents.Get(ctx, requestcontext.UserID(ctx), consentID)
	if err != nil {
		h.writeServiceError(ctx, w, err, "failed to load consent")
		return
	}

	shareURL := h.baseURL + "/share/" + c.ShareableToken
	dataURL, err := h.qrEncoder.DataURL(shareURL)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to encode QR code",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "failed to encode QR code"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, qrResponse{ShareableURL: shareURL, QRCode: dataURL})
}

// writeServiceError logs unexpected failures and passes coded errors through
// untouched so the envelope reflects the domain code.
func (h *Handler) writeServiceError(ctx context.Context, w http.ResponseWriter, err error, msg string) {
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg,
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
