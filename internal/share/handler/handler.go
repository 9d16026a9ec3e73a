// Package handler exposes the public share endpoints. Authentication is the
// shareable token in the path; there is no session. Responses are sanitized
// projections and dead links answer 410 with the reason.
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"carevault/internal/document"
	"carevault/internal/platform/middleware"
	"carevault/internal/share"
	id "carevault/pkg/domain"
	dErrors "carevault/pkg/domain-errors"
	"carevault/pkg/platform/httputil"
	"carevault/pkg/requestcontext"
)

// Service defines the share gateway operations the handler depends on.
type Service interface {
	AccessConsent(ctx context.Context, token string) (*share.ConsentSummary, error)
	AccessDocuments(ctx context.Context, token string) ([]document.Summary, error)
	AccessDocumentFile(ctx context.Context, token string, documentID id.DocumentID) (*share.FileGrant, error)
}

// Handler handles the anonymous share endpoints.
type Handler struct {
	logger    *slog.Logger
	shares    Service
	rateLimit func(http.Handler) http.Handler
}

// New creates a new share Handler. rateLimit guards the whole share surface;
// pass nil to serve unthrottled (tests).
func New(shares Service, rateLimit func(http.Handler) http.Handler, logger *slog.Logger) *Handler {
	return &Handler{
		logger:    logger,
		shares:    shares,
		rateLimit: rateLimit,
	}
}

// Register registers the share routes with the chi router.
func (h *Handler) Register(r chi.Router) {
	shareRouter := chi.NewRouter()
	shareRouter.Use(middleware.Recovery(h.logger))
	shareRouter.Use(middleware.RequestID)
	shareRouter.Use(middleware.RequestTime)
	shareRouter.Use(middleware.ClientMetadata)
	shareRouter.Use(middleware.Logger(h.logger))
	if h.rateLimit != nil {
		shareRouter.Use(h.rateLimit)
	}
	shareRouter.Get("/{token}", h.handleAccessConsent)
	shareRouter.Get("/{token}/documents", h.handleAccessDocuments)
	shareRouter.Get("/{token}/documents/{documentID}/file", h.handleAccessDocumentFile)

	r.Mount("/share", shareRouter)
}

func (h *Handler) handleAccessConsent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summary, err := h.shares.AccessConsent(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeShareError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) handleAccessDocuments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	summaries, err := h.shares.AccessDocuments(ctx, chi.URLParam(r, "token"))
	if err != nil {
		h.writeShareError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDocumentsResponse(summaries))
}

func (h *Handler) handleAccessDocumentFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	grant, err := h.shares.AccessDocumentFile(ctx, chi.URLParam(r, "token"), documentID)
	if err != nil {
		h.writeShareError(ctx, w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toFileResponse(grant))
}

// writeShareError maps a dead link to 410 with its reason and logs failures
// worth an operator's attention. Everything else follows the coded-error
// envelope.
func (h *Handler) writeShareError(ctx context.Context, w http.ResponseWriter, err error) {
	var gone *share.GoneError
	if errors.As(err, &gone) {
		httputil.WriteJSON(w, http.StatusGone, goneResponse{
			Error:     "link_" + string(gone.Status),
			Status:    string(gone.Status),
			Timestamp: gone.Timestamp,
		})
		return
	}

	switch dErrors.CodeOf(err) {
	case dErrors.CodeInternal, dErrors.CodeUnavailable:
		h.logger.ErrorContext(ctx, "share access failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err.Error(),
		)
	}
	httputil.WriteError(w, err)
}
