package testutil

import (
	"net/http"
	"time"

	id "carevault/pkg/domain"
	"carevault/pkg/requestcontext"
)

// WithUserID adds an owner ID to the request context, simulating what the
// auth middleware does for authenticated requests. Invalid UUIDs are silently
// ignored so tests can exercise the missing-identity path.
func WithUserID(req *http.Request, userID string) *http.Request {
	parsed, err := id.ParseUserID(userID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithUserID(req.Context(), parsed))
}

// WithClientMetadata adds a client IP and User-Agent to the request context,
// simulating the metadata middleware.
func WithClientMetadata(req *http.Request, clientIP, userAgent string) *http.Request {
	return req.WithContext(requestcontext.WithClientMetadata(req.Context(), clientIP, userAgent))
}

// WithTime pins the request-scoped clock, simulating the request-time
// middleware with a controllable instant.
func WithTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}
