package ratelimit

import (
	"log/slog"
	"net/http"
	"strconv"

	"carevault/internal/platform/metrics"
	"carevault/pkg/requestcontext"
)

// Middleware rejects over-limit requests with 429. A limiter store outage
// fails open: losing brute-force protection briefly beats taking every share
// link offline with it.
func Middleware(limiter *Limiter, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			key := requestcontext.ClientIP(ctx)
			if key == "" {
				key = "unknown"
			}

			result, err := limiter.Allow(ctx, key)
			if err != nil {
				logger.ErrorContext(ctx, "rate limiter unavailable, failing open",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				next.ServeHTTP(w, r)
				return
			}

			if !result.Allowed {
				m.ShareRateLimited.Inc()
				logger.WarnContext(ctx, "share request rate limited",
					"client_ip", key,
					"request_id", requestcontext.RequestID(ctx),
				)
				w.Header().Set("Retry-After", strconv.Itoa(int(result.ResetAt.Sub(requestcontext.Now(ctx)).Seconds())+1))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				_, _ = w.Write([]byte(`{"error":"rate_limited","error_description":"Too many requests"}`))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
