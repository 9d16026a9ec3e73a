// Package ratelimit bounds request rates on the public share path. Token
// guessing is the only credential attack against shareable links, so the
// limiter keys on client IP in front of the share routes.
package ratelimit

import (
	"context"
	"time"
)

// Result reports a limiter decision.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Store counts requests per key inside a window. Implementations: in-memory
// sliding window (single node), Redis fixed window (distributed).
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// Limiter applies one limit/window pair over a Store.
type Limiter struct {
	store  Store
	limit  int
	window time.Duration
}

// New builds a limiter allowing limit requests per window for each key.
func New(store Store, limit int, window time.Duration) *Limiter {
	return &Limiter{store: store, limit: limit, window: window}
}

// Allow records one request for key and reports whether it fits the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (*Result, error) {
	return l.store.Allow(ctx, key, l.limit, l.window)
}
