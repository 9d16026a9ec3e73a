package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	ConsentsGranted    prometheus.Counter
	ConsentsRevoked    prometheus.Counter
	ConsentsExpired    prometheus.Counter
	ShareAccesses      *prometheus.CounterVec
	ScopeDenials       prometheus.Counter
	ShareRateLimited   prometheus.Counter
	AuditWriteFailures prometheus.Counter
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith registers metrics against a specific registerer. Tests pass a fresh
// registry to avoid duplicate-registration panics across suites.
func NewWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ConsentsGranted: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_consents_granted_total",
			Help: "Total number of consents created.",
		}),
		ConsentsRevoked: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_consents_revoked_total",
			Help: "Total number of consents revoked by their owner.",
		}),
		ConsentsExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_consents_expired_total",
			Help: "Total number of lazy active-to-expired transitions persisted.",
		}),
		ShareAccesses: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "carevault_share_accesses_total",
			Help: "Public share-path accesses by outcome.",
		}, []string{"outcome"}),
		ScopeDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_scope_denials_total",
			Help: "Document requests denied by the scope filter.",
		}),
		ShareRateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_share_rate_limited_total",
			Help: "Public share-path requests rejected by the rate limiter.",
		}),
		AuditWriteFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "carevault_audit_write_failures_total",
			Help: "Audit log append failures (accesses are failed closed).",
		}),
	}
}

// Share access outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeGone     = "gone"
	OutcomeNotFound = "not_found"
	OutcomeDenied   = "denied"
	OutcomeError    = "error"
)
