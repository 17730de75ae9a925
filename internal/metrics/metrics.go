// Package metrics exposes prometheus counters for auth outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters the auth service records into.
type Metrics struct {
	ChallengesIssued prometheus.Counter
	RateLimited      prometheus.Counter
	Logins           *prometheus.CounterVec
	Verifications    *prometheus.CounterVec
	Deliveries       *prometheus.CounterVec
}

// New registers the warden counters on the given registerer.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		ChallengesIssued: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_challenges_issued_total",
			Help: "One-time-code challenges issued.",
		}),
		RateLimited: factory.NewCounter(prometheus.CounterOpts{
			Name: "warden_rate_limited_total",
			Help: "Challenge issuances rejected by the rate limiter.",
		}),
		Logins: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_logins_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		Verifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_verifications_total",
			Help: "Code verification attempts by outcome.",
		}, []string{"outcome"}),
		Deliveries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "warden_deliveries_total",
			Help: "Code deliveries by channel.",
		}, []string{"channel"}),
	}
}
