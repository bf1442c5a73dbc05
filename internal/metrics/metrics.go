// Package metrics defines the Prometheus metrics for account registration.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registration results.
const (
	ResultSuccess       = "success"
	ResultInvalidInput  = "invalid_input"
	ResultWeakPassword  = "weak_password"
	ResultUsernameTaken = "username_taken"
	ResultError         = "error"
)

type Metrics struct {
	Registrations    *prometheus.CounterVec
	ReferralsApplied prometheus.Counter
	ReferralFailures prometheus.Counter
}

// New creates and registers the registration metrics.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gemrealm_registrations_total",
				Help: "Total number of registration attempts by result",
			},
			[]string{"result"},
		),
		ReferralsApplied: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gemrealm_referrals_applied_total",
			Help: "Total number of referral bonuses credited",
		}),
		ReferralFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gemrealm_referral_failures_total",
			Help: "Total number of referrals that could not be settled",
		}),
	}

	reg.MustRegister(m.Registrations, m.ReferralsApplied, m.ReferralFailures)
	return m
}

// ObserveRegistration counts one registration attempt. Safe on a nil receiver.
func (m *Metrics) ObserveRegistration(result string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) ObserveReferral(applied bool) {
	if m == nil {
		return
	}
	if applied {
		m.ReferralsApplied.Inc()
		return
	}
	m.ReferralFailures.Inc()
}
