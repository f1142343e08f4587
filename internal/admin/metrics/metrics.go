// Package metrics defines the Prometheus metrics of the admin service.
//
// Metric naming follows Prometheus conventions:
//   - blogadmin_ prefix for all custom metrics
//   - _total suffix for counters
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Security decisions recorded by the filter chain.
const (
	DecisionPermit          = "permit"
	DecisionAuthenticated   = "authenticated"
	DecisionUnauthenticated = "unauthenticated"
	DecisionForbidden       = "forbidden"
)

// Login outcomes.
const (
	LoginSuccess         = "success"
	LoginBadCredentials  = "bad_credentials"
	LoginAccountDisabled = "account_disabled"
	LoginOTPRequired     = "otp_required"
	LoginInvalidOTP      = "invalid_otp"
	LoginError           = "error"
)

// Metrics holds the collectors of one service instance. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	// SecurityDecisions counts requests by the outcome of the rule set.
	SecurityDecisions *prometheus.CounterVec

	// LoginAttempts counts POST /login calls by result.
	LoginAttempts *prometheus.CounterVec

	registry *prometheus.Registry
}

// New creates the collectors on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		SecurityDecisions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blogadmin_security_decisions_total",
				Help: "Total number of requests by security decision.",
			},
			[]string{"decision"},
		),
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "blogadmin_login_attempts_total",
				Help: "Total number of login attempts by result.",
			},
			[]string{"result"},
		),
		registry: prometheus.NewRegistry(),
	}

	m.registry.MustRegister(
		m.SecurityDecisions,
		m.LoginAttempts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry is served on /metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordDecision increments the security decision counter.
func (m *Metrics) RecordDecision(decision string) {
	if m == nil {
		return
	}
	m.SecurityDecisions.WithLabelValues(decision).Inc()
}

// RecordLogin increments the login attempt counter.
func (m *Metrics) RecordLogin(result string) {
	if m == nil {
		return
	}
	m.LoginAttempts.WithLabelValues(result).Inc()
}
