// Package metrics exposes Prometheus counters for the credential lifecycle.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessiond"

// Outcome labels shared by every counter.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// Metrics owns a private registry so tests and multiple servers in one
// process do not collide on the global one. A nil *Metrics is a no-op.
type Metrics struct {
	Registry *prometheus.Registry

	registrations  *prometheus.CounterVec
	logins         *prometheus.CounterVec
	renewals       *prometheus.CounterVec
	authorizations *prometheus.CounterVec
	revocations    *prometheus.CounterVec
	sweeps         prometheus.Counter
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	counter := func(name, help string) *prometheus.CounterVec {
		return f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		}, []string{"outcome"})
	}

	return &Metrics{
		Registry:       reg,
		registrations:  counter("registrations_total", "Account registrations by outcome."),
		logins:         counter("logins_total", "Login attempts by outcome."),
		renewals:       counter("renewals_total", "Renewal attempts by outcome, including the hidden rejection reason."),
		authorizations: counter("authorizations_total", "Access token checks by outcome."),
		revocations:    counter("revocations_total", "Renewal token revocations by outcome."),
		sweeps: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_renewal_tokens_swept_total",
			Help:      "Expired renewal records removed by housekeeping.",
		}),
	}
}

func (m *Metrics) Registration(outcome string) {
	if m != nil {
		m.registrations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Login(outcome string) {
	if m != nil {
		m.logins.WithLabelValues(outcome).Inc()
	}
}

// Renewal records a renewal attempt. Rejections use the service error code
// (unknown_token, token_expired, ...) as the outcome.
func (m *Metrics) Renewal(outcome string) {
	if m != nil {
		m.renewals.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Authorization(outcome string) {
	if m != nil {
		m.authorizations.WithLabelValues(outcome).Inc()
	}
}

func (m *Metrics) Revocation(outcome string) {
	if m != nil {
		m.revocations.WithLabelValues(outcome).Inc()
	}
}

// Swept adds n to the housekeeping counter.
func (m *Metrics) Swept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.sweeps.Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}
