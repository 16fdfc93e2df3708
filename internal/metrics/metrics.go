// Package metrics defines the Prometheus metrics exported by the service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Result label values.
const (
	ResultSuccess  = "success"
	ResultRejected = "rejected"
	ResultInvalid  = "invalid"
	ResultConflict = "conflict"
	ResultError    = "error"
)

type Metrics struct {
	LoginAttempts      *prometheus.CounterVec
	Registrations      *prometheus.CounterVec
	SessionResolutions *prometheus.CounterVec
	PasswordHash       *prometheus.HistogramVec

	registry *prometheus.Registry
}

// New creates the metrics on a fresh registry that also carries the Go and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		LoginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_login_attempts_total",
				Help: "Total number of login attempts by result",
			},
			[]string{"result"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_registrations_total",
				Help: "Total number of registration attempts by result",
			},
			[]string{"result"},
		),
		SessionResolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_session_resolutions_total",
				Help: "Total number of session token resolutions by result",
			},
			[]string{"result"},
		),
		PasswordHash: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "auth_password_hash_seconds",
				Help:    "Duration of password hash and verify operations",
				Buckets: []float64{.01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"operation"},
		),
		registry: reg,
	}

	reg.MustRegister(m.LoginAttempts, m.Registrations, m.SessionResolutions, m.PasswordHash)

	return m
}

func (m *Metrics) LoginAttempt(result string) {
	m.LoginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) Registration(result string) {
	m.Registrations.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionResolution(result string) {
	m.SessionResolutions.WithLabelValues(result).Inc()
}

// ObserveHash has the shape of hasher.Observer.
func (m *Metrics) ObserveHash(op string, d time.Duration) {
	m.PasswordHash.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
