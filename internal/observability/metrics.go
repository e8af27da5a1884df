package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "formation_kit"

// Generation outcomes
const (
	OutcomeSuccess    = "success"
	OutcomeDenied     = "denied"
	OutcomeInvalid    = "invalid"
	OutcomeFailed     = "failed"
	OutcomeDiscarded  = "discarded"
	OutcomeStoreError = "store_error"
)

// Metrics holds the service's collectors. A nil *Metrics records nothing.
type Metrics struct {
	Generations        *prometheus.CounterVec
	Denials            *prometheus.CounterVec
	GenerationDuration *prometheus.HistogramVec
	RateLimitAllowed   *prometheus.CounterVec
	RateLimitRejected  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Generations: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "generations_total", Help: "Document generation attempts by type and outcome."},
			[]string{"document_type", "outcome"},
		),
		Denials: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "entitlement_denials_total", Help: "Denied generation requests by type and denial kind."},
			[]string{"document_type", "kind"},
		),
		GenerationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_duration_seconds",
				Help:      "Time spent generating a document, including the oracle call.",
				Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
			},
			[]string{"document_type"},
		),
		RateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter."},
			[]string{"limiter"},
		),
		RateLimitRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter."},
			[]string{"limiter"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.Generations, m.Denials, m.GenerationDuration, m.RateLimitAllowed, m.RateLimitRejected)
	}
	return m
}

// ObserveGeneration records the outcome and duration of one generation
func (m *Metrics) ObserveGeneration(documentType, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.Generations.WithLabelValues(documentType, outcome).Inc()
	m.GenerationDuration.WithLabelValues(documentType).Observe(elapsed.Seconds())
}

// ObserveDenial records a denied generation request
func (m *Metrics) ObserveDenial(documentType, kind string) {
	if m == nil {
		return
	}
	m.Denials.WithLabelValues(documentType, kind).Inc()
}

// ObserveRateLimit records a rate limiter decision
func (m *Metrics) ObserveRateLimit(limiter string, allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.RateLimitAllowed.WithLabelValues(limiter).Inc()
		return
	}
	m.RateLimitRejected.WithLabelValues(limiter).Inc()
}
