package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance engine.
type Metrics struct {
	// Lifecycle transitions by from/to state and result
	Transitions *prometheus.CounterVec

	// Risk computations by rating and result
	RiskComputations *prometheus.CounterVec

	// Full risk computation latency
	ComputeLatency prometheus.Histogram

	// Screening outcomes by match type
	ScreeningMatches *prometheus.CounterVec

	// Times the hardcoded rating fallback fired (configuration gap)
	RatingFallbacks prometheus.Counter
}

// New creates a Metrics instance with all engine metrics registered.
func New() *Metrics {
	return &Metrics{
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_kyc_transitions_total",
			Help: "KYC lifecycle transitions by from state, to state and result",
		}, []string{"from", "to", "result"}),

		RiskComputations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_risk_computations_total",
			Help: "Risk computations by resulting rating and result",
		}, []string{"rating", "result"}),

		ComputeLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "onboard_risk_compute_duration_seconds",
			Help:    "Duration of a full risk computation including persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		ScreeningMatches: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "onboard_screening_matches_total",
			Help: "AML screening outcomes by match type",
		}, []string{"match_type"}),

		RatingFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Name: "onboard_rating_fallbacks_total",
			Help: "Score-to-rating mappings that fell back to hardcoded buckets",
		}),
	}
}

// ObserveTransition records a lifecycle transition attempt.
func (m *Metrics) ObserveTransition(from, to, result string) {
	if m != nil {
		m.Transitions.WithLabelValues(from, to, result).Inc()
	}
}

// ObserveComputation records a risk computation and its duration.
func (m *Metrics) ObserveComputation(rating, result string, d time.Duration) {
	if m != nil {
		m.RiskComputations.WithLabelValues(rating, result).Inc()
		m.ComputeLatency.Observe(d.Seconds())
	}
}

// ObserveScreeningMatch records a screening outcome.
func (m *Metrics) ObserveScreeningMatch(matchType string) {
	if m != nil {
		m.ScreeningMatches.WithLabelValues(matchType).Inc()
	}
}

// ObserveRatingFallback records a configuration gap in the threshold table.
func (m *Metrics) ObserveRatingFallback() {
	if m != nil {
		m.RatingFallbacks.Inc()
	}
}
