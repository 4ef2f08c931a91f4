package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the decision module. All methods are
// nil-safe so tests and tools can run without a registry.
type Metrics struct {
	// Rule evaluation latency by rule name
	RuleLatency *prometheus.HistogramVec

	// Rule outcomes by rule name and outcome
	RuleOutcome *prometheus.CounterVec

	// Aggregated decision outcomes by status
	DecisionOutcome *prometheus.CounterVec

	// Full precheck latency: evaluation, persistence and signing
	PrecheckLatency prometheus.Histogram

	// Token verifications by result
	TokenVerifications *prometheus.CounterVec
}

// New creates decision metrics registered on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RuleLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "remitguard_rule_duration_seconds",
			Help:    "Duration of individual rule evaluations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"rule"}),

		RuleOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "remitguard_rule_outcomes_total",
			Help: "Total rule outcomes by rule and outcome",
		}, []string{"rule", "outcome"}),

		DecisionOutcome: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "remitguard_decision_outcomes_total",
			Help: "Total aggregated decision outcomes by status",
		}, []string{"status"}),

		PrecheckLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "remitguard_precheck_duration_seconds",
			Help:    "Duration of a full precheck including persistence and token signing",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		TokenVerifications: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "remitguard_token_verifications_total",
			Help: "Decision token verifications by result",
		}, []string{"result"}), // result: "valid", "invalid"
	}
}

// ObserveRule records one rule evaluation.
func (m *Metrics) ObserveRule(rule, outcome string, d time.Duration) {
	if m != nil {
		m.RuleLatency.WithLabelValues(rule).Observe(d.Seconds())
		m.RuleOutcome.WithLabelValues(rule, outcome).Inc()
	}
}

// IncrementOutcome records an aggregated decision.
func (m *Metrics) IncrementOutcome(status string) {
	if m != nil {
		m.DecisionOutcome.WithLabelValues(status).Inc()
	}
}

// ObservePrecheckLatency records the total precheck duration.
func (m *Metrics) ObservePrecheckLatency(d time.Duration) {
	if m != nil {
		m.PrecheckLatency.Observe(d.Seconds())
	}
}

// IncrementTokenVerification records a verification attempt.
func (m *Metrics) IncrementTokenVerification(valid bool) {
	if m != nil {
		result := "invalid"
		if valid {
			result = "valid"
		}
		m.TokenVerifications.WithLabelValues(result).Inc()
	}
}
