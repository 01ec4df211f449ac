// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_validator_validation_outcomes_total",
			Help: "Phone validations by outcome (valid, invalid, error, no_phone).",
		},
		[]string{"outcome"},
	)

	enrichmentLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_validator_enrichment_lookups_total",
			Help: "Contact-search lookups by result (found, empty, failed, unconfigured).",
		},
		[]string{"result"},
	)

	loginFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wa_validator_login_failures_total",
			Help: "Rejected login attempts by reason.",
		},
		[]string{"reason"},
	)

	oracleDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wa_validator_oracle_request_duration_seconds",
			Help:    "Latency of calls to external lookup services.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"oracle", "status"},
	)
)

// IncValidation counts one validation outcome.
func IncValidation(outcome string) {
	validationOutcomes.WithLabelValues(outcome).Inc()
}

// IncEnrichment counts one contact-search lookup.
func IncEnrichment(result string) {
	enrichmentLookups.WithLabelValues(result).Inc()
}

// IncLoginFailure counts one rejected login.
func IncLoginFailure(reason string) {
	loginFailures.WithLabelValues(reason).Inc()
}

// ObserveOracle records how long an external lookup took.
func ObserveOracle(oracle string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	oracleDuration.WithLabelValues(oracle, status).Observe(d.Seconds())
}
