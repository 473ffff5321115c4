// Package metrics holds the Prometheus collectors of the translation
// pipeline. They are registered with the default registry and served by
// the HTTP server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "llmtranslator"

// Outcome label values of Requests.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeFailure = "failure"
)

var (
	// Requests counts translation requests by outcome
	Requests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translation_requests_total",
			Help:      "Translation requests by outcome",
		},
		[]string{"outcome"},
	)

	// Fields counts translatable fields sent to the model
	Fields = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translated_fields_total",
			Help:      "Translatable fields sent to the model",
		},
	)

	// RepairStages counts which stage produced the parsed model response
	RepairStages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_repair_total",
			Help:      "Parsed model responses by repair stage",
		},
		[]string{"stage"},
	)

	// ProviderDuration tracks chat completion latency
	ProviderDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Chat completion latency",
			Buckets:   []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80, 160},
		},
		[]string{"kind"},
	)

	// UIDFailures counts UID fields whose regeneration failed
	UIDFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uid_generation_failures_total",
			Help:      "UID fields that could not be regenerated",
		},
	)
)
