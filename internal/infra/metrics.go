package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain counters, registered on the default Prometheus registry.
var (
	ConceptsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "smartstudio",
		Name:      "concepts_generated_total",
		Help:      "Concepts returned to clients by the generator.",
	})

	ImageGenerations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstudio",
		Name:      "image_generations_total",
		Help:      "Image generation calls by operation and outcome.",
	}, []string{"operation", "outcome"})

	PromptRewriteFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "smartstudio",
		Name:      "prompt_rewrite_fallbacks_total",
		Help:      "Revisions that used the deterministic fallback prompt.",
	})

	CreditDecisions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstudio",
		Name:      "credit_decisions_total",
		Help:      "Credit ledger decisions by operation and result.",
	}, []string{"operation", "result"})

	PaymentsSettled = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "smartstudio",
		Name:      "payment_webhooks_total",
		Help:      "Payment webhook notifications by processing result.",
	}, []string{"processed"})
)
