// Package metrics exposes the Prometheus counters for the chat pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ChatRequests counts chat requests by endpoint and outcome
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firstaidguide_chat_requests_total",
		Help: "Chat requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// DegradedResults counts completed turns where at least one stage fell back
	DegradedResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firstaidguide_degraded_results_total",
		Help: "Completed chat turns that ran with at least one fallback stage.",
	}, []string{"endpoint"})

	// StageFallbacks counts pipeline stages that served a fallback result
	StageFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firstaidguide_stage_fallbacks_total",
		Help: "Pipeline stages that served a fallback result.",
	}, []string{"stage"})

	// GuardrailViolations counts guardrail violations by rule
	GuardrailViolations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firstaidguide_guardrail_violations_total",
		Help: "Guardrail violations found in generated instructions, by rule.",
	}, []string{"rule"})

	// RiskLevels counts the final risk level of completed chat turns
	RiskLevels = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "firstaidguide_risk_levels_total",
		Help: "Final risk level of completed chat turns.",
	}, []string{"level"})
)
