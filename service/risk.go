package service

import (
	"math"

	"firstaidguide-backend/models"
)

// Confidence penalties for each degradation signal
const (
	baseConfidence            = 0.95
	penaltyTriageFallback     = 0.25
	penaltyRetrievalEmpty     = 0.15
	penaltyGenerationFallback = 0.10
	penaltyFailedVerification = 0.20
	minConfidence             = 0.05
)

// RiskInputs collects the pipeline signals the risk scorer consumes
type RiskInputs struct {
	Triage           models.TriageResult
	Verdict          models.GuardrailVerdict
	RetrievalEmpty   bool
	GenerationSource models.InstructionSource
}

// ScoreRisk maps triage severity onto a risk level and derives a confidence
// score from how much of the pipeline ran degraded. A failed guardrail
// verdict escalates the risk one level. The same inputs always produce the
// same output.
func ScoreRisk(in RiskInputs) models.RiskConfidence {
	var risk models.RiskLevel
	switch {
	case in.Triage.Severity >= 5:
		risk = models.RiskCritical
	case in.Triage.Severity >= 4:
		risk = models.RiskHigh
	case in.Triage.Severity >= 2:
		risk = models.RiskMedium
	default:
		risk = models.RiskLow
	}

	if !in.Verdict.Passed {
		risk = risk.Escalate()
	}

	confidence := baseConfidence
	if in.Triage.Source == models.TriageSourceFallback {
		confidence -= penaltyTriageFallback
	}
	if in.RetrievalEmpty {
		confidence -= penaltyRetrievalEmpty
	}
	if in.GenerationSource == models.InstructionSourceFallback {
		confidence -= penaltyGenerationFallback
	}
	if !in.Verdict.Passed {
		confidence -= penaltyFailedVerification
	}
	if confidence < minConfidence {
		confidence = minConfidence
	}

	return models.RiskConfidence{
		Risk:       risk,
		Confidence: math.Round(confidence*100) / 100,
	}
}
