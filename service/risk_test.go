package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"firstaidguide-backend/models"
)

func cleanVerdict() models.GuardrailVerdict {
	return models.GuardrailVerdict{Passed: true}
}

func failedVerdict() models.GuardrailVerdict {
	return models.GuardrailVerdict{
		Passed:     false,
		Violations: []models.Violation{{Rule: RuleDenyPhrase, MatchedText: "apply butter"}},
	}
}

func TestScoreRiskSeverityBands(t *testing.T) {
	tests := []struct {
		severity int
		want     models.RiskLevel
	}{
		{0, models.RiskLow},
		{1, models.RiskLow},
		{2, models.RiskMedium},
		{3, models.RiskMedium},
		{4, models.RiskHigh},
		{5, models.RiskCritical},
	}

	for _, tt := range tests {
		got := ScoreRisk(RiskInputs{
			Triage:  models.TriageResult{Severity: tt.severity, Source: models.TriageSourceModel},
			Verdict: cleanVerdict(),
		})
		assert.Equal(t, tt.want, got.Risk, "severity %d", tt.severity)
	}
}

func TestScoreRiskEscalatesOnFailedVerdict(t *testing.T) {
	tests := []struct {
		severity int
		want     models.RiskLevel
	}{
		{0, models.RiskMedium},
		{3, models.RiskHigh},
		{4, models.RiskCritical},
		{5, models.RiskCritical},
	}

	for _, tt := range tests {
		got := ScoreRisk(RiskInputs{
			Triage:  models.TriageResult{Severity: tt.severity, Source: models.TriageSourceModel},
			Verdict: failedVerdict(),
		})
		assert.Equal(t, tt.want, got.Risk, "severity %d", tt.severity)
	}
}

func TestScoreRiskConfidencePenalties(t *testing.T) {
	tests := []struct {
		name string
		in   RiskInputs
		want float64
	}{
		{
			"healthy pipeline",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceModel},
				Verdict:          cleanVerdict(),
				GenerationSource: models.InstructionSourceGenerated,
			},
			0.95,
		},
		{
			"fallback triage",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceFallback},
				Verdict:          cleanVerdict(),
				GenerationSource: models.InstructionSourceGenerated,
			},
			0.70,
		},
		{
			"empty retrieval",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceModel},
				Verdict:          cleanVerdict(),
				RetrievalEmpty:   true,
				GenerationSource: models.InstructionSourceGenerated,
			},
			0.80,
		},
		{
			"fallback generation",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceModel},
				Verdict:          cleanVerdict(),
				GenerationSource: models.InstructionSourceFallback,
			},
			0.85,
		},
		{
			"failed verification",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceModel},
				Verdict:          failedVerdict(),
				GenerationSource: models.InstructionSourceGenerated,
			},
			0.75,
		},
		{
			"every penalty applies",
			RiskInputs{
				Triage:           models.TriageResult{Severity: 3, Source: models.TriageSourceFallback},
				Verdict:          failedVerdict(),
				RetrievalEmpty:   true,
				GenerationSource: models.InstructionSourceFallback,
			},
			0.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreRisk(tt.in)
			assert.InDelta(t, tt.want, got.Confidence, 1e-9)
		})
	}
}

func TestScoreRiskConfidenceNeverBelowFloor(t *testing.T) {
	got := ScoreRisk(RiskInputs{
		Triage:           models.TriageResult{Severity: 5, Source: models.TriageSourceFallback},
		Verdict:          failedVerdict(),
		RetrievalEmpty:   true,
		GenerationSource: models.InstructionSourceFallback,
	})

	assert.GreaterOrEqual(t, got.Confidence, minConfidence)
}

func TestScoreRiskIsDeterministic(t *testing.T) {
	in := RiskInputs{
		Triage:           models.TriageResult{Severity: 4, Source: models.TriageSourceFallback},
		Verdict:          cleanVerdict(),
		RetrievalEmpty:   true,
		GenerationSource: models.InstructionSourceGenerated,
	}

	assert.Equal(t, ScoreRisk(in), ScoreRisk(in))
}
