package service

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/policy"
)

// Violation rule names
const (
	RuleDenyPhrase        = "deny_phrase"
	RuleDiagnosisLanguage = "diagnosis_language"
	RuleDisallowedTopic   = "disallowed_topic"
)

// GuardrailVerifier checks generated instructions against the safety policy.
// It reports violations; it never rewrites the instructions itself.
type GuardrailVerifier struct {
	policy            *policy.Policy
	diagnosisPatterns []*regexp.Regexp
	logger            zerolog.Logger
}

// NewGuardrailVerifier compiles the policy's diagnosis patterns once.
// Patterns that fail to compile are logged and skipped rather than taking
// the verifier down.
func NewGuardrailVerifier(p *policy.Policy, logger zerolog.Logger) *GuardrailVerifier {
	if p == nil {
		p = policy.Empty()
	}
	log := logger.With().Str("component", "guardrail").Logger()

	patterns := make([]*regexp.Regexp, 0, len(p.DiagnosisPatterns))
	for _, raw := range p.DiagnosisPatterns {
		compiled, err := regexp.Compile("(?i)" + raw)
		if err != nil {
			log.Warn().Err(err).Str("pattern", raw).Msg("skipping invalid diagnosis pattern")
			continue
		}
		patterns = append(patterns, compiled)
	}

	return &GuardrailVerifier{
		policy:            p,
		diagnosisPatterns: patterns,
		logger:            log,
	}
}

// Verify scans the summary and every step for deny phrases, diagnosis
// language and disallowed topics. It collects all violations, not just the
// first, so callers can log the full picture.
func (v *GuardrailVerifier) Verify(instructions models.InstructionSet) models.GuardrailVerdict {
	text := instructions.Summary + "\n" + strings.Join(instructions.Steps, "\n")
	lowered := strings.ToLower(text)

	var violations []models.Violation

	for _, phrase := range v.policy.DenyPhrases {
		if strings.Contains(lowered, strings.ToLower(phrase)) {
			violations = append(violations, models.Violation{
				Rule:        RuleDenyPhrase,
				MatchedText: phrase,
			})
		}
	}

	for _, pattern := range v.diagnosisPatterns {
		if match := pattern.FindString(text); match != "" {
			violations = append(violations, models.Violation{
				Rule:        RuleDiagnosisLanguage,
				MatchedText: match,
			})
		}
	}

	for _, topic := range v.policy.MatchTopics(text) {
		violations = append(violations, models.Violation{
			Rule:        RuleDisallowedTopic,
			MatchedText: topic,
		})
	}

	if len(violations) > 0 {
		v.logger.Warn().Int("violations", len(violations)).Str("first_rule", violations[0].Rule).Msg("instructions failed guardrail verification")
	}

	return models.GuardrailVerdict{
		Passed:     len(violations) == 0,
		Violations: violations,
	}
}
