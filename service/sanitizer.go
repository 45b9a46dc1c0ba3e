package service

import (
	"strings"

	"firstaidguide-backend/models"
	"firstaidguide-backend/policy"
)

// Sanitizer normalizes raw user input and enforces conversation scope
type Sanitizer struct {
	policy *policy.Policy
}

// NewSanitizer creates a sanitizer bound to a guardrail policy
func NewSanitizer(p *policy.Policy) *Sanitizer {
	if p == nil {
		p = policy.Empty()
	}
	return &Sanitizer{policy: p}
}

// Sanitize strips control characters, collapses whitespace and checks the
// result against the policy's disallowed topics. It never rejects input on
// its own; the caller decides what to do with out-of-scope text.
func (s *Sanitizer) Sanitize(raw string) models.SanitizedInput {
	clean := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return ' '
		}
		return r
	}, raw)
	clean = strings.Join(strings.Fields(clean), " ")

	topic, found := s.policy.MatchTopic(clean)

	return models.SanitizedInput{
		CleanText:    clean,
		InScope:      !found,
		MatchedTopic: topic,
	}
}
