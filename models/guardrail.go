package models

// Violation represents a single guardrail rule match
type Violation struct {
	Rule        string `json:"rule"`
	MatchedText string `json:"matched_text"`
}

// GuardrailVerdict represents the outcome of verifying an instruction set.
// Violations lists every match found, not just the first.
type GuardrailVerdict struct {
	Passed     bool        `json:"passed"`
	Violations []Violation `json:"violations,omitempty"`
}
