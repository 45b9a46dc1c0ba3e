package models

// RetrievedDocument represents a knowledge-base passage used to ground generation
type RetrievedDocument struct {
	Content string  `json:"content"`
	Score   float64 `json:"score"` // similarity, 1.0 is an exact match
}

// PipelineResult represents the full outcome of processing one user message
type PipelineResult struct {
	Triage       TriageResult        `json:"triage"`
	Tools        ToolResult          `json:"tools"`
	Retrieved    []RetrievedDocument `json:"retrieved,omitempty"`
	Instructions InstructionSet      `json:"instructions"`
	Verdict      GuardrailVerdict    `json:"verdict"`
	Risk         RiskConfidence      `json:"risk"`
	Conversation ConversationStatus  `json:"conversation"`

	// Degraded is true when any stage fell back from its primary path
	Degraded bool `json:"degraded"`
}
