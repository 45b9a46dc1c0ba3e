package models

// RiskLevel represents the urgency band assigned to a response
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// Escalate returns the risk level one band above r, capped at critical
func (r RiskLevel) Escalate() RiskLevel {
	switch r {
	case RiskLow:
		return RiskMedium
	case RiskMedium:
		return RiskHigh
	default:
		return RiskCritical
	}
}

// RiskConfidence represents the scored urgency of a response and how much
// of the pipeline stood behind it
type RiskConfidence struct {
	Risk       RiskLevel `json:"risk"`
	Confidence float64   `json:"confidence"` // 0.0 to 1.0
}
