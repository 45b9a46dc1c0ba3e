package models

// Category represents the first-aid scenario assigned during triage
type Category string

const (
	CategoryBleeding         Category = "bleeding"
	CategoryBurn             Category = "burn"
	CategoryChoking          Category = "choking"
	CategoryAllergicReaction Category = "allergic_reaction"
	CategoryBruise           Category = "bruise"
	CategorySprain           Category = "sprain"
	CategoryFracture         Category = "fracture"
	CategoryFainting         Category = "fainting"
	CategoryHeadache         Category = "headache"
	CategoryPoisoning        Category = "poisoning"
	CategoryUnknown          Category = "unknown"
)

// Categories lists every scenario the triage step may assign, excluding unknown
var Categories = []Category{
	CategoryBleeding,
	CategoryBurn,
	CategoryChoking,
	CategoryAllergicReaction,
	CategoryBruise,
	CategorySprain,
	CategoryFracture,
	CategoryFainting,
	CategoryHeadache,
	CategoryPoisoning,
}

// TriageSource records which path produced a triage result
type TriageSource string

const (
	TriageSourceModel    TriageSource = "model"
	TriageSourceFallback TriageSource = "fallback"
)

// SanitizedInput represents normalized user text with its scope decision
type SanitizedInput struct {
	CleanText    string `json:"clean_text"`
	InScope      bool   `json:"in_scope"`
	MatchedTopic string `json:"matched_topic,omitempty"`
}

// TriageResult represents the severity assessment for a user message
type TriageResult struct {
	Category Category     `json:"category"`
	Severity int          `json:"severity"` // 0 (none) to 5 (life-threatening)
	Keywords []string     `json:"keywords,omitempty"`
	Source   TriageSource `json:"source"`
}

// IsValidCategory reports whether c is one of the allowed scenario categories
func IsValidCategory(c Category) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
