package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
)

const (
	classifierTimeout = 8 * time.Second

	// maxSeverity is the top of the triage scale
	maxSeverity = 5

	// unknownSeverity is the conservative default when the category cannot
	// be determined
	unknownSeverity = 2
)

// categoryRule pairs a category with its trigger keywords and severity weight
type categoryRule struct {
	category models.Category
	severity int
	keywords []string
}

// categoryRules is ordered by severity weight, highest first, so the most
// urgent matching category wins
var categoryRules = []categoryRule{
	{models.CategoryChoking, 5, []string{"chok", "airway", "heimlich", "cant breathe", "can't breathe"}},
	{models.CategoryAllergicReaction, 5, []string{"allerg", "anaphyl", "hives"}},
	{models.CategoryPoisoning, 5, []string{"poison", "overdose", "toxic"}},
	{models.CategoryFracture, 4, []string{"fracture", "broken bone", "crack"}},
	{models.CategoryBleeding, 3, []string{"bleed", "blood", "cut", "lacer", "wound", "hemorrh"}},
	{models.CategoryBurn, 3, []string{"burn", "scald", "blister", "char"}},
	{models.CategoryFainting, 3, []string{"faint", "passed out", "dizzy", "lightheaded"}},
	{models.CategorySprain, 2, []string{"sprain", "strain", "twist"}},
	{models.CategoryBruise, 1, []string{"bruise", "contusion"}},
	{models.CategoryHeadache, 1, []string{"headache", "migraine"}},
}

// intensifiers bump severity by one level when they appear alongside a match
var intensifiers = []string{"severe", "heavy", "spurting", "soaking", "worse", "worsening", "unbearable"}

// Classifier assigns a first-aid category and severity to user messages
type Classifier struct {
	categorizer provider.Categorizer
	timeout     time.Duration
	logger      zerolog.Logger
}

// NewClassifier creates a classifier. The categorizer may be nil, in which
// case every message goes through the keyword tables.
func NewClassifier(categorizer provider.Categorizer, logger zerolog.Logger) *Classifier {
	return &Classifier{
		categorizer: categorizer,
		timeout:     classifierTimeout,
		logger:      logger.With().Str("component", "classifier").Logger(),
	}
}

// Classify triages a sanitized message. It never fails: when the model
// provider is unavailable or returns garbage, the deterministic keyword
// tables take over.
func (c *Classifier) Classify(ctx context.Context, text string) models.TriageResult {
	if c.categorizer == nil {
		return KeywordTriage(text)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.categorizer.Categorize(ctx, text)
	if err != nil {
		c.logger.Warn().Err(err).Msg("categorization provider failed, using keyword fallback")
		return KeywordTriage(text)
	}

	return coerceCategorization(raw)
}

// coerceCategorization validates a model response against the known category
// list and clamps severity onto the 0 to 5 scale
func coerceCategorization(raw *provider.Categorization) models.TriageResult {
	category := models.Category(strings.ToLower(strings.TrimSpace(raw.Category)))
	severity := raw.Severity

	if !models.IsValidCategory(category) {
		category = models.CategoryUnknown
		severity = unknownSeverity
	}
	if severity < 0 {
		severity = 0
	}
	if severity > maxSeverity {
		severity = maxSeverity
	}

	return models.TriageResult{
		Category: category,
		Severity: severity,
		Keywords: raw.Keywords,
		Source:   models.TriageSourceModel,
	}
}

// KeywordTriage classifies text with the deterministic keyword tables. The
// first matching rule in weight order decides the category; an intensifier
// raises severity by one, capped at the top of the scale.
func KeywordTriage(text string) models.TriageResult {
	lowered := strings.ToLower(text)

	category := models.CategoryUnknown
	severity := 0
	var matched []string

	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				if category == models.CategoryUnknown {
					category = rule.category
					severity = rule.severity
				}
				matched = append(matched, keyword)
			}
		}
	}

	if category != models.CategoryUnknown {
		for _, term := range intensifiers {
			if strings.Contains(lowered, term) {
				matched = append(matched, term)
				if severity < maxSeverity {
					severity++
				}
				break
			}
		}
	}

	return models.TriageResult{
		Category: category,
		Severity: severity,
		Keywords: matched,
		Source:   models.TriageSourceFallback,
	}
}
