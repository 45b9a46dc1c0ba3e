package service

import (
	"context"

	"github.com/rs/zerolog"

	"firstaidguide-backend/models"
	"firstaidguide-backend/provider"
)

const (
	fallbackEmergencyNumber = "call your local emergency services"
	fallbackNearbyHelp      = "search for the nearest hospital or urgent-care clinic"
)

// ToolAdapter enriches an emergency with directory lookups. Lookups degrade
// to generic guidance text instead of failing the turn.
type ToolAdapter struct {
	directory provider.ToolDirectory
	locale    string
	logger    zerolog.Logger
}

// NewToolAdapter creates a tool adapter for the given locale. The directory
// may be nil, in which case every lookup degrades.
func NewToolAdapter(directory provider.ToolDirectory, locale string, logger zerolog.Logger) *ToolAdapter {
	if locale == "" {
		locale = provider.DefaultLocale
	}
	return &ToolAdapter{
		directory: directory,
		locale:    locale,
		logger:    logger.With().Str("component", "tools").Logger(),
	}
}

// Enrich gathers the emergency number and nearby-help hint for a category.
// The second return value reports whether any lookup fell back.
func (t *ToolAdapter) Enrich(ctx context.Context, category models.Category) (models.ToolResult, bool) {
	result := models.ToolResult{
		EmergencyNumber: fallbackEmergencyNumber,
		MapsHint:        fallbackNearbyHelp,
		Raw:             make(map[string]interface{}),
	}
	fellBack := false

	if t.directory == nil {
		t.logger.Debug().Msg("no tool directory configured, using generic guidance")
		result.Raw["emergency_numbers"] = result.EmergencyNumber
		result.Raw["nearby_help"] = result.MapsHint
		return result, true
	}

	number, err := t.directory.EmergencyNumber(ctx, category, t.locale)
	if err != nil {
		t.logger.Warn().Err(err).Str("category", string(category)).Msg("emergency number lookup failed")
		fellBack = true
	} else {
		result.EmergencyNumber = number
	}
	result.Raw["emergency_numbers"] = result.EmergencyNumber

	hint, err := t.directory.NearbyHelp(ctx, t.locale)
	if err != nil {
		t.logger.Warn().Err(err).Msg("nearby help lookup failed")
		fellBack = true
	} else {
		result.MapsHint = hint
	}
	result.Raw["nearby_help"] = result.MapsHint

	return result, fellBack
}
