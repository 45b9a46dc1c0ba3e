package provider

import (
	"context"

	"firstaidguide-backend/models"
)

// DefaultLocale is used when a caller does not supply one
const DefaultLocale = "LK"

// localeNumbers holds the emergency service numbers for one locale
type localeNumbers struct {
	Police    string
	Ambulance string
	Fire      string
}

var emergencyNumbers = map[string]localeNumbers{
	"LK": {Police: "119", Ambulance: "1990", Fire: "110"},
}

var nearbyHelpHints = map[string]string{
	"LK": "Nearby help around Colombo (6.9271, 79.8612): search for the nearest hospital or urgent-care clinic in your maps app.",
}

// StaticToolDirectory serves fixed locality data. It is the shipped
// implementation; a live directory API can replace it without the pipeline
// noticing.
type StaticToolDirectory struct{}

// NewStaticToolDirectory creates the static locality directory
func NewStaticToolDirectory() *StaticToolDirectory {
	return &StaticToolDirectory{}
}

// EmergencyNumber returns the ambulance number for the locale. Every scenario
// the pipeline handles is a medical one, so the ambulance line leads.
func (d *StaticToolDirectory) EmergencyNumber(ctx context.Context, category models.Category, locale string) (string, error) {
	nums, ok := emergencyNumbers[locale]
	if !ok {
		nums = emergencyNumbers[DefaultLocale]
	}
	return nums.Ambulance, nil
}

// NearbyHelp returns a static location hint for the locale
func (d *StaticToolDirectory) NearbyHelp(ctx context.Context, locale string) (string, error) {
	if hint, ok := nearbyHelpHints[locale]; ok {
		return hint, nil
	}
	return nearbyHelpHints[DefaultLocale], nil
}
