package provider

import (
	"context"
	"testing"

	"firstaidguide-backend/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticDirectoryServesAmbulanceNumber(t *testing.T) {
	d := NewStaticToolDirectory()

	number, err := d.EmergencyNumber(context.Background(), models.CategoryBleeding, "LK")
	require.NoError(t, err)
	assert.Equal(t, "1990", number)
}

func TestStaticDirectoryFallsBackToDefaultLocale(t *testing.T) {
	d := NewStaticToolDirectory()

	number, err := d.EmergencyNumber(context.Background(), models.CategoryBurn, "US")
	require.NoError(t, err)
	assert.Equal(t, "1990", number)

	hint, err := d.NearbyHelp(context.Background(), "US")
	require.NoError(t, err)
	assert.Contains(t, hint, "Colombo")
}
