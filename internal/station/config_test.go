package station

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KYDronePilot/hdfm/internal/geo"
)

func TestParseAreaConfig(t *testing.T) {
	text := "DWR_Area_ID=\"ABC123\"\nCoordinates=(\"40.0,-75.0\");(\"39.0,-74.0\")\n"

	cfg, err := ParseAreaConfig(text)
	assert.NoError(t, err)
	assert.Equal(t, "ABC123", cfg.AreaID)
	assert.Equal(t, geo.NewBoundingBox(40.0, -75.0, 39.0, -74.0), cfg.BBox)
}

func TestParseAreaConfig_QuotedParens(t *testing.T) {
	// Stations vary in whether quotes wrap the whole group or sit
	// inside the parens.
	text := "DWR_Area_ID='DAL'\nCoordinates=\"(33.42,-98.0)\";\"(32.1,-95.88)\"\n"

	cfg, err := ParseAreaConfig(text)
	assert.NoError(t, err)
	assert.Equal(t, "DAL", cfg.AreaID)
	assert.Equal(t, geo.NewBoundingBox(33.42, -98.0, 32.1, -95.88), cfg.BBox)
}

func TestParseAreaConfig_IgnoresUnknownLines(t *testing.T) {
	text := "Version=2\r\nDWR_Area_ID=\"X\"\r\nnoise line\r\nCoordinates=(\"41.0,-90.0\");(\"40.0,-89.0\")\r\n"

	cfg, err := ParseAreaConfig(text)
	assert.NoError(t, err)
	assert.Equal(t, "X", cfg.AreaID)
}

func TestParseAreaConfig_Malformed(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"empty", ""},
		{"missing area id", "Coordinates=(\"40.0,-75.0\");(\"39.0,-74.0\")"},
		{"missing coordinates", "DWR_Area_ID=\"ABC\""},
		{"one coordinate group", "DWR_Area_ID=\"ABC\"\nCoordinates=(\"40.0,-75.0\")"},
		{"three coordinate groups", "DWR_Area_ID=\"ABC\"\nCoordinates=(\"1,2\");(\"3,4\");(\"5,6\")"},
		{"group without comma", "DWR_Area_ID=\"ABC\"\nCoordinates=(\"40.0\");(\"39.0,-74.0\")"},
		{"non numeric latitude", "DWR_Area_ID=\"ABC\"\nCoordinates=(\"north,-75.0\");(\"39.0,-74.0\")"},
		{"non numeric longitude", "DWR_Area_ID=\"ABC\"\nCoordinates=(\"40.0,west\");(\"39.0,-74.0\")"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := ParseAreaConfig(test.text)
			assert.ErrorIs(t, err, ErrMalformedConfig)
		})
	}
}
