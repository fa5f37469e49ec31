package geo

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	tests := []struct {
		name     string
		bbox     BoundingBox
		expected image.Rectangle
	}{
		{
			name:     "mid atlantic degree box",
			bbox:     NewBoundingBox(40.0, -75.0, 39.0, -74.0),
			expected: image.Rectangle{Min: image.Pt(10154, 3305), Max: image.Pt(10336, 3541)},
		},
		{
			name: "map origin",
			// Left edge longitude and top edge latitude of the master map.
			bbox:     NewBoundingBox(52.48278, -130.78125, 38.898, -130.78125),
			expected: image.Rectangle{Min: image.Pt(0, 0), Max: image.Pt(0, 3565)},
		},
		{
			name: "reversed corners stay reversed",
			bbox: NewBoundingBox(39.0, -74.0, 40.0, -75.0),
			expected: image.Rectangle{
				Min: image.Pt(10336, 3541),
				Max: image.Pt(10154, 3305),
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.expected, Project(test.bbox))
		})
	}
}

func TestProject_Deterministic(t *testing.T) {
	bbox := NewBoundingBox(41.5, -88.2, 40.9, -87.1)

	first := Project(bbox)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Project(bbox))
	}
}

func TestLinearize(t *testing.T) {
	// The map's top edge latitude linearizes to zero by construction.
	assert.InDelta(t, 0, Linearize(52.48278), 1e-9)
	// Latitudes south of the top edge are positive (down the map).
	assert.Greater(t, Linearize(38.898), 0.0)
	assert.Greater(t, Linearize(30.0), Linearize(45.0))
}

func TestBoundingBox_Bound(t *testing.T) {
	bbox := NewBoundingBox(40.0, -75.0, 39.0, -74.0)
	bound := bbox.Bound()

	assert.Equal(t, -75.0, bound.Min.X())
	assert.Equal(t, 39.0, bound.Min.Y())
	assert.Equal(t, -74.0, bound.Max.X())
	assert.Equal(t, 40.0, bound.Max.Y())
}
