// Package geo converts station-supplied geographic bounding boxes into
// pixel coordinates on the bundled street map render.
//
// The master map is a fixed web-Mercator render of the continental US.
// Latitude spacing on a Mercator map grows toward the poles, so each
// latitude is first converted to a linear form via asinh(tan(lat));
// pixel distance is then proportional to linearized-latitude distance.
// Longitude is already linear and only needs offset and scale.
package geo

import (
	"image"
	"math"

	"github.com/paulmach/orb"
)

// Calibration constants for the bundled US map asset. LatMax is the
// map's top-edge latitude in linearized form, RefLat a known reference
// latitude (~38.898°) fixing the vertical scale. The longitude constants
// encode the map's left-edge offset and pixel-per-degree ratio. They
// must be preserved exactly unless the map asset itself is recalibrated.
const (
	LatMax = 1.0799224683069641
	RefLat = 0.7380009964270406

	lonOffset = 130.781250
	lonPixels = 7162
	lonSpan   = 39.34135
	latPixels = 3565
)

// BoundingBox is the four-corner lat/lon rectangle a radar overlay
// covers. Corners are orb points in (lon, lat) order. The top edge is
// expected to be numerically north of the bottom edge; if a station
// sends them reversed the projection simply yields a degenerate crop.
type BoundingBox struct {
	TopLeft     orb.Point
	BottomRight orb.Point
}

// NewBoundingBox builds a box from the corner coordinates as they
// appear in station configs: (latTop, lonLeft) then (latBottom, lonRight).
func NewBoundingBox(latTop, lonLeft, latBottom, lonRight float64) BoundingBox {
	return BoundingBox{
		TopLeft:     orb.Point{lonLeft, latTop},
		BottomRight: orb.Point{lonRight, latBottom},
	}
}

// Bound returns the box as a min/max-ordered orb.Bound.
func (b BoundingBox) Bound() orb.Bound {
	return orb.MultiPoint{b.TopLeft, b.BottomRight}.Bound()
}

// Linearize converts a latitude in degrees to the map's linear vertical
// coordinate, measured down from the map's top edge.
func Linearize(lat float64) float64 {
	return LatMax - math.Asinh(math.Tan(lat*math.Pi/180))
}

// Project maps a bounding box onto pixel coordinates of the master map.
// Coordinates are truncated, not rounded. There is no clamping against
// the map dimensions: a box outside the calibrated region produces an
// out-of-range or degenerate rectangle, which downstream cropping must
// tolerate.
func Project(bbox BoundingBox) image.Rectangle {
	x1 := (bbox.TopLeft.X() + lonOffset) * lonPixels / lonSpan
	x2 := (bbox.BottomRight.X() + lonOffset) * lonPixels / lonSpan

	den := LatMax - RefLat
	y1 := Linearize(bbox.TopLeft.Y()) * latPixels / den
	y2 := Linearize(bbox.BottomRight.Y()) * latPixels / den

	// Min/Max are kept exactly as projected, even when reversed.
	return image.Rectangle{
		Min: image.Pt(int(x1), int(y1)),
		Max: image.Pt(int(x2), int(y2)),
	}
}
