// Package station parses the plain-text configuration blobs broadcast
// by iHeartRadio stations alongside radar imagery.
package station

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/KYDronePilot/hdfm/internal/geo"
)

// ErrMalformedConfig indicates a config blob missing required keys or
// carrying unparsable coordinates. Callers treat it as "no config yet"
// and retry on the next poll.
var ErrMalformedConfig = errors.New("malformed station config")

// Keys the radar pipeline needs from a station config.
const (
	AreaIDKey      = "DWR_Area_ID"
	CoordinatesKey = "Coordinates"
)

// AreaConfig identifies a station's coverage region: an opaque area ID
// used as a cache key plus the lat/lon bounding box its radar overlays
// cover.
type AreaConfig struct {
	AreaID string
	BBox   geo.BoundingBox
}

// ParseAreaConfig extracts the area ID and bounding box from a station
// config blob. The format is line-oriented key=value text controlled by
// the station network; unknown lines are ignored. Coordinate values are
// trusted as sent, with no numeric range validation.
func ParseAreaConfig(text string) (AreaConfig, error) {
	entries := parseEntries(text)

	areaID, ok := entries[AreaIDKey]
	if !ok {
		return AreaConfig{}, fmt.Errorf("%w: missing %s", ErrMalformedConfig, AreaIDKey)
	}

	coords, ok := entries[CoordinatesKey]
	if !ok {
		return AreaConfig{}, fmt.Errorf("%w: missing %s", ErrMalformedConfig, CoordinatesKey)
	}

	bbox, err := parseCoordinates(coords)
	if err != nil {
		return AreaConfig{}, err
	}

	return AreaConfig{AreaID: stripQuotes(areaID), BBox: bbox}, nil
}

// parseEntries splits a config blob into key=value pairs, keeping
// values raw. Lines without an = separator are skipped.
func parseEntries(text string) map[string]string {
	entries := make(map[string]string)
	for _, line := range strings.Split(text, "\n") {
		key, value, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if !ok || key == "" {
			continue
		}
		entries[key] = value
	}
	return entries
}

// parseCoordinates parses a semicolon-separated pair of parenthesized
// "lat,lon" groups. The first group is the top-left corner, the second
// the bottom-right.
func parseCoordinates(value string) (geo.BoundingBox, error) {
	groups := strings.Split(value, ";")
	if len(groups) != 2 {
		return geo.BoundingBox{}, fmt.Errorf("%w: coordinates %q are not two groups", ErrMalformedConfig, value)
	}

	var corners [2][2]float64
	for i, group := range groups {
		group = unwrapGroup(group)
		latStr, lonStr, ok := strings.Cut(group, ",")
		if !ok {
			return geo.BoundingBox{}, fmt.Errorf("%w: coordinate group %q is not lat,lon", ErrMalformedConfig, group)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("%w: bad latitude %q", ErrMalformedConfig, latStr)
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(lonStr), 64)
		if err != nil {
			return geo.BoundingBox{}, fmt.Errorf("%w: bad longitude %q", ErrMalformedConfig, lonStr)
		}
		corners[i] = [2]float64{lat, lon}
	}

	return geo.NewBoundingBox(corners[0][0], corners[0][1], corners[1][0], corners[1][1]), nil
}

// unwrapGroup strips the quoting and parens around one coordinate
// group. Stations vary in nesting order: both ("lat,lon") and "(lat,lon)"
// appear off-air.
func unwrapGroup(s string) string {
	return stripQuotes(stripParens(stripQuotes(strings.TrimSpace(s))))
}

// stripQuotes removes a single layer of matching quote characters.
func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == s[len(s)-1] && (s[0] == '"' || s[0] == '\'') {
		return s[1 : len(s)-1]
	}
	return s
}

// stripParens removes a single layer of matching parentheses.
func stripParens(s string) string {
	if len(s) >= 2 && s[0] == '(' && s[len(s)-1] == ')' {
		return s[1 : len(s)-1]
	}
	return s
}
