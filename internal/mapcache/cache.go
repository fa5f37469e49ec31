// Package mapcache produces the cropped, canonical-size base map for a
// station coverage area, caching results on disk per area ID.
package mapcache

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/KYDronePilot/hdfm/internal/geo"
	"github.com/KYDronePilot/hdfm/internal/imaging"
)

// MapSize is the canonical edge length of a base map image.
const MapSize = 900

var (
	// ErrMasterMapUnavailable indicates the master map asset could not
	// be loaded. This is a deployment problem, not broadcast noise.
	ErrMasterMapUnavailable = errors.New("master map asset unavailable")

	// ErrCacheWrite indicates the cache directory is not writable.
	// Surfaced rather than swallowed: a silent failure here would cost
	// a full master-map crop on every call.
	ErrCacheWrite = errors.New("map cache not writable")
)

// Cache resolves base maps for areas. Resolution order per call:
// memoized image for the current area, then the on-disk cache file,
// then generation from the master map asset.
//
// Known gap carried over from the station network behavior: a new
// bounding box for an already-cached area ID is served the stale cached
// image until the cache file is removed externally.
type Cache struct {
	masterMapFile string
	cacheDir      string

	mu     sync.Mutex
	areaID string
	image  *image.RGBA
}

// New creates a map cache backed by cacheDir. The directory is created
// lazily on first generation.
func New(masterMapFile, cacheDir string) *Cache {
	return &Cache{
		masterMapFile: masterMapFile,
		cacheDir:      cacheDir,
	}
}

// GetMap returns the 900×900 RGBA base map for an area, generating and
// caching it if needed.
func (c *Cache) GetMap(areaID string, bbox geo.BoundingBox) (*image.RGBA, error) {
	areaID = SanitizeAreaID(areaID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.image != nil && c.areaID == areaID {
		return c.image, nil
	}

	if img, err := imaging.DecodeFile(c.CacheFile(areaID)); err == nil {
		rgba := imaging.ToRGBA(img)
		c.areaID = areaID
		c.image = rgba
		return rgba, nil
	}

	rgba, err := c.generate(areaID, bbox)
	if err != nil {
		return nil, err
	}
	c.areaID = areaID
	c.image = rgba
	return rgba, nil
}

// CacheFile returns the on-disk cache path for an area ID.
func (c *Cache) CacheFile(areaID string) string {
	return filepath.Join(c.cacheDir, "map_"+SanitizeAreaID(areaID)+".png")
}

// generate crops the master map to the projected bounding box, resizes
// to canonical size and persists the result, overwriting any existing
// cache entry for the area.
func (c *Cache) generate(areaID string, bbox geo.BoundingBox) (*image.RGBA, error) {
	master, err := imaging.DecodeFile(c.masterMapFile)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMasterMapUnavailable, c.masterMapFile, err)
	}

	cropped := imaging.Crop(master, geo.Project(bbox))
	resized := imaging.Resize(cropped, MapSize, MapSize)

	if err := os.MkdirAll(c.cacheDir, 0755); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	if err := imaging.WritePNG(c.CacheFile(areaID), resized); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCacheWrite, err)
	}
	return resized, nil
}

// SanitizeAreaID makes a station-supplied area ID safe to use as a
// path segment. Stations control the raw value, so anything outside
// alphanumerics, dash and underscore is replaced.
func SanitizeAreaID(areaID string) string {
	var b strings.Builder
	for _, r := range areaID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
