// Package radar composes received radar overlays onto the cached base
// map for the configured station area.
package radar

import (
	"errors"
	"image"
	"sync"
	"time"

	"github.com/KYDronePilot/hdfm/internal/imaging"
	"github.com/KYDronePilot/hdfm/internal/mapcache"
	"github.com/KYDronePilot/hdfm/internal/station"
)

var (
	// ErrNoOverlay means no radar overlay has been received yet. This
	// is the expected state until the station's first DWRO file lands;
	// callers should check HasOverlay before asking for the composite.
	ErrNoOverlay = errors.New("no radar overlay received yet")

	// ErrNoArea means no station area config has been received yet, so
	// there is no base map to composite onto.
	ErrNoArea = errors.New("no station area configured yet")
)

// stampOffset is where the timestamp is burned into the composite.
var stampOffset = image.Pt(550, 835)

// Compositor tracks the latest radar overlay and lazily produces the
// timestamped composite of overlay over base map. An overlay is only
// ever replaced, never cleared, within a session.
type Compositor struct {
	cache   *mapcache.Cache
	stamper *imaging.Stamper
	now     func() time.Time

	mu       sync.Mutex
	area     *station.AreaConfig
	overlay  image.Image
	composed *image.RGBA
	version  uint64
}

// New creates a compositor over the given base map cache.
func New(cache *mapcache.Cache, stamper *imaging.Stamper) *Compositor {
	return &Compositor{
		cache:   cache,
		stamper: stamper,
		now:     time.Now,
	}
}

// Configure sets the station area the composite is built for and
// invalidates any memoized composite. The current overlay is kept; the
// next compose pairs it with the new area's base map.
func (c *Compositor) Configure(cfg station.AreaConfig) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.area = &cfg
	c.composed = nil
	c.version++
}

// Area returns the configured station area, if any.
func (c *Compositor) Area() (station.AreaConfig, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.area == nil {
		return station.AreaConfig{}, false
	}
	return *c.area, true
}

// HasOverlay reports whether at least one overlay has been received.
func (c *Compositor) HasOverlay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.overlay != nil
}

// UpdateOverlay replaces the current overlay and invalidates the
// memoized composite. The previous overlay is discarded; overlays
// replace, they never merge.
func (c *Compositor) UpdateOverlay(img image.Image) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.overlay = img
	c.composed = nil
	c.version++
}

// Version increments whenever the composite would change; the display
// layer uses it to decide when to refetch.
func (c *Compositor) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Composed returns the memoized 900×900 composite, building it if the
// overlay or area changed since the last call. The overlay is resized
// to canonical size, alpha-composited over the base map, and stamped
// with the composition time.
func (c *Compositor) Composed() (*image.RGBA, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.composed != nil {
		return c.composed, nil
	}
	if c.area == nil {
		return nil, ErrNoArea
	}
	if c.overlay == nil {
		return nil, ErrNoOverlay
	}

	base, err := c.cache.GetMap(c.area.AreaID, c.area.BBox)
	if err != nil {
		return nil, err
	}

	resized := imaging.Resize(c.overlay, mapcache.MapSize, mapcache.MapSize)
	composed := imaging.AlphaComposite(base, resized)
	c.stamper.Stamp(composed, stampOffset, c.now())

	c.composed = composed
	return composed, nil
}
