// Package display aggregates the composed artifacts the pipelines
// produce and fans out change events to display-layer subscribers. The
// interface is pull-based: readers ask for the current image, the bus
// only tells them when asking again is worthwhile.
package display

import (
	"github.com/KYDronePilot/hdfm/internal/artwork"
	"github.com/KYDronePilot/hdfm/internal/radar"
	"github.com/KYDronePilot/hdfm/internal/traffic"
)

// Display is the single upward-facing surface of the ingest pipelines.
type Display struct {
	Radar   *radar.Compositor
	Traffic *traffic.Mosaic
	Artwork *artwork.Manager
	Bus     *EventBus
}

// New wires a display over the three pipelines.
func New(r *radar.Compositor, t *traffic.Mosaic, a *artwork.Manager) *Display {
	return &Display{
		Radar:   r,
		Traffic: t,
		Artwork: a,
		Bus:     NewEventBus(),
	}
}
