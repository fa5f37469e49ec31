// Package api defines the Huma API routes and handlers for the display
// layer.
package api

import (
	"context"

	"github.com/danielgtaylor/huma/v2"

	"github.com/KYDronePilot/hdfm/internal/display"
	"github.com/KYDronePilot/hdfm/internal/journal"
)

// Services holds the dependencies API handlers pull from.
type Services struct {
	Display *display.Display
	Journal *journal.Journal // nil when reception history is disabled
	DumpDir string
}

// Types

type HealthBody struct {
	Status  string `json:"status" doc:"Health status" example:"ok"`
	Version string `json:"version" doc:"API version" example:"1.0.0"`
}

type InfoBody struct {
	Name     string   `json:"name" doc:"Service name"`
	Version  string   `json:"version" doc:"Service version"`
	DumpDir  string   `json:"dump_dir" doc:"Decoder dump directory being watched"`
	Journal  bool     `json:"journal" doc:"Whether reception history is recorded"`
	Features []string `json:"features" doc:"Available artifacts"`
}

// BoundBody is a station bounding box in config corner order.
type BoundBody struct {
	LatTop    float64 `json:"latTop" doc:"Latitude of top edge"`
	LonLeft   float64 `json:"lonLeft" doc:"Longitude of left edge"`
	LatBottom float64 `json:"latBottom" doc:"Latitude of bottom edge"`
	LonRight  float64 `json:"lonRight" doc:"Longitude of right edge"`
}

// StatusBody reports the current state of all three pipelines.
type StatusBody struct {
	AreaID         string     `json:"areaId,omitempty" doc:"Configured station area ID"`
	Bound          *BoundBody `json:"bound,omitempty" doc:"Configured area bounding box"`
	HasOverlay     bool       `json:"hasOverlay" doc:"Whether a radar overlay has been received"`
	FilledSlots    []bool     `json:"filledSlots" doc:"Traffic slots filled this cycle, indexed x + y*3"`
	ArtworkFile    string     `json:"artworkFile,omitempty" doc:"Filename of the current artwork"`
	RadarVersion   uint64     `json:"radarVersion" doc:"Radar change counter"`
	TrafficVersion uint64     `json:"trafficVersion" doc:"Traffic change counter"`
	ArtworkVersion uint64     `json:"artworkVersion" doc:"Artwork change counter"`
}

type ArtifactsInput struct {
	Limit int `query:"limit" default:"50" minimum:"1" maximum:"500" doc:"Maximum entries to return"`
}

type ArtifactsBody struct {
	Artifacts []journal.Entry `json:"artifacts" doc:"Recently consumed artifacts, newest first"`
}

// APIHandler holds all REST API handlers. Methods named Register* are
// auto-discovered by huma.AutoRegister.
type APIHandler struct {
	svc *Services
}

func NewAPIHandler(svc *Services) *APIHandler {
	return &APIHandler{svc: svc}
}

// RegisterHealth registers health check routes.
func (h *APIHandler) RegisterHealth(api huma.API) {
	huma.Get(api, "/health", h.GetHealth, huma.OperationTags("health"))
	huma.Get(api, "/api/v1/info", h.GetInfo, huma.OperationTags("health"))
}

// RegisterStatus registers the pipeline status route.
func (h *APIHandler) RegisterStatus(api huma.API) {
	huma.Get(api, "/api/v1/status", h.GetStatus, huma.OperationTags("display"))
}

// RegisterArtifacts registers the reception history route.
func (h *APIHandler) RegisterArtifacts(api huma.API) {
	huma.Get(api, "/api/v1/artifacts", h.GetArtifacts, huma.OperationTags("display"))
}

// Handlers

func (h *APIHandler) GetHealth(ctx context.Context, input *struct{}) (*struct{ Body HealthBody }, error) {
	return &struct{ Body HealthBody }{Body: HealthBody{Status: "ok", Version: "1.0.0"}}, nil
}

func (h *APIHandler) GetInfo(ctx context.Context, input *struct{}) (*struct{ Body InfoBody }, error) {
	return &struct{ Body InfoBody }{Body: InfoBody{
		Name:     "hdfm",
		Version:  "1.0.0",
		DumpDir:  h.svc.DumpDir,
		Journal:  h.svc.Journal != nil,
		Features: []string{"radar", "traffic", "artwork"},
	}}, nil
}

func (h *APIHandler) GetStatus(ctx context.Context, input *struct{}) (*struct{ Body StatusBody }, error) {
	d := h.svc.Display

	body := StatusBody{
		HasOverlay:     d.Radar.HasOverlay(),
		RadarVersion:   d.Radar.Version(),
		TrafficVersion: d.Traffic.Version(),
		ArtworkVersion: d.Artwork.Version(),
	}

	filled := d.Traffic.FilledSlots()
	body.FilledSlots = filled[:]

	if area, ok := d.Radar.Area(); ok {
		body.AreaID = area.AreaID
		body.Bound = &BoundBody{
			LatTop:    area.BBox.TopLeft.Y(),
			LonLeft:   area.BBox.TopLeft.X(),
			LatBottom: area.BBox.BottomRight.Y(),
			LonRight:  area.BBox.BottomRight.X(),
		}
	}
	if _, filename, ok := d.Artwork.Current(); ok {
		body.ArtworkFile = filename
	}

	return &struct{ Body StatusBody }{Body: body}, nil
}

func (h *APIHandler) GetArtifacts(ctx context.Context, input *ArtifactsInput) (*struct{ Body ArtifactsBody }, error) {
	if h.svc.Journal == nil {
		return &struct{ Body ArtifactsBody }{Body: ArtifactsBody{Artifacts: []journal.Entry{}}}, nil
	}
	entries, err := h.svc.Journal.Recent(ctx, input.Limit)
	if err != nil {
		return nil, huma.Error500InternalServerError("querying reception history", err)
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return &struct{ Body ArtifactsBody }{Body: ArtifactsBody{Artifacts: entries}}, nil
}
