// Package server exposes the composed artifacts over HTTP: current
// PNGs for each pipeline, a JSON status API, and SSE signals that tell
// the display page when to refetch.
package server

import (
	"errors"
	"fmt"
	"image"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
	"github.com/starfederation/datastar-go/datastar"

	"github.com/KYDronePilot/hdfm/internal/api"
	"github.com/KYDronePilot/hdfm/internal/imaging"
	"github.com/KYDronePilot/hdfm/internal/radar"
)

// Config holds the server configuration.
type Config struct {
	Host string
	Port string
}

// Server is the display-layer HTTP server.
type Server struct {
	config   Config
	mux      *http.ServeMux
	humaAPI  huma.API
	services *api.Services
}

// New creates a display server over the given services.
func New(cfg Config, services *api.Services) *Server {
	mux := http.NewServeMux()

	// Create Huma API with humago (pure stdlib) adapter
	humaConfig := huma.DefaultConfig("hdfm API", "1.0.0")
	humaConfig.Info.Description = "HD-Radio decoder companion: weather radar, traffic mosaic and artwork reconstructed from station broadcasts."
	humaConfig.Servers = []*huma.Server{
		{URL: fmt.Sprintf("http://%s:%s", cfg.Host, cfg.Port), Description: "Local server"},
	}
	// Disable $schema property in responses (cleaner JSON)
	humaConfig.CreateHooks = []func(huma.Config) huma.Config{}

	humaAPI := humago.New(mux, humaConfig)

	s := &Server{
		config:   cfg,
		mux:      mux,
		humaAPI:  humaAPI,
		services: services,
	}
	s.routes()
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// OpenAPI returns the generated OpenAPI spec.
func (s *Server) OpenAPI() *huma.OpenAPI {
	return s.humaAPI.OpenAPI()
}

func (s *Server) routes() {
	// JSON routes (OpenAPI-documented)
	huma.AutoRegister(s.humaAPI, api.NewAPIHandler(s.services))

	// Raw image routes; PNG streaming does not fit Huma's typed bodies
	s.mux.HandleFunc("/radar.png", s.handleRadarImage)
	s.mux.HandleFunc("/traffic.png", s.handleTrafficImage)
	s.mux.HandleFunc("/artwork.png", s.handleArtworkImage)

	// Datastar SSE signals for the display page
	s.mux.HandleFunc("/api/v1/display/updates", s.handleUpdates)

	s.mux.HandleFunc("/", s.handleRoot)
}

// handleRadarImage serves the current composed radar map. Until the
// first overlay and area config arrive there is nothing to show.
func (s *Server) handleRadarImage(w http.ResponseWriter, r *http.Request) {
	d := s.services.Display
	composed, err := d.Radar.Composed()
	switch {
	case errors.Is(err, radar.ErrNoOverlay), errors.Is(err, radar.ErrNoArea):
		http.Error(w, "no radar composed yet", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePNG(w, composed)
}

// handleTrafficImage serves the current traffic mosaic. An empty canvas
// is still a valid (transparent) image.
func (s *Server) handleTrafficImage(w http.ResponseWriter, r *http.Request) {
	s.writePNG(w, s.services.Display.Traffic.Snapshot())
}

// handleArtworkImage serves the latest album/station art, re-encoded
// as PNG regardless of broadcast format.
func (s *Server) handleArtworkImage(w http.ResponseWriter, r *http.Request) {
	img, _, ok := s.services.Display.Artwork.Current()
	if !ok {
		http.Error(w, "no artwork received yet", http.StatusNotFound)
		return
	}
	s.writePNG(w, img)
}

func (s *Server) writePNG(w http.ResponseWriter, img image.Image) {
	data, err := imaging.EncodePNG(img)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// handleUpdates streams version signals over Datastar SSE. The display
// page refetches an image whenever its version signal changes.
func (s *Server) handleUpdates(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)
	d := s.services.Display

	events := d.Bus.Subscribe()
	defer d.Bus.Unsubscribe(events)

	send := func() error {
		return sse.MarshalAndPatchSignals(map[string]any{
			"radarVersion":   d.Radar.Version(),
			"trafficVersion": d.Traffic.Version(),
			"artworkVersion": d.Artwork.Version(),
			"hasOverlay":     d.Radar.HasOverlay(),
		})
	}
	if err := send(); err != nil {
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case <-events:
			if err := send(); err != nil {
				return
			}
		}
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
