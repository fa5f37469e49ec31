// Package ingest polls the decoder dump directory and feeds discovered
// files into the radar, traffic and artwork pipelines. Consumed files
// are deleted: at most one consumption per poll, and stations resend
// anything that matters.
package ingest

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/KYDronePilot/hdfm/internal/config"
	"github.com/KYDronePilot/hdfm/internal/display"
	"github.com/KYDronePilot/hdfm/internal/imaging"
	"github.com/KYDronePilot/hdfm/internal/journal"
	"github.com/KYDronePilot/hdfm/internal/mapcache"
	"github.com/KYDronePilot/hdfm/internal/radar"
	"github.com/KYDronePilot/hdfm/internal/station"
	"github.com/KYDronePilot/hdfm/internal/traffic"
)

// Dump directory naming patterns the station network uses.
const (
	configPattern  = "DWRI_*"
	overlayPattern = "DWRO_*"
	tilePattern    = "*TMT*"
)

// Artifact kinds recorded in the journal.
const (
	KindAreaConfig   = "area_config"
	KindRadarOverlay = "radar_overlay"
	KindTrafficTile  = "traffic_tile"
	KindArtwork      = "artwork"
)

// Watcher drives the three pipelines off periodic dump directory scans.
type Watcher struct {
	cfg     config.Config
	disp    *display.Display
	journal *journal.Journal // optional
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a watcher. jnl may be nil to disable reception history.
func New(cfg config.Config, disp *display.Display, jnl *journal.Journal, logger *slog.Logger) *Watcher {
	return &Watcher{
		cfg:     cfg,
		disp:    disp,
		journal: jnl,
		logger:  logger,
		now:     time.Now,
	}
}

// Run polls until ctx is cancelled. The radar, traffic and artwork
// pipelines run independently; none shares mutable state with another,
// so each gets its own loop goroutine.
func (w *Watcher) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return w.loop(ctx, w.pollRadar) })
	g.Go(func() error { return w.loop(ctx, w.pollTraffic) })
	g.Go(func() error { return w.loop(ctx, w.pollArtwork) })
	return g.Wait()
}

func (w *Watcher) loop(ctx context.Context, tick func(context.Context)) error {
	// First scan immediately so a restart picks up waiting files.
	tick(ctx)

	ticker := time.NewTicker(time.Duration(w.cfg.PollInterval))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick(ctx)
		}
	}
}

// pollRadar handles station config files and radar overlays in one
// tick. Config is applied before overlays so a first-ever tick with
// both files present composes against the right area.
func (w *Watcher) pollRadar(ctx context.Context) {
	w.consumeConfigs(ctx)
	w.consumeOverlays(ctx)
}

// consumeConfigs applies the first parsable area config found and
// deletes every config file in the scan. A malformed config means "no
// config yet": logged at debug, retried next poll.
func (w *Watcher) consumeConfigs(ctx context.Context) {
	files := w.glob(configPattern)
	if len(files) == 0 {
		return
	}

	applied := false
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			w.logger.Warn("reading config file", "file", file, "err", err)
			continue
		}
		w.record(ctx, KindAreaConfig, file, int64(len(data)))
		if applied {
			continue
		}

		cfg, err := station.ParseAreaConfig(string(data))
		if err != nil {
			w.logger.Debug("config not yet parsable", "file", file, "err", err)
			continue
		}
		w.disp.Radar.Configure(cfg)
		w.publish(display.PipelineRadar, w.disp.Radar.Version())
		w.logger.Info("station area configured",
			"area_id", cfg.AreaID,
			"bound", cfg.BBox.Bound(),
		)
		applied = true
	}
	w.removeAll(files)
}

// consumeOverlays loads the first decodable overlay and deletes every
// overlay file found in the scan: stations resend duplicates, and only
// the newest overlay in a poll window is ever used.
func (w *Watcher) consumeOverlays(ctx context.Context) {
	files := w.glob(overlayPattern)
	if len(files) == 0 {
		return
	}

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			w.logger.Warn("reading overlay file", "file", file, "err", err)
			continue
		}
		img, err := imaging.Decode(data)
		if err != nil {
			w.logger.Warn("undecodable radar overlay", "file", file, "err", err)
			continue
		}

		w.disp.Radar.UpdateOverlay(img)
		w.record(ctx, KindRadarOverlay, file, int64(len(data)))
		w.publish(display.PipelineRadar, w.disp.Radar.Version())
		w.saveRadar()
		break
	}
	w.removeAll(files)
}

// saveRadar writes a timestamped copy of the fresh composite when
// saving is enabled.
func (w *Watcher) saveRadar() {
	if !w.cfg.SaveComposites {
		return
	}
	composed, err := w.disp.Radar.Composed()
	switch {
	case errors.Is(err, radar.ErrNoArea):
		// Overlay arrived before any config; nothing to save yet.
		w.logger.Debug("skipping radar save", "err", err)
		return
	case errors.Is(err, mapcache.ErrMasterMapUnavailable), errors.Is(err, mapcache.ErrCacheWrite):
		w.logger.Error("radar pipeline halted", "err", err)
		return
	case err != nil:
		w.logger.Warn("composing radar map", "err", err)
		return
	}

	path := filepath.Join(w.cfg.SaveDir, "radar_"+w.now().Format(imaging.TimestampFormat)+".png")
	if err := imaging.WritePNG(path, composed); err != nil {
		w.logger.Warn("saving radar map", "path", path, "err", err)
	}
}

// pollTraffic pastes every tile found in the scan. Malformed or
// undecodable tiles are skipped, deleted and logged; the batch
// continues. Duplicate slots within a poll are last-write-wins.
func (w *Watcher) pollTraffic(ctx context.Context) {
	files := w.glob(tilePattern)
	processed := false
	completed := false

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			w.logger.Warn("reading tile file", "file", file, "err", err)
			continue
		}

		tile, err := w.parseTile(file, data)
		if err != nil {
			w.logger.Warn("skipping traffic tile", "file", file, "err", err)
			w.remove(file)
			continue
		}

		if w.disp.Traffic.AddTile(tile) {
			completed = true
		}
		w.record(ctx, KindTrafficTile, file, int64(len(data)))
		w.remove(file)
		processed = true
	}

	if processed {
		w.publish(display.PipelineTraffic, w.disp.Traffic.Version())
	}
	if completed && w.cfg.SaveComposites {
		path := filepath.Join(w.cfg.SaveDir, "traffic_"+w.now().Format(imaging.TimestampFormat)+".png")
		if err := imaging.WritePNG(path, w.disp.Traffic.Snapshot()); err != nil {
			w.logger.Warn("saving traffic map", "path", path, "err", err)
		}
	}
}

func (w *Watcher) parseTile(file string, data []byte) (traffic.Tile, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return traffic.Tile{}, err
	}
	return traffic.NewTile(filepath.Base(file), img)
}

// pollArtwork keeps the newest decodable art file and deletes every
// match, same replace-not-accumulate policy as overlays.
func (w *Watcher) pollArtwork(ctx context.Context) {
	files := w.glob(w.cfg.ArtworkPattern)
	if len(files) == 0 {
		return
	}

	// Newest first by modification time.
	sort.Slice(files, func(i, j int) bool {
		return mtime(files[i]).After(mtime(files[j]))
	})

	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			w.logger.Warn("reading artwork file", "file", file, "err", err)
			continue
		}
		img, err := imaging.Decode(data)
		if err != nil {
			w.logger.Warn("undecodable artwork", "file", file, "err", err)
			continue
		}

		w.disp.Artwork.Update(filepath.Base(file), img)
		w.record(ctx, KindArtwork, file, int64(len(data)))
		w.publish(display.PipelineArtwork, w.disp.Artwork.Version())
		break
	}
	w.removeAll(files)
}

func (w *Watcher) glob(pattern string) []string {
	files, err := filepath.Glob(filepath.Join(w.cfg.DumpDir, pattern))
	if err != nil {
		w.logger.Warn("scanning dump directory", "pattern", pattern, "err", err)
		return nil
	}
	return files
}

func (w *Watcher) record(ctx context.Context, kind, file string, size int64) {
	if w.journal == nil {
		return
	}
	if err := w.journal.Record(ctx, kind, filepath.Base(file), size, w.now()); err != nil {
		w.logger.Warn("recording artifact", "kind", kind, "file", file, "err", err)
	}
}

func (w *Watcher) publish(pipeline string, version uint64) {
	w.disp.Bus.Publish(display.Event{Pipeline: pipeline, Version: version})
}

func (w *Watcher) remove(file string) {
	if err := os.Remove(file); err != nil {
		w.logger.Warn("deleting consumed file", "file", file, "err", err)
	}
}

func (w *Watcher) removeAll(files []string) {
	for _, file := range files {
		w.remove(file)
	}
}

func mtime(file string) time.Time {
	info, err := os.Stat(file)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
