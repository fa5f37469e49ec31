// Package config loads the application configuration from YAML with
// built-in defaults. Everything path-like lives here so components can
// be handed explicit directories instead of reading globals.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all settings for the companion service.
type Config struct {
	// DumpDir is where the external decoder drops received files.
	DumpDir string `yaml:"dumpDir"`
	// DataDir holds the map cache and the reception journal.
	DataDir string `yaml:"dataDir"`
	// SaveDir receives timestamped copies of completed composites when
	// SaveComposites is set.
	SaveDir        string `yaml:"saveDir"`
	SaveComposites bool   `yaml:"saveComposites"`

	// MasterMapFile is the pre-rendered street map asset.
	MasterMapFile string `yaml:"masterMapFile"`
	// FontFile is the OpenType font for timestamps; empty selects a
	// built-in bitmap face.
	FontFile string `yaml:"fontFile"`

	// ArtworkPattern is the dump-directory glob for album/station art
	// files.
	ArtworkPattern string `yaml:"artworkPattern"`

	// PollInterval is how often each pipeline scans the dump directory.
	PollInterval Duration `yaml:"pollInterval"`
}

// Duration adds YAML support for duration strings like "2s" or "500ms".
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DumpDir:        filepath.Join(os.TempDir(), "hdfm_dump"),
		DataDir:        ".data",
		SaveDir:        "saves",
		MasterMapFile:  filepath.Join("assets", "us_map.png"),
		ArtworkPattern: "*.jpg",
		PollInterval:   Duration(2 * time.Second),
	}
}

// Load reads a YAML config file over the defaults. An empty path
// returns the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = Default().PollInterval
	}
	return cfg, nil
}

// CacheDir is where rendered area maps are cached.
func (c Config) CacheDir() string {
	return filepath.Join(c.DataDir, "maps")
}

// EnsureDirs creates the directories the service writes to.
func (c Config) EnsureDirs() error {
	dirs := []string{c.DumpDir, c.DataDir, c.CacheDir()}
	if c.SaveComposites {
		dirs = append(dirs, c.SaveDir)
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}
	return nil
}
