package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KYDronePilot/hdfm/internal/api"
	"github.com/KYDronePilot/hdfm/internal/artwork"
	"github.com/KYDronePilot/hdfm/internal/config"
	"github.com/KYDronePilot/hdfm/internal/display"
	"github.com/KYDronePilot/hdfm/internal/imaging"
	"github.com/KYDronePilot/hdfm/internal/ingest"
	"github.com/KYDronePilot/hdfm/internal/journal"
	"github.com/KYDronePilot/hdfm/internal/mapcache"
	"github.com/KYDronePilot/hdfm/internal/radar"
	"github.com/KYDronePilot/hdfm/internal/server"
	"github.com/KYDronePilot/hdfm/internal/traffic"
)

// Options defines all CLI flags and env vars for the companion service.
// Flags: --host, --port, --config, --dump-dir, --no-journal
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_CONFIG, SERVICE_DUMP_DIR, SERVICE_NO_JOURNAL
type Options struct {
	Host      string `doc:"Host to bind to" default:"127.0.0.1"`
	Port      int    `doc:"Port to listen on" short:"p" default:"8087"`
	Config    string `doc:"Path to YAML config file" short:"c"`
	DumpDir   string `doc:"Override the decoder dump directory"`
	NoJournal bool   `doc:"Disable the DuckDB reception journal"`
}

// app is everything a running service needs.
type app struct {
	cfg     config.Config
	srv     *server.Server
	watcher *ingest.Watcher
	journal *journal.Journal
}

func newApp(opts *Options, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(opts.Config)
	if err != nil {
		return nil, err
	}
	if opts.DumpDir != "" {
		cfg.DumpDir = opts.DumpDir
	}
	if err := cfg.EnsureDirs(); err != nil {
		return nil, err
	}

	stamper, err := imaging.NewStamper(cfg.FontFile)
	if err != nil {
		return nil, err
	}

	disp := display.New(
		radar.New(mapcache.New(cfg.MasterMapFile, cfg.CacheDir()), stamper),
		traffic.NewMosaic(),
		artwork.NewManager(),
	)

	var jnl *journal.Journal
	if !opts.NoJournal {
		jnl, err = journal.Open(context.Background(), journal.Config{
			DataDir: cfg.DataDir,
			DBName:  "hdfm",
		})
		if err != nil {
			// History is nice to have; the pipelines are not.
			logger.Warn("reception journal disabled", "err", err)
			jnl = nil
		}
	}

	services := &api.Services{Display: disp, Journal: jnl, DumpDir: cfg.DumpDir}
	return &app{
		cfg:     cfg,
		srv:     server.New(server.Config{Host: opts.Host, Port: fmt.Sprintf("%d", opts.Port)}, services),
		watcher: ingest.New(cfg, disp, jnl, logger),
		journal: jnl,
	}, nil
}

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			a, err := newApp(opts, logger)
			if err != nil {
				logger.Error("startup failed", "err", err)
				os.Exit(1)
			}

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			logger.Info("hdfm starting",
				"addr", addr,
				"dump_dir", a.cfg.DumpDir,
				"data_dir", a.cfg.DataDir,
			)
			logger.Info("display", "url", fmt.Sprintf("http://%s/", addr), "docs", fmt.Sprintf("http://%s/docs", addr))

			go func() {
				if err := a.watcher.Run(ctx); err != nil && ctx.Err() == nil {
					logger.Error("ingest stopped", "err", err)
				}
			}()

			if err := http.ListenAndServe(addr, a.srv); err != nil {
				logger.Error("server error", "err", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			cancel()
		})
	})

	cli.Root().Use = "hdfm"
	cli.Root().Short = "HD-Radio decoder companion: weather radar, traffic and artwork display"
	cli.Root().Version = "1.0.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			srv := server.New(
				server.Config{Host: opts.Host, Port: fmt.Sprintf("%d", opts.Port)},
				&api.Services{Display: display.New(nil, traffic.NewMosaic(), artwork.NewManager())},
			)
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Run()
}
