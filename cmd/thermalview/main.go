package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"thermalview/internal/camera"
	"thermalview/internal/config"
	"thermalview/internal/display"
	"thermalview/internal/encoder"
	"thermalview/internal/pacer"
	"thermalview/internal/processing"
	"thermalview/internal/storage"
	"thermalview/internal/stream"
	"thermalview/internal/surface"
	"thermalview/internal/telemetry"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath  string
		source      string
		playbackDir string
		palette     string
		listen      string
		captureDir  string
		logLevel    string
		bufferSize  int
		quality     int
		noOverlay   bool
	)

	cmd := &cobra.Command{
		Use:          "thermalview",
		Short:        "Live thermal camera viewer",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			// Flags beat the config file, but only when actually set.
			flags := cmd.Flags()
			if flags.Changed("source") {
				cfg.Source = source
			}
			if flags.Changed("playback-dir") {
				cfg.PlaybackDir = playbackDir
			}
			if flags.Changed("palette") {
				cfg.Palette = palette
			}
			if flags.Changed("listen") {
				cfg.Listen = listen
			}
			if flags.Changed("capture-dir") {
				cfg.CaptureDir = captureDir
			}
			if flags.Changed("log-level") {
				cfg.LogLevel = logLevel
			}
			if flags.Changed("buffer") {
				cfg.BufferSize = bufferSize
			}
			if flags.Changed("quality") {
				cfg.Quality = quality
			}
			if flags.Changed("no-overlay") {
				cfg.Overlay = !noOverlay
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to TOML config file")
	cmd.Flags().StringVar(&source, "source", "pattern", "Frame source: pattern or playback")
	cmd.Flags().StringVar(&playbackDir, "playback-dir", "", "Capture directory for the playback source")
	cmd.Flags().StringVar(&palette, "palette", "iron", "Color palette: iron, rainbow, gray")
	cmd.Flags().StringVar(&listen, "listen", "", "HTTP listen address for remote view and metrics (empty disables)")
	cmd.Flags().StringVar(&captureDir, "capture-dir", "", "Primary capture storage directory")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level: trace, debug, info, warn, error")
	cmd.Flags().IntVar(&bufferSize, "buffer", 5, "Frame ring buffer capacity")
	cmd.Flags().IntVar(&quality, "quality", 85, "JPEG quality for captures and streaming (1-100)")
	cmd.Flags().BoolVar(&noOverlay, "no-overlay", false, "Disable the on-screen metrics overlay")
	return cmd
}

func run(cfg config.Config) error {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.TimeOnly}).
		Level(level).With().Timestamp().Logger()

	pal, err := processing.Lookup(cfg.Palette)
	if err != nil {
		return err
	}

	var src camera.Source
	switch cfg.Source {
	case "playback":
		src, err = camera.NewPlaybackSource(cfg.PlaybackDir, cfg.FPS)
		if err != nil {
			return err
		}
	default:
		src = camera.NewPatternSource(cfg.Width, cfg.Height)
	}

	enc := encoder.NewJPEGEncoder(cfg.Quality)
	store, err := storage.New(cfg.CaptureDir, enc, log.With().Str("component", "storage").Logger())
	if err != nil {
		return err
	}

	p := pacer.New(cfg.BufferSize)
	bridge := surface.NewBridge(log.With().Str("component", "render").Logger())

	var (
		streamSrv *stream.Server
		httpSrv   *http.Server
	)
	if cfg.Listen != "" {
		streamSrv = stream.NewServer(enc, log.With().Str("component", "stream").Logger())
		tel := telemetry.New(p, streamSrv.ClientCount)

		router := streamSrv.Router()
		router.Method(http.MethodGet, "/metrics", tel.Handler())
		httpSrv = &http.Server{Addr: cfg.Listen, Handler: router}
		go func() {
			log.Info().Str("addr", cfg.Listen).Msg("remote view listening")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("http server failed")
			}
		}()
	}

	opts := display.Options{
		Pacer:   p,
		Bridge:  bridge,
		Source:  src,
		Palette: pal,
		Storage: store,
		Log:     log.With().Str("component", "viewer").Logger(),
		Overlay: cfg.Overlay,
		MinTemp: cfg.MinTemp,
		MaxTemp: cfg.MaxTemp,
	}
	if streamSrv != nil {
		opts.Stream = streamSrv
	}

	log.Info().
		Str("source", cfg.Source).
		Str("palette", cfg.Palette).
		Int("buffer", cfg.BufferSize).
		Msg("thermalview starting")

	runErr := display.NewViewer(opts).Run()

	if streamSrv != nil {
		streamSrv.Close()
	}
	if httpSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(ctx); err != nil {
			log.Warn().Err(err).Msg("http shutdown")
		}
	}
	return runErr
}
