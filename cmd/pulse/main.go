package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/solstice-sh/pulse/internal/config"
	"github.com/solstice-sh/pulse/internal/ingest"
	"github.com/solstice-sh/pulse/internal/learning"
	"github.com/solstice-sh/pulse/internal/persist"
	"github.com/solstice-sh/pulse/internal/state"
	"github.com/solstice-sh/pulse/internal/stream"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	// Parse flags
	var (
		showVersion = flag.Bool("version", false, "Show version and exit")
		configPath  = flag.String("config", "config.toml", "Path to config file")
		debug       = flag.Bool("debug", false, "Enable debug logging")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("pulse %s\n", Version)
		os.Exit(0)
	}

	// Initialize logging
	if err := initLogging(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().Str("version", Version).Msg("Starting pulse")

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	log.Debug().Interface("config", cfg).Msg("Configuration loaded")

	// Initialize the local cache
	local, err := persist.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize local cache")
	}
	defer local.Close()
	log.Debug().Msg("Local cache initialized")

	var remote *persist.Remote
	if cfg.Learn.RemoteURL != "" {
		remote = persist.NewRemote(cfg.Learn.RemoteURL)
	}
	sidecar := persist.NewSidecar(local, remote)

	// Initialize the state store and its derived engines
	store := state.New()
	defer store.Close()

	tracker := learning.NewTracker(store, sidecar)

	// One-shot cold-start reconciliation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if ls, history, ok := sidecar.Bootstrap(ctx); ok {
		tracker.Seed(ls, history)
		log.Info().Int("total_calls", ls.TotalCalls).Msg("Learning state restored")
	} else {
		log.Info().Msg("No prior learning state, starting fresh")
	}

	// Ingestion adapter + streaming transport
	adapter := ingest.New(store)
	adapter.SetRecorder(tracker)

	client := stream.NewClient(cfg.Stream.URL, adapter)
	go client.Run(ctx)
	log.Debug().Str("url", cfg.Stream.URL).Msg("Stream client started")

	// Set up signal handling for graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	log.Info().Msg("Received shutdown signal")

	cancel()
	sidecar.Wait()

	log.Info().Msg("pulse shutdown complete")
}

func initLogging(debug bool) error {
	// Ensure data directory exists
	dataDir, err := config.EnsureDataDir()
	if err != nil {
		return fmt.Errorf("ensure data dir: %w", err)
	}

	// Open log file (truncate on startup)
	logPath := filepath.Join(dataDir, "pulse.log")
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}

	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Log to file only (display surfaces own stdout/stderr)
	log.Logger = zerolog.New(logFile).With().Timestamp().Logger()

	return nil
}
