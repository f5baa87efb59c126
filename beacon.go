package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/vizfeed/beacon/admin"
	"github.com/vizfeed/beacon/cfg"
	"github.com/vizfeed/beacon/publisher"
	"github.com/vizfeed/beacon/telemetry"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	// Register sink factories
	_ "github.com/vizfeed/beacon/publisher/sink"
)

func main() {
	flag.Parse()

	// Load configuration
	err := cfg.Load(*cfg.ConfigPathFlag)
	if err != nil {
		panic(err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid configuration: %v", err))
	}

	// Setup logging
	var writer io.Writer = zerolog.NewConsoleWriter()
	if cfg.Config.Logging.Format == "json" {
		writer = os.Stdout
	}
	gLog := zerolog.New(writer).
		With().
		Timestamp().
		Uint64("node_id", cfg.Config.NodeID).
		Logger()

	if cfg.Config.Logging.Verbose {
		log.Logger = gLog.Level(zerolog.DebugLevel)
	} else {
		log.Logger = gLog.Level(zerolog.InfoLevel)
	}

	log.Info().Msg("Beacon - Periodic Visualization Marker Broadcaster")
	log.Debug().Msg("Initializing telemetry")
	telemetry.InitializeTelemetry()
	telemetry.InitMetrics()

	// Build the marker registry with one broadcaster per configured sink
	registry, err := publisher.NewMarkerRegistry(publisher.RegistryConfig{
		TopicNamespace: cfg.Config.TopicNamespace,
		TopicName:      cfg.Config.TopicName,
		NodeID:         cfg.Config.NodeID,
		Interval:       time.Duration(cfg.Config.PublishIntervalMS) * time.Millisecond,
		SinkConfigs:    cfg.Config.Sinks,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize marker registry")
	}

	// Metrics + admin HTTP listener
	httpServer := startHTTPServer(registry)

	if err := registry.Start(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start marker registry")
	}

	log.Info().
		Str("topic", registry.Topic()).
		Int("interval_ms", cfg.Config.PublishIntervalMS).
		Int("sinks", len(cfg.Config.Sinks)).
		Msg("Beacon is operational")

	// Block until shutdown signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info().Msg("Shutdown signal received")

	registry.Stop()

	if httpServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("HTTP server shutdown failed")
		}
	}

	log.Info().Msg("Beacon stopped")
}

// startHTTPServer serves /metrics and, when enabled, the /admin API on the
// prometheus listener. Returns nil when the listener is disabled.
func startHTTPServer(registry *publisher.MarkerRegistry) *http.Server {
	if !cfg.Config.Prometheus.Enabled {
		return nil
	}

	mux := http.NewServeMux()

	if handler := telemetry.GetMetricsHandler(); handler != nil {
		mux.Handle("/metrics", handler)
	}

	if cfg.Config.Admin.Enabled {
		admin.RegisterRoutes(mux, admin.NewAdminHandlers(registry))
	}

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Config.Prometheus.Address, cfg.Config.Prometheus.Port),
		Handler: mux,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	return server
}
