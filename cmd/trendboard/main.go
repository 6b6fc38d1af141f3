package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trendboard/internal/artifacts"
	"trendboard/internal/cfg"
	"trendboard/internal/dashboard"
	"trendboard/internal/metrics"
	"trendboard/internal/storage"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

func main() {
	// Optional .env for local runs; the environment wins over the file.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg(".env load failed")
	}

	c, err := cfg.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize components
	m := metrics.New()
	store := initializeStorage(c)
	if store != nil {
		defer store.Close()
	}

	// Start metrics server
	startMetricsServer(ctx, c)

	// Mirror pipeline artifacts before first render if a mirror is configured
	runMirrorSync(ctx, c, m)

	// Watch artifact dirs and push refreshes to open dashboards
	watcher := artifacts.NewWatcher(c.WatchInterval, m, c.AssetsPath, c.ReportsPath)
	go watcher.Run(ctx)

	// Start the dashboard
	dash := dashboard.New(c, m, store, watcher.Events())
	if err := dash.Start(); err != nil {
		log.Fatal().Err(err).Msg("dashboard start failed")
	}

	// Wait for shutdown signal
	waitForShutdown(ctx)

	if err := dash.Stop(); err != nil {
		log.Error().Err(err).Msg("dashboard shutdown failed")
	}
}

// initializeStorage initializes the view log if DATA_PATH is configured
func initializeStorage(c cfg.Settings) *storage.Store {
	if c.DataPath != "" {
		store, err := storage.New(c.DataPath)
		if err != nil {
			log.Warn().Err(err).Msg("storage initialization failed, continuing without view log")
			return nil
		}
		return store
	}
	return nil
}

// startMetricsServer starts the Prometheus metrics HTTP server
func startMetricsServer(ctx context.Context, c cfg.Settings) {
	go func() {
		mux := http.NewServeMux()

		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		mux.Handle("/metrics", promhttp.Handler())

		server := &http.Server{
			Addr:              fmt.Sprintf(":%d", c.MetricsPort),
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       60 * time.Second,
		}

		go func() {
			<-ctx.Done()
			if err := server.Shutdown(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to shutdown metrics server")
			}
		}()

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("metrics server failed")
		}
	}()
}

// runMirrorSync mirrors pipeline artifacts when MIRROR_URL is configured
func runMirrorSync(ctx context.Context, c cfg.Settings, m *metrics.Metrics) {
	if c.MirrorURL == "" {
		return
	}

	sync := artifacts.NewSync(c.MirrorURL, c.SyncTimeout, m)
	synced, err := sync.Mirror(ctx, c.AssetsPath, c.ReportsPath)
	if err != nil {
		log.Warn().Err(err).Msg("artifact mirror failed, serving existing local artifacts")
		return
	}
	log.Info().Int("synced", synced).Msg("artifact mirror finished")
}

// waitForShutdown waits for shutdown signals
func waitForShutdown(ctx context.Context) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Info().Msg("shutdown signal received")
	case <-ctx.Done():
		log.Info().Msg("context canceled")
	}

	log.Info().Msg("shutting down gracefully...")
}
