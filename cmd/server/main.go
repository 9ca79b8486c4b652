package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"signal-dashboard-go/internal/archive"
	"signal-dashboard-go/internal/config"
	"signal-dashboard-go/internal/ingest"
	"signal-dashboard-go/internal/logger"
	"signal-dashboard-go/internal/metrics"
	"signal-dashboard-go/internal/sink"
	"signal-dashboard-go/internal/store"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the local signal archive. Losing it is not fatal: the service
	// keeps running with the external sink as the only store.
	var archiveStore *archive.Archive
	if cfg.Archive.Enabled {
		archiveStore, err = archive.Open(cfg.Archive.DSN, log)
		if err != nil {
			log.Error("Failed to open signal archive, continuing without it", zap.Error(err))
			archiveStore = nil
		}
	}

	// Shared state and collaborators
	state := store.NewState(cfg.History.Capacity)
	sinkClient := sink.NewClient(&cfg.Sink, log)
	forwardTimeout := time.Duration(cfg.Sink.TimeoutSeconds) * time.Second
	pipeline := ingest.NewPipeline(log, state, sinkClient, archiveStore, cfg.Sink.DefaultChatID, forwardTimeout)

	// Seed state from the sink before accepting any ingests. Failure
	// leaves the state empty; the service still starts.
	seedCtx, cancelSeed := context.WithTimeout(context.Background(), forwardTimeout)
	ingest.NewReconciler(log, sinkClient).Seed(seedCtx, state)
	cancelSeed()

	// Setup HTTP server
	mux := http.NewServeMux()
	apiHandler := NewAPIHandler(log, state, pipeline, archiveStore)

	mux.HandleFunc("/webhook", apiHandler.WebhookHandler)
	mux.HandleFunc("/api/stats", apiHandler.StatsHandler)
	mux.HandleFunc("/api/signals", apiHandler.SignalsHandler)
	mux.HandleFunc("/api/archive", apiHandler.ArchiveHandler)
	mux.HandleFunc("/health", apiHandler.HealthHandler)
	mux.Handle("/metrics", metrics.Handler())

	// Static file serving for CSS, JS, etc.
	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("web/static"))))

	// HTML dashboard
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/templates/index.html")
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{Addr: addr, Handler: mux}

	// Graceful shutdown on SIGINT/SIGTERM
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	log.Info("Starting web server", zap.String("address", addr))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatal("Web server failed", zap.Error(err))
	}

	// Let in-flight forwards finish before the process exits.
	pipeline.Wait()
	log.Info("Server has been shut down.")
}
