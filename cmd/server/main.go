package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/harvestparse/internal/api"
	"github.com/dgallion1/harvestparse/internal/config"
	"github.com/dgallion1/harvestparse/internal/harvest"
	"github.com/dgallion1/harvestparse/internal/pipeline"
	"github.com/dgallion1/harvestparse/internal/store"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		log.Error("load configuration", "error", err)
		os.Exit(1)
	}
	if err := cfg.ValidateServer(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Optional record store.
	var db *store.Store
	if cfg.DBPath != "" {
		db, err = store.Open(ctx, cfg.DBPath)
		if err != nil {
			log.Error("open record store", "path", cfg.DBPath, "error", err)
			os.Exit(1)
		}
	}

	// Initialize pipeline.
	opts := cfg.ParserOptions()
	opts.Logger = log
	stats := pipeline.NewStats(time.Hour)
	worker := pipeline.NewWorker(harvest.NewParser(opts), db, stats, log, pipeline.WorkerConfig{
		PDFFallbackPdftotext: cfg.PDFFallbackPdftotext,
		OutputDir:            cfg.OutputDir,
	})
	orch := pipeline.NewOrchestrator(pipeline.OrchestratorConfig{
		WorkerCount:  cfg.WorkerCount,
		MaxQueueSize: cfg.MaxQueueSize,
		JobTTL:       cfg.JobTTL,
	}, worker, stats, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, db, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
		if db != nil {
			db.Close()
		}
	}()

	log.Info("starting harvestparse", "port", cfg.Port, "species", cfg.Species, "workers", cfg.WorkerCount)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
