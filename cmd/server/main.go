package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lexmx/articulado/internal/api"
	"github.com/lexmx/articulado/internal/config"
	"github.com/lexmx/articulado/internal/extractor"
	"github.com/lexmx/articulado/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Rule sets are immutable once registered; rebuild them when lowercase
	// keyword matching is enabled.
	if cfg.MatchLowercaseKeywords {
		opts := extractor.Options{MatchLowercase: true}
		extractor.Register(extractor.NewLeyRules(opts))
		extractor.Register(extractor.NewReglamentoRules(opts))
		log.Info("lowercase keyword matching enabled")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, log)
	orch.Start(ctx)

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: stop accepting requests before draining workers, so
	// no submission races a closed queue.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		httpServer.Shutdown(shutdownCtx)

		orch.Stop()
	}()

	log.Info("starting articulado",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"classifications", extractor.Classifications(),
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
