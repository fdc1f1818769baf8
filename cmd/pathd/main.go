package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gnegDev/path/internal/analysis"
	"github.com/gnegDev/path/internal/common"
	"github.com/gnegDev/path/internal/document"
	"github.com/gnegDev/path/internal/export"
	"github.com/gnegDev/path/internal/extract"
	"github.com/gnegDev/path/internal/llm"
	"github.com/gnegDev/path/internal/repository"
	"github.com/gnegDev/path/internal/server"
	"github.com/gnegDev/path/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if cfg.Database.DSN == "" {
		logger.Error("DB_URL env var is required")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, pool, err := repository.Open(ctx, cfg.Database, logger)
	if err != nil {
		logger.Error("opening database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := repository.HealthCheck(ctx, pool, logger); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	if err := repository.Migrate(db); err != nil {
		logger.Error("schema migration failed", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewMinioStore(cfg.Storage, logger)
	if err != nil {
		logger.Error("creating object store client", "error", err)
		os.Exit(1)
	}
	if err := store.EnsureBucket(ctx); err != nil {
		logger.Error("ensuring bucket", "error", err)
		os.Exit(1)
	}

	extractor := extract.NewExtractor(logger)
	docRepo := repository.NewDocumentRepository(db, logger)
	analysisRepo := repository.NewAnalysisRepository(db, logger)

	extractGateway := llm.NewClient(cfg.Extract.Timeout, logger)
	analyzeGateway := llm.NewClient(cfg.Analyze.Timeout, logger)

	docSvc := document.NewService(docRepo, store, extractor, extractGateway, llm.EndpointConfig{
		BaseURL: cfg.Extract.BaseURL,
		APIKey:  cfg.Extract.APIKey,
		Model:   cfg.Extract.Model,
	}, logger)
	analysisSvc := analysis.NewService(docRepo, analysisRepo, store, extractor, analyzeGateway, llm.EndpointConfig{
		BaseURL:  cfg.Analyze.BaseURL,
		APIKey:   cfg.Analyze.APIKey,
		PromptID: cfg.Analyze.PromptID,
		Project:  cfg.Analyze.Project,
	}, logger)
	exportSvc := export.NewService(docRepo, logger)

	router := server.NewRouter(
		server.NewDocumentHandler(docSvc, exportSvc),
		server.NewAnalysisHandler(analysisSvc),
	)

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	logger.Info("stopped")
}
