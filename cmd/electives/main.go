package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/app"
	"github.com/pickmyelective/electives/internal/config"
	logpkg "github.com/pickmyelective/electives/internal/logger"
	"github.com/pickmyelective/electives/internal/metrics"
	chiTransport "github.com/pickmyelective/electives/internal/transport/chi"
	explainuc "github.com/pickmyelective/electives/internal/usecase/explain"
	healthuc "github.com/pickmyelective/electives/internal/usecase/health"
	interpretuc "github.com/pickmyelective/electives/internal/usecase/interpret"
	recommenduc "github.com/pickmyelective/electives/internal/usecase/recommend"
	retrieveuc "github.com/pickmyelective/electives/internal/usecase/retrieve"
	"github.com/pickmyelective/electives/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, "api", cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting recommendation API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("index_backend", cfg.Index.Backend),
		zap.String("collection", cfg.Index.Collection),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterHTTPMetrics()
	metrics.RegisterRecommendMetrics()

	ctx := context.Background()
	backend, err := app.OpenBackend(ctx, cfg.Index, logger)
	if err != nil {
		logger.Fatal("Index backend not available", zap.Error(err))
	}
	defer backend.Close()

	// The served collection must exist before we accept traffic.
	coll, err := app.VerifyServing(ctx, backend.Index, cfg.Index.Collection, cfg.Embedding.Dimensions)
	if err != nil {
		logger.Fatal("Served collection is not usable", zap.Error(err))
	}
	logger.Info("Serving collection",
		zap.String("collection", coll.Name),
		zap.String("target", coll.Target),
		zap.Int("documents", coll.Count),
	)

	// Composition root
	embedder := app.BuildEmbedder(cfg.Embedding, backend.KV, cfg.Index.KeyPrefix, logger)
	generator, err := app.BuildGenerator(cfg.Generation, logger)
	if err != nil {
		logger.Fatal("Failed to create generation provider", zap.Error(err))
	}
	logger.Info("Providers created",
		zap.String("embedding_model", embedder.Model()),
		zap.Int("dimensions", embedder.Dimensions()),
		zap.String("generation_provider", cfg.Generation.Provider),
		zap.String("generation_model", cfg.Generation.Model),
	)

	interpretSvc := interpretuc.New(generator, embedder, cfg.Embedding.Dimensions, interpretuc.Config{
		MaxTokens:   cfg.Generation.Interpret.MaxTokens,
		Temperature: cfg.Generation.Interpret.Temperature,
	}, logger)
	retrieveSvc := retrieveuc.New(backend.Index, cfg.Index.Collection,
		retrieveuc.Weights{
			Relevance:   cfg.Ranking.RelevanceWeight,
			Elective:    cfg.Ranking.ElectiveWeight,
			MaxElective: cfg.Ranking.MaxElectiveScore,
		},
		retrieveuc.FetchPolicy{
			ScalarFactor: cfg.Ranking.ScalarFactor,
			ListFactor:   cfg.Ranking.ListFactor,
			ListFloor:    cfg.Ranking.ListFloor,
		},
	)
	explainSvc := explainuc.New(generator, explainuc.Config{
		MaxTokens:        cfg.Generation.Explain.MaxTokens,
		Temperature:      cfg.Generation.Explain.Temperature,
		Retries:          cfg.Generation.Explain.Retries,
		Backoff:          cfg.ExplainBackoff(),
		DescriptionLimit: cfg.Generation.Explain.DescriptionLimit,
	}, logger)
	recommendSvc := recommenduc.New(interpretSvc, retrieveSvc, explainSvc, recommenduc.Config{
		OverFetch:   cfg.Ranking.OverFetch,
		Concurrency: cfg.Generation.Explain.Concurrency,
	}, logger)

	healthSvc := healthuc.New(backend.Pinger, backend.Index, cfg.Index.Collection, embedder, generator)

	server := chiTransport.NewServer(recommendSvc, healthSvc, logger)
	handler := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		APIKeys:     cfg.Auth.APIKeys,
		CORSOrigins: cfg.Auth.CORSOrigins,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
