package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/app"
	"github.com/pickmyelective/electives/internal/config"
	logpkg "github.com/pickmyelective/electives/internal/logger"
	"github.com/pickmyelective/electives/internal/metrics"
	indexinguc "github.com/pickmyelective/electives/internal/usecase/indexing"
)

type globalOptions struct {
	configPath string
}

// session is everything a subcommand needs, opened from config.
type session struct {
	cfg     config.Config
	logger  *zap.Logger
	backend *app.Backend
	svc     *indexinguc.Service
}

func (o *globalOptions) loadConfig() (config.Config, string, error) {
	env := config.GetEnv()
	if o.configPath != "" {
		cfg, err := config.LoadFile(o.configPath)
		return cfg, env, err
	}
	cfg, err := config.Load(env)
	return cfg, env, err
}

func open(ctx context.Context, o *globalOptions) (*session, error) {
	cfg, env, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logpkg.NewLogger(env, "indexer", cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	metrics.RegisterEmbeddingMetrics()

	backend, err := app.OpenBackend(ctx, cfg.Index, logger)
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}

	// Documents are embedded once per run, so the query cache stays out of the chain.
	embedder := app.BuildEmbedder(cfg.Embedding, nil, cfg.Index.KeyPrefix, logger)

	svc := indexinguc.New(backend.Index, embedder, indexinguc.Config{
		Collection: cfg.Index.Collection,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		BatchSize:  cfg.Indexer.BatchSize,
		Delay:      cfg.IndexerDelay(),
	}, logger)

	return &session{cfg: cfg, logger: logger, backend: backend, svc: svc}, nil
}

func (r *session) close() {
	r.backend.Close()
	_ = r.logger.Sync()
}
