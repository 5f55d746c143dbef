package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/config"
	"github.com/pickmyelective/electives/internal/db"
	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/metrics"
	"github.com/pickmyelective/electives/internal/repository/embcache"
	"github.com/pickmyelective/electives/internal/transport/ollama"
	openaiProvider "github.com/pickmyelective/electives/internal/transport/openai"
	embeddinguc "github.com/pickmyelective/electives/internal/usecase/embedding"
)

// BuildEmbedder assembles the decorator chain: OpenAI -> Cached (optional) -> Instrumented.
// kv nil or a zero TTL disables the cache.
func BuildEmbedder(
	cfg config.EmbeddingConfig, kv db.KVStore, keyPrefix string, logger *zap.Logger,
) *embeddinguc.InstrumentedEmbedder {
	base := openaiProvider.NewEmbedder(&openaiProvider.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	var embedder domain.Embedder = base
	if kv != nil && cfg.CacheTTLSec > 0 {
		embedder = embcache.New(base, kv, embcache.Config{
			KeyPrefix: keyPrefix,
			Model:     cfg.Model,
			TTL:       time.Duration(cfg.CacheTTLSec) * time.Second,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.Provider, cfg.Model, cfg.Dimensions, logger,
	).WithMaxBatchSize(cfg.MaxBatchSize)
}

// Generator is a text generation provider that can report its health.
type Generator interface {
	domain.Generator
	domain.HealthChecker
}

// BuildGenerator creates the configured generation provider.
func BuildGenerator(cfg config.GenerationConfig, logger *zap.Logger) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	switch cfg.Provider {
	case config.ProviderOllama:
		gen, err := ollama.NewGenerator(ollama.Config{
			Host:    cfg.BaseURL,
			Model:   cfg.Model,
			Timeout: timeout,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}
		return gen, nil
	default:
		return openaiProvider.NewGenerator(&openaiProvider.Config{
			APIKey:   cfg.APIKey,
			BaseURL:  cfg.BaseURL,
			Model:    cfg.Model,
			Provider: cfg.Provider,
			Timeout:  timeout,
			Logger:   logger,
		}), nil
	}
}
