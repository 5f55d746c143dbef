// Package interpret turns a raw query into topics and a query embedding.
package interpret

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/recommend"
	"github.com/pickmyelective/electives/internal/metrics"
)

// Config bounds the interpretation call.
type Config struct {
	MaxTokens   int     // default 200
	Temperature *float32 // nil means 0.2
}

// Service interprets and embeds queries.
type Service struct {
	gen         Generator
	embed       Embedder
	dims        int
	cfg         Config
	temperature float32
	logger      *zap.Logger
}

// New creates an interpretation service. dims is the index dimensionality;
// every query embedding must match it exactly.
func New(gen Generator, embed Embedder, dims int, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 200
	}
	temperature := float32(0.2)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &Service{gen: gen, embed: embed, dims: dims, cfg: cfg, temperature: temperature, logger: logger}
}

// Interpret asks the model for topics. It never fails: any model or parse
// error yields recommend.FallbackInterpretation(query).
func (s *Service) Interpret(ctx context.Context, query string) recommend.Interpretation {
	res, err := s.gen.Generate(ctx, domain.GenerationRequest{
		Stage:       domain.StageInterpret,
		Prompt:      BuildPrompt(query),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.temperature,
		JSON:        true,
	})
	if err != nil {
		return s.fallback(ctx, query, err)
	}

	in, err := Parse(res.Text, query)
	if err != nil {
		return s.fallback(ctx, query, err)
	}
	return in
}

func (s *Service) fallback(ctx context.Context, query string, cause error) recommend.Interpretation {
	if ctx.Err() == nil {
		s.logger.Warn("Query interpretation fell back to raw query", zap.Error(cause))
	}
	metrics.GenerationFallbacksTotal.WithLabelValues(string(domain.StageInterpret)).Inc()
	return recommend.FallbackInterpretation(query)
}

// Embed vectorizes the interpretation's search text.
func (s *Service) Embed(ctx context.Context, in recommend.Interpretation) ([]float32, error) {
	res, err := s.embed.Embed(ctx, in.SearchText())
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if err := domain.CheckDimensions(res.Embedding, s.dims); err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return res.Embedding, nil
}

type modelOutput struct {
	Topics         []string `json:"topics"`
	Interpretation string   `json:"interpretation"`
}

// Parse decodes the model's JSON object, tolerating a surrounding code fence.
// Missing topics fall back to the query itself; a missing interpretation
// gets the templated sentence. Only undecodable output is an error.
func Parse(text, query string) (recommend.Interpretation, error) {
	var out modelOutput
	if err := json.Unmarshal([]byte(stripFence(text)), &out); err != nil {
		return recommend.Interpretation{}, fmt.Errorf("decode interpretation: %w", err)
	}

	topics := make([]string, 0, len(out.Topics))
	for _, t := range out.Topics {
		if t = strings.TrimSpace(t); t != "" {
			topics = append(topics, t)
		}
	}
	fb := recommend.FallbackInterpretation(query)
	if len(topics) == 0 {
		topics = fb.Topics
	}
	summary := strings.TrimSpace(out.Interpretation)
	if summary == "" {
		summary = fb.Summary
	}
	return recommend.Interpretation{Topics: topics, Summary: summary}, nil
}

func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
