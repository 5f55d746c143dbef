// Package ollama adapts a local Ollama server to the generation contract.
package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/metrics"
)

const provider = "ollama"

// Generator generates text through Ollama's /api/generate endpoint.
type Generator struct {
	client *api.Client
	model  string
	logger *zap.Logger
}

// Config holds the Ollama settings.
type Config struct {
	Host    string // e.g. http://localhost:11434
	Model   string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewGenerator creates an Ollama generation provider.
func NewGenerator(cfg Config) (*Generator, error) {
	u, err := url.Parse(cfg.Host)
	if err != nil {
		return nil, fmt.Errorf("parse ollama host: %w", err)
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	return &Generator{
		client: api.NewClient(u, hc),
		model:  cfg.Model,
		logger: cfg.Logger,
	}, nil
}

// Generate implements domain.Generator. The streamed response is concatenated.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	greq := &api.GenerateRequest{
		Model:  g.model,
		Prompt: req.Prompt,
		Options: map[string]any{
			"temperature": req.Temperature,
			"num_predict": req.MaxTokens,
		},
	}
	if req.JSON {
		greq.Format = json.RawMessage(`"json"`)
	}

	stage := string(req.Stage)
	start := time.Now()

	var (
		sb  strings.Builder
		res domain.GenerationResult
	)
	err := g.client.Generate(ctx, greq, func(resp api.GenerateResponse) error {
		sb.WriteString(resp.Response)
		if resp.Done {
			res.PromptTokens = resp.PromptEvalCount
			res.CompletionTokens = resp.EvalCount
		}
		return nil
	})
	if err != nil {
		metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, stage, "error").Inc()
		return domain.GenerationResult{}, wrapError(err)
	}

	metrics.GenerationRequestsTotal.WithLabelValues(provider, g.model, stage, "success").Inc()
	metrics.GenerationRequestDuration.WithLabelValues(provider, g.model, stage).Observe(time.Since(start).Seconds())
	metrics.GenerationTokensTotal.WithLabelValues(provider, g.model, "prompt").Add(float64(res.PromptTokens))
	metrics.GenerationTokensTotal.WithLabelValues(provider, g.model, "completion").Add(float64(res.CompletionTokens))

	res.Text = strings.TrimSpace(sb.String())
	return res, nil
}

// HealthCheck verifies the server answers.
func (g *Generator) HealthCheck(ctx context.Context) error {
	if err := g.client.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama heartbeat: %w", err)
	}
	return nil
}

func wrapError(err error) error {
	var se api.StatusError
	if errors.As(err, &se) {
		if se.StatusCode == http.StatusTooManyRequests {
			return fmt.Errorf("ollama %d: %s: %w", se.StatusCode, se.ErrorMessage,
				errors.Join(domain.ErrGenerationProviderError, domain.ErrRateLimited))
		}
		return fmt.Errorf("ollama %d: %s: %w", se.StatusCode, se.ErrorMessage, domain.ErrGenerationProviderError)
	}
	return fmt.Errorf("ollama generate: %v: %w", err, domain.ErrGenerationProviderError)
}
