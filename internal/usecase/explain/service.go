// Package explain writes the one-sentence match reason for a surfaced course.
package explain

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/metrics"
)

// FallbackReason replaces a failed or empty explanation.
const FallbackReason = "Matches your search interests."

const matchReasonPrompt = `The user is searching for courses with this interest:
"{query}"

Explain in 1-2 sentences why this course is a good match:

Course: {course_code} - {title}
Description: {description}

Be specific about how the course content relates to their interest. Focus on concrete connections.`

// Generator produces model text.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// Config bounds each explanation call.
type Config struct {
	MaxTokens        int           // default 100
	Temperature      *float32      // nil means 0.5
	Retries          int           // extra attempts after the first
	Backoff          time.Duration // doubled per attempt; default 300ms
	DescriptionLimit int           // runes kept from the description; default 500
}

// Service explains matches.
type Service struct {
	gen         Generator
	cfg         Config
	temperature float32
	logger      *zap.Logger
}

// New creates an explanation service.
func New(gen Generator, cfg Config, logger *zap.Logger) *Service {
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 100
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 300 * time.Millisecond
	}
	if cfg.DescriptionLimit <= 0 {
		cfg.DescriptionLimit = 500
	}
	temperature := float32(0.5)
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}
	return &Service{gen: gen, cfg: cfg, temperature: temperature, logger: logger}
}

// Explain returns why c matches query. It never fails; after the retry
// budget is spent the FallbackReason is returned.
func (s *Service) Explain(ctx context.Context, query string, c course.Course) string {
	req := domain.GenerationRequest{
		Stage:       domain.StageExplain,
		Prompt:      BuildPrompt(query, c, s.cfg.DescriptionLimit),
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.temperature,
	}

	var lastErr error
	for attempt := 0; attempt <= s.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.cfg.Backoff * time.Duration(1<<(attempt-1))):
			case <-ctx.Done():
				return s.fallback(c, ctx.Err())
			}
		}
		res, err := s.gen.Generate(ctx, req)
		if err == nil {
			if text := strings.TrimSpace(res.Text); text != "" {
				return text
			}
			// Empty output is not retried.
			return s.fallback(c, nil)
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	return s.fallback(c, lastErr)
}

func (s *Service) fallback(c course.Course, cause error) string {
	metrics.GenerationFallbacksTotal.WithLabelValues(string(domain.StageExplain)).Inc()
	if cause != nil {
		s.logger.Warn("Match explanation fell back",
			zap.String("course", c.Code), zap.Error(cause))
	} else {
		s.logger.Warn("Match explanation was empty", zap.String("course", c.Code))
	}
	return FallbackReason
}

// BuildPrompt renders the explanation prompt. The description is cut to
// limit runes first.
func BuildPrompt(query string, c course.Course, limit int) string {
	return strings.NewReplacer(
		"{query}", query,
		"{course_code}", c.Code,
		"{title}", c.Title,
		"{description}", Truncate(c.Description, limit),
	).Replace(matchReasonPrompt)
}

// Truncate keeps at most limit runes of s.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i]
		}
		n++
	}
	return s
}
