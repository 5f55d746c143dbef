// Package recommend orchestrates interpretation, retrieval and explanation.
package recommend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	dom "github.com/pickmyelective/electives/internal/domain/recommend"
	"github.com/pickmyelective/electives/internal/metrics"
)

// Config tunes the orchestrator.
type Config struct {
	OverFetch   int // retriever request is OverFetch*topK; default 2
	Concurrency int // parallel explanation calls; default topK
}

// Service is the single recommendation entry point.
type Service struct {
	interp  Interpreter
	retr    Retriever
	explain Explainer
	cfg     Config
	logger  *zap.Logger
}

// New creates a recommendation service.
func New(interp Interpreter, retr Retriever, explain Explainer, cfg Config, logger *zap.Logger) *Service {
	if cfg.OverFetch <= 0 {
		cfg.OverFetch = 2
	}
	return &Service{interp: interp, retr: retr, explain: explain, cfg: cfg, logger: logger}
}

// Recommend runs the full pipeline. An empty Courses slice is a valid
// result; errors are only returned for embedding or index failures.
func (s *Service) Recommend(ctx context.Context, req dom.Request) (dom.Result, error) {
	start := time.Now()
	res, err := s.recommend(ctx, req)
	metrics.RecommendationDuration.Observe(time.Since(start).Seconds())

	switch {
	case err != nil:
		metrics.RecommendationsTotal.WithLabelValues("error").Inc()
	case len(res.Courses) == 0:
		metrics.RecommendationsTotal.WithLabelValues("empty").Inc()
	default:
		metrics.RecommendationsTotal.WithLabelValues("ok").Inc()
	}
	return res, err
}

func (s *Service) recommend(ctx context.Context, req dom.Request) (dom.Result, error) {
	in := s.interp.Interpret(ctx, req.Query())

	vec, err := s.interp.Embed(ctx, in)
	if err != nil {
		return dom.Result{}, err
	}

	candidates, err := s.retr.Retrieve(ctx, vec, req.Filters(), req.TopK()*s.cfg.OverFetch)
	if err != nil {
		return dom.Result{}, fmt.Errorf("retrieve: %w", err)
	}

	kept := candidates[:0]
	for _, c := range candidates {
		if c.Relevance >= req.MinRelevance() {
			kept = append(kept, c)
		}
	}
	if len(kept) > req.TopK() {
		kept = kept[:req.TopK()]
	}
	metrics.RetrievalCandidates.WithLabelValues("returned").Observe(float64(len(kept)))

	out := dom.Result{
		Interpretation: in.Summary,
		Courses:        make([]dom.Recommendation, len(kept)),
	}
	if len(kept) == 0 {
		return out, nil
	}

	limit := s.cfg.Concurrency
	if limit <= 0 {
		limit = len(kept)
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, c := range kept {
		g.Go(func() error {
			// Each goroutine owns slot i; rank order is fixed before fan-out.
			out.Courses[i] = dom.Recommendation{
				Course:      c.Course,
				Relevance:   c.Relevance,
				MatchReason: s.explain.Explain(gctx, req.Query(), c.Course),
			}
			return nil
		})
	}
	_ = g.Wait() // explanations never fail

	s.logger.Debug("Recommendation assembled",
		zap.Int("candidates", len(candidates)),
		zap.Int("returned", len(out.Courses)),
		zap.Bool("interpretation_fallback", in.Fallback),
	)
	return out, nil
}
