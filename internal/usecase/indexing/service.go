// Package indexing embeds a course corpus and loads it into the vector index.
package indexing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// Defaults.
const (
	DefaultBatchSize = 100
	DefaultDelay     = 500 * time.Millisecond
	sampleSize       = 5
)

// Config describes the collection being built.
type Config struct {
	Collection string // served name (alias target when swapping)
	Model      string
	Dimensions int
	BatchSize  int
	Delay      time.Duration // pause between embedding batches; 0 disables pacing
}

// Options tune one run.
type Options struct {
	Recreate bool
	Target   string // physical collection to write; defaults to Config.Collection
	RunID    string // generated when empty
}

// Stats summarizes one run.
type Stats struct {
	TotalDocuments   int     `json:"total_documents"`
	DocumentsIndexed int     `json:"documents_indexed"`
	DocumentsSkipped int     `json:"documents_skipped"`
	EmbeddingBatches int     `json:"embedding_batches"`
	TotalTokensUsed  int     `json:"total_tokens_used"`
	DurationSeconds  float64 `json:"indexing_duration_seconds"`
	AvgBatchMillis   float64 `json:"avg_embedding_time_ms"`
}

// Output is the run manifest.
type Output struct {
	RunID      string    `json:"run_id"`
	Semester   string    `json:"semester"`
	Collection string    `json:"collection_name"`
	IndexedAt  time.Time `json:"indexed_at"`
	Stats      Stats     `json:"stats"`
	SampleIDs  []string  `json:"sample_ids"`
}

// Verification is the post-run sanity check.
type Verification struct {
	Collection       string   `json:"collection_name"`
	CollectionExists bool     `json:"collection_exists"`
	DocumentCount    int      `json:"document_count"`
	MetadataFields   []string `json:"metadata_fields"`
	IsValid          bool     `json:"is_valid"`
}

// ProgressFunc is called after each batch with cumulative processed and total counts.
type ProgressFunc func(done, total int)

// Service runs indexing jobs.
type Service struct {
	index  Index
	embed  BatchEmbedder
	cfg    Config
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// New creates an indexing service.
func New(index Index, embed BatchEmbedder, cfg Config, logger *zap.Logger) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Service{
		index:  index,
		embed:  embed,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// RunCollection names the physical collection for a run.
func RunCollection(base, runID string) string {
	if len(runID) > 8 {
		runID = runID[:8]
	}
	return base + "_" + runID
}

// NewRunID returns a fresh run identifier.
func (s *Service) NewRunID() string { return s.newID() }

// Index embeds and upserts courses into the target collection in batches.
func (s *Service) Index(
	ctx context.Context, corpus course.Corpus, opts Options, progress ProgressFunc,
) (Output, error) {
	start := s.now()
	runID := opts.RunID
	if runID == "" {
		runID = s.newID()
	}
	target := opts.Target
	if target == "" {
		target = s.cfg.Collection
	}

	err := s.index.EnsureCollection(ctx, vectorindex.Spec{
		Name:       target,
		Dimensions: s.cfg.Dimensions,
		Model:      s.cfg.Model,
	}, opts.Recreate)
	if err != nil {
		return Output{}, fmt.Errorf("ensure collection %s: %w", target, err)
	}

	courses := make([]course.Course, 0, len(corpus.Courses))
	stats := Stats{TotalDocuments: len(corpus.Courses)}
	for _, c := range corpus.Courses {
		if c.Document == "" {
			stats.DocumentsSkipped++
			continue
		}
		if err := c.Validate(); err != nil {
			s.logger.Warn("Skipping invalid course", zap.String("id", c.ID), zap.Error(err))
			stats.DocumentsSkipped++
			continue
		}
		courses = append(courses, c)
	}

	limit := rate.Inf
	if s.cfg.Delay > 0 {
		limit = rate.Every(s.cfg.Delay)
	}
	limiter := rate.NewLimiter(limit, 1)

	total := len(courses)
	for i := 0; i < total; i += s.cfg.BatchSize {
		if err := limiter.Wait(ctx); err != nil {
			return Output{}, fmt.Errorf("pace batch: %w", err)
		}

		batch := courses[i:min(i+s.cfg.BatchSize, total)]
		tokens, err := s.indexBatch(ctx, target, batch)
		if err != nil {
			return Output{}, fmt.Errorf("batch %d: %w", stats.EmbeddingBatches, err)
		}
		stats.DocumentsIndexed += len(batch)
		stats.EmbeddingBatches++
		stats.TotalTokensUsed += tokens

		if progress != nil {
			progress(stats.DocumentsIndexed, total)
		}
		s.logger.Debug("Indexed batch",
			zap.String("collection", target),
			zap.Int("batch", stats.EmbeddingBatches),
			zap.Int("size", len(batch)),
		)
	}

	elapsed := s.now().Sub(start)
	stats.DurationSeconds = elapsed.Seconds()
	if stats.EmbeddingBatches > 0 {
		stats.AvgBatchMillis = float64(elapsed.Milliseconds()) / float64(stats.EmbeddingBatches)
	}

	sample := make([]string, 0, sampleSize)
	for _, c := range courses[:min(sampleSize, len(courses))] {
		sample = append(sample, c.ID)
	}

	s.logger.Info("Indexing complete",
		zap.String("collection", target),
		zap.Int("indexed", stats.DocumentsIndexed),
		zap.Int("skipped", stats.DocumentsSkipped),
		zap.Int("tokens", stats.TotalTokensUsed),
	)

	return Output{
		RunID:      runID,
		Semester:   corpus.Semester,
		Collection: target,
		IndexedAt:  s.now().UTC(),
		Stats:      stats,
		SampleIDs:  sample,
	}, nil
}

func (s *Service) indexBatch(ctx context.Context, target string, batch []course.Course) (int, error) {
	docs := make([]string, len(batch))
	for i, c := range batch {
		docs[i] = c.Document
	}

	res, err := s.embed.BatchEmbed(ctx, docs)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("%w: got %d embeddings for %d documents",
			domain.ErrEmbeddingProviderError, len(res.Embeddings), len(batch))
	}

	entries := make([]vectorindex.Entry, len(batch))
	for i, c := range batch {
		if err := domain.CheckDimensions(res.Embeddings[i], s.cfg.Dimensions); err != nil {
			return 0, fmt.Errorf("course %s: %w", c.ID, err)
		}
		entries[i] = vectorindex.Entry{Course: c, Vector: res.Embeddings[i]}
	}

	if err := s.index.Upsert(ctx, target, entries); err != nil {
		return 0, fmt.Errorf("upsert: %w", err)
	}
	return res.TotalTokens, nil
}

// Verify reports whether name holds a usable index.
func (s *Service) Verify(ctx context.Context, name string) (Verification, error) {
	if name == "" {
		name = s.cfg.Collection
	}
	c, err := s.index.Describe(ctx, name)
	if err != nil {
		return Verification{}, fmt.Errorf("describe %s: %w", name, err)
	}
	v := Verification{
		Collection:       name,
		CollectionExists: c.Exists,
		DocumentCount:    c.Count,
		MetadataFields:   c.MetadataFields,
	}
	v.IsValid = v.CollectionExists && v.DocumentCount > 0 && len(v.MetadataFields) > 0
	return v, nil
}

// Swap points the served collection at target after checking target is valid.
func (s *Service) Swap(ctx context.Context, target string) error {
	v, err := s.Verify(ctx, target)
	if err != nil {
		return err
	}
	if !v.IsValid {
		return fmt.Errorf("%w: collection %s is not valid for serving", domain.ErrIndexUnavailable, target)
	}
	if err := s.index.Swap(ctx, s.cfg.Collection, target); err != nil {
		return fmt.Errorf("swap %s -> %s: %w", s.cfg.Collection, target, err)
	}
	s.logger.Info("Swapped served collection",
		zap.String("alias", s.cfg.Collection), zap.String("target", target))
	return nil
}
