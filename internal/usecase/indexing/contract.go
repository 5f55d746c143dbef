package indexing

import (
	"context"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// Index is the write side of a course index backend.
type Index interface {
	EnsureCollection(ctx context.Context, spec vectorindex.Spec, recreate bool) error
	Upsert(ctx context.Context, collection string, entries []vectorindex.Entry) error
	Describe(ctx context.Context, name string) (vectorindex.Collection, error)
	Swap(ctx context.Context, alias, target string) error
}

// BatchEmbedder vectorizes course documents.
type BatchEmbedder interface {
	BatchEmbed(ctx context.Context, texts []string) (domain.BatchEmbeddingResult, error)
}
