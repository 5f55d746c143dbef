package health

import (
	"context"

	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// IndexPinger checks index backend availability.
type IndexPinger interface {
	Ping(ctx context.Context) error
}

// CollectionDescriber reports the state of the served collection.
type CollectionDescriber interface {
	Describe(ctx context.Context, name string) (vectorindex.Collection, error)
}

// ProviderChecker checks model provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}
