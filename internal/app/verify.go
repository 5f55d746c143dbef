package app

import (
	"context"
	"fmt"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// Describer reports the state of a collection.
type Describer interface {
	Describe(ctx context.Context, name string) (vectorindex.Collection, error)
}

// VerifyServing checks that the served collection exists and was built with
// the configured embedding size. The service refuses to start otherwise.
func VerifyServing(ctx context.Context, d Describer, collection string, dims int) (vectorindex.Collection, error) {
	c, err := d.Describe(ctx, collection)
	if err != nil {
		return vectorindex.Collection{}, fmt.Errorf("%w: describe %s: %v", domain.ErrIndexUnavailable, collection, err)
	}
	if !c.Exists {
		return c, fmt.Errorf("%w: collection %s does not exist, run the indexer first",
			domain.ErrIndexUnavailable, collection)
	}
	if c.Dimensions != 0 && c.Dimensions != dims {
		return c, fmt.Errorf("%w: collection %s has %d dimensions, embedding produces %d",
			domain.ErrVectorDimMismatch, collection, c.Dimensions, dims)
	}
	return c, nil
}
