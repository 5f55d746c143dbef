package retrieve

import (
	"context"

	"github.com/pickmyelective/electives/internal/domain/search/filter"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

// Index is the nearest-neighbour contract the retriever reads from.
type Index interface {
	Query(
		ctx context.Context, collection string,
		vector []float32, native filter.Expression, limit int,
	) ([]vectorindex.Hit, error)
}
