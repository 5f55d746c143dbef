// Package retrieve ranks index hits by relevance and elective quality.
package retrieve

import (
	"context"
	"fmt"
	"sort"

	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/domain/recommend"
	"github.com/pickmyelective/electives/internal/metrics"
)

// Weights blend relevance with the normalized elective score.
type Weights struct {
	Relevance   float64
	Elective    float64
	MaxElective float64
}

// DefaultWeights are the tuned ranking weights.
func DefaultWeights() Weights {
	return Weights{Relevance: 0.80, Elective: 0.20, MaxElective: course.MaxElectiveScore}
}

// FetchPolicy sizes the index request so post-filtering does not starve results.
type FetchPolicy struct {
	ScalarFactor int // multiplier when only native filters are active
	ListFactor   int // multiplier when any list filter is active
	ListFloor    int // minimum fetch when any list filter is active
}

// DefaultFetchPolicy is 5x / 20x with a floor of 200.
func DefaultFetchPolicy() FetchPolicy {
	return FetchPolicy{ScalarFactor: 5, ListFactor: 20, ListFloor: 200}
}

// FetchCount returns how many hits to request for n results under f.
func (p FetchPolicy) FetchCount(f recommend.Filters, n int) int {
	switch {
	case f.HasListFilters():
		return max(p.ListFloor, n*p.ListFactor)
	case f.HasScalarFilters():
		return n * p.ScalarFactor
	default:
		return n
	}
}

// Service retrieves ranked candidates from one collection.
type Service struct {
	index      Index
	collection string
	weights    Weights
	fetch      FetchPolicy
}

// New creates a retriever over collection.
func New(index Index, collection string, w Weights, p FetchPolicy) *Service {
	return &Service{index: index, collection: collection, weights: w, fetch: p}
}

// Relevance converts a cosine distance into a [0,1] similarity.
func Relevance(distance float64) float64 {
	return min(max(1-distance, 0), 1)
}

// Combined blends relevance and elective score.
func (w Weights) Combined(relevance float64, electiveScore int) float64 {
	elective := 0.0
	if w.MaxElective > 0 {
		elective = float64(electiveScore) / w.MaxElective
	}
	return w.Relevance*relevance + w.Elective*elective
}

// Retrieve returns at most n candidates ordered by combined score. An empty
// slice is a valid outcome when filters eliminate everything.
func (s *Service) Retrieve(
	ctx context.Context, vector []float32, filters recommend.Filters, n int,
) ([]recommend.Candidate, error) {
	if n <= 0 {
		return nil, nil
	}

	native, err := filters.Native()
	if err != nil {
		return nil, fmt.Errorf("compile filters: %w", err)
	}

	hits, err := s.index.Query(ctx, s.collection, vector, native, s.fetch.FetchCount(filters, n))
	if err != nil {
		return nil, fmt.Errorf("query index: %w", err)
	}
	metrics.RetrievalCandidates.WithLabelValues("fetched").Observe(float64(len(hits)))

	out := make([]recommend.Candidate, 0, len(hits))
	for rank, h := range hits {
		if !filters.Admit(h.Course) {
			continue
		}
		rel := Relevance(h.Distance)
		out = append(out, recommend.Candidate{
			Course:    h.Course,
			Relevance: rel,
			Combined:  s.weights.Combined(rel, h.Course.ElectiveScore),
			Rank:      rank,
		})
	}
	metrics.RetrievalCandidates.WithLabelValues("admitted").Observe(float64(len(out)))

	// Stable on index order for equal scores.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Combined > out[j].Combined
	})

	if len(out) > n {
		out = out[:n]
	}
	return out, nil
}
