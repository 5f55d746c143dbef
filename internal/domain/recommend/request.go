package recommend

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/pickmyelective/electives/internal/domain"
)

// Request bounds.
const (
	MinQueryLength      = 3
	MaxQueryLength      = 500
	DefaultTopK         = 5
	MaxTopK             = 10
	DefaultMinRelevance = 0.30
)

// Request is a validated recommendation request.
type Request struct {
	query        string
	filters      Filters
	topK         int
	minRelevance float64
}

// NewRequest normalizes and validates a recommendation request.
// nil topK / minRelevance take their defaults.
func NewRequest(query string, filters Filters, topK *int, minRelevance *float64) (Request, error) {
	// Length bounds apply to the query as sent; normalization only has to leave something.
	if n := utf8.RuneCountInString(query); n < MinQueryLength || n > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query must be between %d and %d characters",
			domain.ErrInvalidQuery, MinQueryLength, MaxQueryLength)
	}
	q := NormalizeQuery(query)
	if q == "" {
		return Request{}, fmt.Errorf("%w: query must not be blank", domain.ErrInvalidQuery)
	}

	k := DefaultTopK
	if topK != nil {
		k = *topK
	}
	if k < 1 || k > MaxTopK {
		return Request{}, fmt.Errorf("%w: top_k must be between 1 and %d", domain.ErrInvalidQuery, MaxTopK)
	}

	minRel := DefaultMinRelevance
	if minRelevance != nil {
		minRel = *minRelevance
	}
	if minRel < 0 || minRel > 1 {
		return Request{}, fmt.Errorf("%w: min_relevance must be between 0 and 1", domain.ErrInvalidQuery)
	}

	if filters.MaxLevel != nil && *filters.MaxLevel <= 0 {
		return Request{}, fmt.Errorf("%w: max_level must be positive", domain.ErrInvalidQuery)
	}

	return Request{
		query:        q,
		filters:      filters,
		topK:         k,
		minRelevance: minRel,
	}, nil
}

// Query returns the normalized query text.
func (r Request) Query() string { return r.query }

// Filters returns the constraint set.
func (r Request) Filters() Filters { return r.filters }

// TopK returns the number of courses to surface.
func (r Request) TopK() int { return r.topK }

// MinRelevance returns the relevance threshold.
func (r Request) MinRelevance() float64 { return r.minRelevance }

// NormalizeQuery applies NFKC and collapses whitespace.
func NormalizeQuery(s string) string {
	s = norm.NFKC.String(s)
	return strings.Join(strings.Fields(s), " ")
}
