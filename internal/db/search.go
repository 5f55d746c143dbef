package db

import "github.com/pickmyelective/electives/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filters      filter.Expression
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
// For KNN queries Distance is the raw metric value reported by the index.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
