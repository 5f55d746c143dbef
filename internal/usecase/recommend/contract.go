package recommend

import (
	"context"

	"github.com/pickmyelective/electives/internal/domain/course"
	dom "github.com/pickmyelective/electives/internal/domain/recommend"
)

// Interpreter turns the raw query into topics and a query vector.
type Interpreter interface {
	Interpret(ctx context.Context, query string) dom.Interpretation
	Embed(ctx context.Context, in dom.Interpretation) ([]float32, error)
}

// Retriever returns ranked candidates for a query vector.
type Retriever interface {
	Retrieve(ctx context.Context, vector []float32, filters dom.Filters, n int) ([]dom.Candidate, error)
}

// Explainer writes a match reason for one course. It must not fail.
type Explainer interface {
	Explain(ctx context.Context, query string, c course.Course) string
}
