package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegister_Idempotent(t *testing.T) {
	RegisterEmbeddingMetrics()
	RegisterEmbeddingMetrics()
	RegisterGenerationMetrics()
	RegisterGenerationMetrics()
	RegisterRecommendMetrics()
	RegisterRecommendMetrics()
	RegisterHTTPMetrics()
	RegisterHTTPMetrics()

	n, err := testutil.GatherAndCount(prometheus.DefaultGatherer,
		"electives_generation_fallbacks_total", "electives_recommendations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 0 {
		t.Errorf("expected no samples before use, got %d", n)
	}

	GenerationFallbacksTotal.WithLabelValues("explain").Inc()
	RecommendationsTotal.WithLabelValues("ok").Inc()

	n, err = testutil.GatherAndCount(prometheus.DefaultGatherer,
		"electives_generation_fallbacks_total", "electives_recommendations_total")
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 samples, got %d", n)
	}
}
