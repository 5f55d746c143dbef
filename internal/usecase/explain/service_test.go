package explain

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/course"
	"github.com/pickmyelective/electives/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterGenerationMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockGenerator struct {
	mu      sync.Mutex
	calls   int
	results []mockResult // consumed in order; last one repeats
	lastReq domain.GenerationRequest
}

type mockResult struct {
	text string
	err  error
}

func (m *mockGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReq = req
	r := m.results[min(m.calls, len(m.results)-1)]
	m.calls++
	return domain.GenerationResult{Text: r.text}, r.err
}

func newService(gen *mockGenerator) *Service {
	return New(gen, Config{Retries: 2, Backoff: time.Millisecond}, zap.NewNop())
}

var phil = course.Course{
	Code:        "PHIL 100W",
	Title:       "Knowledge and Reality",
	Description: "An introduction to some of the central problems of philosophy.",
}

// --- Tests ---

func TestExplain_Success(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{{text: "  It covers philosophy of mind.\n"}}}
	svc := newService(gen)

	got := svc.Explain(context.Background(), "how we know things", phil)
	if got != "It covers philosophy of mind." {
		t.Errorf("got %q", got)
	}
	if gen.lastReq.MaxTokens != 100 || gen.lastReq.Temperature != 0.5 || gen.lastReq.JSON {
		t.Errorf("unexpected request bounds: %+v", gen.lastReq)
	}
	if gen.lastReq.Stage != domain.StageExplain {
		t.Errorf("stage = %q", gen.lastReq.Stage)
	}
}

func TestExplain_RetriesThenSucceeds(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{
		{err: domain.ErrRateLimited},
		{text: "Good match."},
	}}
	svc := newService(gen)

	if got := svc.Explain(context.Background(), "q", phil); got != "Good match." {
		t.Errorf("got %q", got)
	}
	if gen.calls != 2 {
		t.Errorf("calls = %d, want 2", gen.calls)
	}
}

func TestExplain_ExhaustedFallsBack(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{{err: domain.ErrGenerationProviderError}}}
	svc := newService(gen)

	if got := svc.Explain(context.Background(), "q", phil); got != FallbackReason {
		t.Errorf("got %q", got)
	}
	if gen.calls != 3 {
		t.Errorf("calls = %d, want 3", gen.calls)
	}
}

func TestExplain_EmptyFallsBack(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{{text: "   "}}}
	svc := newService(gen)

	if got := svc.Explain(context.Background(), "q", phil); got != FallbackReason {
		t.Errorf("got %q", got)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

func TestExplain_CanceledStopsRetrying(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{{err: errors.New("boom")}}}
	svc := New(gen, Config{Retries: 5, Backoff: time.Hour}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if got := svc.Explain(ctx, "q", phil); got != FallbackReason {
		t.Errorf("got %q", got)
	}
	if gen.calls != 1 {
		t.Errorf("calls = %d, want 1", gen.calls)
	}
}

func TestBuildPrompt_TruncatesDescription(t *testing.T) {
	c := phil
	c.Description = strings.Repeat("é", 600) + "TAIL"

	p := BuildPrompt("q", c, 500)
	if strings.Contains(p, "TAIL") {
		t.Error("description should be truncated before prompting")
	}
	if strings.Count(p, "é") != 500 {
		t.Errorf("kept %d runes, want 500", strings.Count(p, "é"))
	}
	if !strings.Contains(p, "Course: PHIL 100W - Knowledge and Reality") {
		t.Error("prompt missing course line")
	}
	if !strings.Contains(p, "\"q\"") {
		t.Error("prompt missing quoted query")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello", 3, "hel"},
		{"héllo", 2, "hé"},
		{"", 3, ""},
	}
	for _, tc := range tests {
		if got := Truncate(tc.in, tc.limit); got != tc.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tc.in, tc.limit, got, tc.want)
		}
	}
}

func TestExplain_ZeroTemperatureKept(t *testing.T) {
	gen := &mockGenerator{results: []mockResult{{text: "Covers logic."}}}
	zero := float32(0)
	svc := New(gen, Config{Temperature: &zero}, zap.NewNop())

	svc.Explain(context.Background(), "formal logic", phil)
	if gen.lastReq.Temperature != 0 {
		t.Errorf("temperature = %v, want 0", gen.lastReq.Temperature)
	}
}
