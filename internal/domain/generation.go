package domain

import "context"

// Stage identifies which pipeline step issued a generation call.
type Stage string

const (
	// StageInterpret is the query interpretation call.
	StageInterpret Stage = "interpret"
	// StageExplain is the per-course match explanation call.
	StageExplain Stage = "explain"
)

// GenerationRequest is a single bounded prompt completion.
// MaxTokens caps the output so one slow call cannot stall the request.
type GenerationRequest struct {
	Stage       Stage
	Prompt      string
	MaxTokens   int
	Temperature float32
	JSON        bool // ask the provider for a JSON object response when supported
}

// GenerationResult is the text produced for a GenerationRequest.
type GenerationResult struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Generator is the language model contract used by interpretation and explanation.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}
