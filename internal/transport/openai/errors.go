package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pickmyelective/electives/internal/domain"
)

// parseAPIError extracts a human-readable error from the API response and wraps
// it with the provider sentinel. HTTP 429 additionally wraps ErrRateLimited.
func parseAPIError(err error, kind string, wrap error) error {
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail == "" {
			detail = string(reqErr.Body)
		}
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, reqErr.HTTPStatusCode, detail, sentinel(reqErr.HTTPStatusCode, wrap))
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s API error %d: %s: %w",
			kind, apiErr.HTTPStatusCode, apiErr.Message, sentinel(apiErr.HTTPStatusCode, wrap))
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s request: %w", kind, errors.Join(err, wrap))
	}
	return fmt.Errorf("%s request failed: %v: %w", kind, err, wrap)
}

func sentinel(status int, wrap error) error {
	if status == http.StatusTooManyRequests {
		return errors.Join(wrap, domain.ErrRateLimited)
	}
	return wrap
}

// extractDetail extracts the "detail" field from a JSON error body, or the
// nested error message used by Gemini's compatibility layer.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &parsed) != nil {
		return ""
	}
	if parsed.Detail != "" {
		return parsed.Detail
	}
	return parsed.Error.Message
}
