// Package llm defines the client contract for the external text-generation
// endpoint. The HTTP implementation lives in infra/llm.
package llm

import (
	"context"
	"errors"
)

// ErrInvalidRequest marks client-side request construction failures.
// Retrying with a different candidate cannot fix these.
var ErrInvalidRequest = errors.New("invalid completion request")

// Message is one chat turn.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ResponseFormat requests structured output from providers that support it.
type ResponseFormat struct {
	Type string `json:"type"`
}

// CompletionRequest describes one generation attempt.
type CompletionRequest struct {
	Model       string
	Credential  string
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	JSONOnly    bool
}

// Response carries the outcome of one attempt. Body holds the raw response
// text regardless of status so failures can be classified.
type Response struct {
	StatusCode int
	Body       string
	Content    string
}

// OK reports whether the endpoint answered with a success status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client issues one completion at a time. Transport failures (dial,
// timeout, cancellation) are returned as errors; HTTP failures are returned
// as a Response with a non-success status.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (Response, error)
}
