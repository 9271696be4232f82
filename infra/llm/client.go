// Package llm is the HTTP implementation of the core llm client for
// OpenAI-compatible chat-completions endpoints.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	corellm "github.com/kilianp07/timetable/core/llm"
	"github.com/kilianp07/timetable/core/logger"
)

type wireRequest struct {
	Model          string                  `json:"model"`
	Messages       []corellm.Message       `json:"messages"`
	ResponseFormat *corellm.ResponseFormat `json:"response_format,omitempty"`
	MaxTokens      int                     `json:"max_tokens"`
	Temperature    float64                 `json:"temperature"`
}

type wireResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client issues chat-completion requests against a fixed base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	log        logger.Logger
}

// New creates a Client. timeout bounds each request when the caller's
// context carries no earlier deadline.
func New(baseURL string, timeout time.Duration, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
}

// Complete sends one request. A transport failure (dial, timeout, context
// cancellation) is returned as an error; any HTTP response, success or not,
// is returned as a Response with its raw body.
func (c *Client) Complete(ctx context.Context, req corellm.CompletionRequest) (corellm.Response, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	body := wireRequest{
		Model: req.Model,
		Messages: []corellm.Message{
			{Role: "system", Content: req.System},
			{Role: "user", Content: req.User},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	if req.JSONOnly {
		body.ResponseFormat = &corellm.ResponseFormat{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return corellm.Response{}, fmt.Errorf("%w: marshal: %v", corellm.ErrInvalidRequest, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return corellm.Response{}, fmt.Errorf("%w: %v", corellm.ErrInvalidRequest, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)

	start := time.Now()
	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return corellm.Response{}, fmt.Errorf("send request: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return corellm.Response{}, fmt.Errorf("read response: %w", err)
	}

	resp := corellm.Response{StatusCode: httpResp.StatusCode, Body: string(raw)}
	c.log.Debugw("completion attempt", map[string]any{
		"model":    req.Model,
		"status":   httpResp.StatusCode,
		"latency":  time.Since(start).String(),
		"body_len": len(raw),
	})
	if !resp.OK() {
		return resp, nil
	}

	var envelope wireResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return resp, fmt.Errorf("decode envelope: %w", err)
	}
	if envelope.Error != nil {
		// Some gateways report upstream failures inside a 200 envelope.
		resp.Body = envelope.Error.Message
		resp.StatusCode = http.StatusBadGateway
		return resp, nil
	}
	if len(envelope.Choices) == 0 {
		return resp, fmt.Errorf("no completion returned")
	}
	resp.Content = envelope.Choices[0].Message.Content
	return resp, nil
}
