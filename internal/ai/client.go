// Package ai wraps the OpenAI chat-completions API in a structured-output
// client: every request declares exactly one function schema and forces the
// model to invoke it, so responses are always parseable data rather than
// free text.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const (
	apiKeyPrefix    = "sk-"
	apiKeyMinLength = 20
)

// ClientConfig configures the analysis client. BaseURL is only overridden in
// tests.
type ClientConfig struct {
	APIKey         string
	Model          string
	MaxTokens      int
	Temperature    float32
	RequestTimeout time.Duration
	Retry          RetryPolicy
	BaseURL        string
}

// Client calls the OpenAI API with forced function invocation.
type Client struct {
	api *openai.Client
	cfg ClientConfig
}

// Result is the outcome of one successful analysis call. It is ephemeral;
// the caller persists whatever parts it needs.
type Result struct {
	Data             json.RawMessage
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
	EstimatedCost    float64
	Duration         time.Duration
}

// NewClient validates the credential and builds a client. A missing or
// malformed key fails immediately with an AuthenticationError.
func NewClient(cfg ClientConfig) (*Client, error) {
	if err := validateAPIKey(cfg.APIKey); err != nil {
		return nil, err
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.Retry.MaxAttempts <= 0 {
		cfg.Retry = DefaultRetryPolicy
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	apiCfg.HTTPClient = &http.Client{Timeout: cfg.RequestTimeout}

	return &Client{
		api: openai.NewClientWithConfig(apiCfg),
		cfg: cfg,
	}, nil
}

// Analyze performs one structured-output call and unmarshals the function
// arguments into out (when non-nil). Transient failures are retried per the
// configured policy; auth and token-limit failures are terminal.
func (c *Client) Analyze(ctx context.Context, systemPrompt, userContent string, fn *openai.FunctionDefinition, out any) (*Result, error) {
	// The key is re-validated on every call; a key rotated out from under a
	// long-lived process should fail loudly, not as an opaque 401.
	if err := validateAPIKey(c.cfg.APIKey); err != nil {
		return nil, err
	}

	var result *Result
	err := Retry(ctx, c.cfg.Retry, func() error {
		r, callErr := c.call(ctx, systemPrompt, userContent, fn, out)
		if callErr != nil {
			return callErr
		}
		result = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *Client) call(ctx context.Context, systemPrompt, userContent string, fn *openai.FunctionDefinition, out any) (*Result, error) {
	start := time.Now()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userContent},
		},
		Functions:    []openai.FunctionDefinition{*fn},
		FunctionCall: openai.FunctionCall{Name: fn.Name},
		MaxTokens:    c.cfg.MaxTokens,
		Temperature:  c.cfg.Temperature,
	})
	if err != nil {
		return nil, classifyCallError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, &CallError{Kind: KindBadResponse, Err: fmt.Errorf("response contains no choices")}
	}
	choice := resp.Choices[0]

	// Check the finish reason before parsing: a budget-truncated payload is
	// not valid JSON and retrying cannot fix it.
	if choice.FinishReason == openai.FinishReasonLength {
		return nil, &TokenLimitError{Model: c.cfg.Model, MaxTokens: c.cfg.MaxTokens}
	}

	if choice.Message.FunctionCall == nil {
		return nil, &CallError{Kind: KindBadResponse, Err: fmt.Errorf("model did not invoke function %q", fn.Name)}
	}

	args := choice.Message.FunctionCall.Arguments
	if out != nil {
		if err := json.Unmarshal([]byte(args), out); err != nil {
			return nil, &CallError{Kind: KindBadResponse, Err: fmt.Errorf("malformed function arguments: %w", err)}
		}
	}

	return &Result{
		Data:             json.RawMessage(args),
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
		EstimatedCost:    EstimateCost(c.cfg.Model, resp.Usage.PromptTokens, resp.Usage.CompletionTokens),
		Duration:         time.Since(start),
	}, nil
}

// validateAPIKey checks presence, prefix, and minimum length. The key is
// never logged in full.
func validateAPIKey(key string) error {
	switch {
	case key == "":
		return &AuthenticationError{Reason: "API key is missing"}
	case !strings.HasPrefix(key, apiKeyPrefix):
		logrus.Warnf("rejecting API key %s: unexpected prefix", RedactKey(key))
		return &AuthenticationError{Reason: "API key has unexpected prefix"}
	case len(key) < apiKeyMinLength:
		logrus.Warnf("rejecting API key %s: too short", RedactKey(key))
		return &AuthenticationError{Reason: "API key is too short"}
	}
	return nil
}

// RedactKey renders a credential safe for logs, keeping only a short prefix
// and suffix.
func RedactKey(key string) string {
	if len(key) < 12 {
		return "****"
	}
	return key[:7] + "..." + key[len(key)-4:]
}
