package ai

import (
	"context"
	"errors"
	"fmt"
	"net"

	openai "github.com/sashabaranov/go-openai"
)

// ErrorKind classifies a failed analysis call. Kinds are assigned at the SDK
// boundary from status codes and error types, never from error-message text.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindAuth
	KindTokenLimit
	KindRateLimit
	KindServer
	KindTimeout
	KindBadResponse // malformed or truncated structured output
)

func (k ErrorKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindTokenLimit:
		return "token_limit"
	case KindRateLimit:
		return "rate_limit"
	case KindServer:
		return "server"
	case KindTimeout:
		return "timeout"
	case KindBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// AuthenticationError means the credential is missing, malformed, or was
// rejected by the provider. Never retried.
type AuthenticationError struct {
	Reason string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Reason)
}

// TokenLimitError means the response was cut off because the configured
// output-token budget was reached. Retrying with the same budget reproduces
// the same truncation, so this is terminal; the caller must raise MaxTokens.
type TokenLimitError struct {
	Model     string
	MaxTokens int
}

func (e *TokenLimitError) Error() string {
	return fmt.Sprintf("response truncated: output token budget of %d reached for model %s", e.MaxTokens, e.Model)
}

// CallError wraps a provider or transport failure with its classified kind.
type CallError struct {
	Kind ErrorKind
	Err  error
}

func (e *CallError) Error() string {
	return fmt.Sprintf("analysis call failed (%s): %v", e.Kind, e.Err)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// Classify returns the error kind for any error produced by this package.
func Classify(err error) ErrorKind {
	var authErr *AuthenticationError
	if errors.As(err, &authErr) {
		return KindAuth
	}
	var limitErr *TokenLimitError
	if errors.As(err, &limitErr) {
		return KindTokenLimit
	}
	var callErr *CallError
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return KindUnknown
}

// Retryable reports whether an error is worth retrying: rate limits, server
// errors, timeouts, and malformed structured output. Auth and token-limit
// failures are terminal.
func Retryable(err error) bool {
	switch Classify(err) {
	case KindRateLimit, KindServer, KindTimeout, KindBadResponse:
		return true
	default:
		return false
	}
}

// classifyCallError maps an error returned by the OpenAI SDK to a typed error.
func classifyCallError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &AuthenticationError{Reason: "credential rejected by provider"}
		case apiErr.HTTPStatusCode == 429:
			return &CallError{Kind: KindRateLimit, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &CallError{Kind: KindServer, Err: err}
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return &CallError{Kind: KindTimeout, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &CallError{Kind: KindTimeout, Err: err}
	}

	return &CallError{Kind: KindUnknown, Err: err}
}
