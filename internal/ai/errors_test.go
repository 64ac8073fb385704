package ai

import (
	"context"
	"errors"
	"fmt"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"auth error", &AuthenticationError{Reason: "missing"}, KindAuth},
		{"token limit", &TokenLimitError{Model: "gpt-4o", MaxTokens: 256}, KindTokenLimit},
		{"call error carries its kind", &CallError{Kind: KindRateLimit, Err: errors.New("429")}, KindRateLimit},
		{"wrapped call error", fmt.Errorf("analysis: %w", &CallError{Kind: KindServer, Err: errors.New("500")}), KindServer},
		{"plain error", errors.New("boom"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func TestClassifyCallErrorStatusCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorKind
	}{
		{401, KindAuth},
		{403, KindAuth},
		{429, KindRateLimit},
		{500, KindServer},
		{503, KindServer},
	}

	for _, tt := range tests {
		err := classifyCallError(&openai.APIError{HTTPStatusCode: tt.status})
		assert.Equal(t, tt.want, Classify(err), "status %d", tt.status)
	}
}

func TestClassifyCallErrorTimeout(t *testing.T) {
	err := classifyCallError(fmt.Errorf("request: %w", context.DeadlineExceeded))
	assert.Equal(t, KindTimeout, Classify(err))
}

func TestRetryableKinds(t *testing.T) {
	assert.True(t, Retryable(&CallError{Kind: KindRateLimit}))
	assert.True(t, Retryable(&CallError{Kind: KindServer}))
	assert.True(t, Retryable(&CallError{Kind: KindTimeout}))
	assert.True(t, Retryable(&CallError{Kind: KindBadResponse}))

	assert.False(t, Retryable(&AuthenticationError{Reason: "x"}))
	assert.False(t, Retryable(&TokenLimitError{}))
	assert.False(t, Retryable(&CallError{Kind: KindUnknown}))
	assert.False(t, Retryable(errors.New("plain")))
}

func TestEstimateCost(t *testing.T) {
	cost := EstimateCost("gpt-4o-mini", 1000, 1000)
	assert.InDelta(t, 0.00075, cost, 1e-9)

	assert.Zero(t, EstimateCost("some-future-model", 1000, 1000))
}
