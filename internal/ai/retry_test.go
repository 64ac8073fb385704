package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecideTerminalErrors(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

	retry, _ := policy.Decide(1, &AuthenticationError{Reason: "bad key"})
	assert.False(t, retry, "auth errors are never retried")

	retry, _ = policy.Decide(1, &TokenLimitError{Model: "gpt-4o-mini", MaxTokens: 512})
	assert.False(t, retry, "token limit errors are never retried")

	retry, _ = policy.Decide(1, errors.New("unclassified"))
	assert.False(t, retry)
}

func TestDecideRetryableKinds(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}

	for _, kind := range []ErrorKind{KindRateLimit, KindServer, KindTimeout, KindBadResponse} {
		retry, delay := policy.Decide(1, &CallError{Kind: kind, Err: errors.New("boom")})
		assert.True(t, retry, "kind %s should be retryable", kind)
		assert.Positive(t, delay)
	}
}

func TestDecideExhaustsAttempts(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, MaxDelay: 30 * time.Second}
	err := &CallError{Kind: KindServer, Err: errors.New("boom")}

	retry, _ := policy.Decide(2, err)
	assert.True(t, retry)

	retry, _ = policy.Decide(3, err)
	assert.False(t, retry, "the final attempt must not schedule another retry")
}

func TestBackoffGrowthAndCap(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Second, MaxDelay: 4 * time.Second}
	err := &CallError{Kind: KindRateLimit, Err: errors.New("slow down")}

	expected := []time.Duration{
		time.Second,
		2 * time.Second,
		4 * time.Second,
		4 * time.Second, // capped
		4 * time.Second,
	}
	for attempt, base := range expected {
		_, delay := policy.Decide(attempt+1, err)
		assert.GreaterOrEqual(t, delay, base, "attempt %d", attempt+1)
		// Up to 30% jitter on top of the base delay.
		assert.LessOrEqual(t, delay, base+base*3/10, "attempt %d", attempt+1)
	}
}

func TestRetryStopsOnSuccess(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), DefaultRetryPolicy, func() error {
		calls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestRetryExhaustsAndReturnsLastError(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
	lastErr := &CallError{Kind: KindServer, Err: errors.New("still down")}

	calls := 0
	err := Retry(context.Background(), policy, func() error {
		calls++
		return lastErr
	})

	assert.Equal(t, 3, calls)
	assert.Same(t, lastErr, err, "the last error must be propagated unchanged")
}

func TestRetryTerminalErrorSingleAttempt(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	calls := 0
	err := Retry(context.Background(), policy, func() error {
		calls++
		return &AuthenticationError{Reason: "rotated"}
	})

	assert.Equal(t, 1, calls)
	var authErr *AuthenticationError
	assert.ErrorAs(t, err, &authErr)
}

func TestRetryRespectsContextCancellation(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 10, BaseDelay: time.Hour, MaxDelay: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())

	callErr := &CallError{Kind: KindServer, Err: errors.New("down")}
	calls := 0
	done := make(chan error, 1)
	go func() {
		done <- Retry(ctx, policy, func() error {
			calls++
			return callErr
		})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.Equal(t, 1, calls, "cancellation during backoff must not trigger another attempt")
		assert.Same(t, callErr, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Retry did not return after context cancellation")
	}
}
