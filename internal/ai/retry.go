package ai

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// RetryPolicy bounds retries with exponential backoff and jitter.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRetryPolicy matches the global configuration defaults.
var DefaultRetryPolicy = RetryPolicy{
	MaxAttempts: 3,
	BaseDelay:   time.Second,
	MaxDelay:    30 * time.Second,
}

// Decide is the pure retry policy: given the attempt number just completed
// (1-based) and its error, it reports whether to retry and for how long to
// back off. The delay is min(base * 2^(attempt-1), maxDelay) plus up to 30%
// random jitter.
func (p RetryPolicy) Decide(attempt int, err error) (bool, time.Duration) {
	if attempt >= p.MaxAttempts || !Retryable(err) {
		return false, 0
	}
	return true, p.backoff(attempt)
}

func (p RetryPolicy) backoff(attempt int) time.Duration {
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= p.MaxDelay {
			delay = p.MaxDelay
			break
		}
	}
	if delay > p.MaxDelay {
		delay = p.MaxDelay
	}
	jitter := time.Duration(rand.Int63n(int64(delay)*3/10 + 1))
	return delay + jitter
}

// Retry runs op up to MaxAttempts times, backing off between retryable
// failures. The last error is propagated unchanged once attempts are
// exhausted or the error is terminal.
func Retry(ctx context.Context, policy RetryPolicy, op func() error) error {
	var err error
	for attempt := 1; ; attempt++ {
		err = op()
		if err == nil {
			return nil
		}

		retry, delay := policy.Decide(attempt, err)
		if !retry {
			return err
		}

		logrus.WithError(err).Warnf("analysis call failed (attempt %d/%d), retrying in %v",
			attempt, policy.MaxAttempts, delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return err
		}
	}
}
