package step

import (
	"time"

	"github.com/tigerroll/vacationspots/internal/support/backoff"
	"github.com/tigerroll/vacationspots/internal/support/exception"
)

// RetryPolicy defines the retry behavior for chunk writes.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// BackoffInterval returns the waiting time before the given attempt (1-based).
	BackoffInterval(attempt int) time.Duration
	// MaxAttempts returns the maximum number of attempts.
	MaxAttempts() int
}

type defaultRetryPolicy struct {
	maxAttempts     int
	initialInterval time.Duration
}

// NewRetryPolicy creates the default retry policy.
// maxAttempts below 1 disables retries (a single attempt is still made).
func NewRetryPolicy(maxAttempts int, initialInterval time.Duration) RetryPolicy {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &defaultRetryPolicy{
		maxAttempts:     maxAttempts,
		initialInterval: initialInterval,
	}
}

func (p *defaultRetryPolicy) MaxAttempts() int {
	return p.maxAttempts
}

// ShouldRetry delegates to the retryable flag carried by BatchError.
func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	return exception.IsRetryable(err)
}

func (p *defaultRetryPolicy) BackoffInterval(attempt int) time.Duration {
	return backoff.Calculate(p.initialInterval, attempt)
}

var _ RetryPolicy = (*defaultRetryPolicy)(nil)
