package backoff_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/vacationspots/internal/support/backoff"
)

func TestCalculateZeroBaseDelayReturnsZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), backoff.Calculate(0, 1))
	assert.Equal(t, time.Duration(0), backoff.Calculate(-time.Second, 3))
}

func TestCalculateZeroAttemptReturnsZero(t *testing.T) {
	assert.Equal(t, time.Duration(0), backoff.Calculate(time.Second, 0))
	assert.Equal(t, time.Duration(0), backoff.Calculate(time.Second, -1))
}

func TestCalculateDoublesWithinJitterBounds(t *testing.T) {
	base := 100 * time.Millisecond
	for attempt := 1; attempt <= 4; attempt++ {
		expected := base * time.Duration(1<<uint(attempt))
		got := backoff.Calculate(base, attempt)
		assert.GreaterOrEqual(t, got, expected-expected/4, "attempt %d", attempt)
		assert.Less(t, got, expected+expected/4, "attempt %d", attempt)
	}
}

func TestCalculateCapsAtThirtySeconds(t *testing.T) {
	ceiling := 30 * time.Second
	for _, attempt := range []int{20, 30, 31, 1000} {
		got := backoff.Calculate(time.Second, attempt)
		assert.GreaterOrEqual(t, got, ceiling-ceiling/4, "attempt %d", attempt)
		assert.Less(t, got, ceiling+ceiling/4, "attempt %d", attempt)
	}
}

func TestCalculateLargeBaseDelayDoesNotOverflow(t *testing.T) {
	ceiling := 30 * time.Second
	got := backoff.Calculate(time.Hour, 40)
	assert.GreaterOrEqual(t, got, ceiling-ceiling/4)
	assert.Less(t, got, ceiling+ceiling/4)
}
