// Package backoff provides the retry backoff calculation shared by the
// text-generation client and the notification sink.
package backoff

import (
	"math/rand"
	"time"
)

// maxBackoff caps the computed delay before jitter is applied.
const maxBackoff = 30 * time.Second

// Calculate returns exponential backoff with jitter.
// The base delay is doubled each attempt, with random jitter up to 25%,
// capped at 30 seconds. A non-positive base delay disables the backoff
// entirely and returns 0.
func Calculate(baseDelay time.Duration, attempt int) time.Duration {
	if attempt <= 0 || baseDelay <= 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	// Clamp before shifting so a large base delay cannot overflow.
	backoff := maxBackoff
	if baseDelay <= maxBackoff>>uint(attempt) {
		backoff = baseDelay << uint(attempt)
	}
	half := int64(backoff) / 2
	if half <= 0 {
		return backoff
	}
	jitter := time.Duration(rand.Int63n(half)) - backoff/4
	return backoff + jitter
}
