package llm

import "errors"

// Generation failures are classified so the recommendation step can report
// a precise degradation reason instead of a generic error.
var (
	// ErrCapabilityUnavailable means the backend is not configured or the
	// model rejected the request outright.
	ErrCapabilityUnavailable = errors.New("text generation capability unavailable")
	// ErrRateLimited means the backend throttled the request and retries
	// were exhausted.
	ErrRateLimited = errors.New("text generation rate limited")
	// ErrTimedOut means the request did not complete within the configured
	// deadline.
	ErrTimedOut = errors.New("text generation timed out")
	// ErrGeneration covers all other completion failures.
	ErrGeneration = errors.New("text generation failed")
)

// FailureReason maps a generation error to a short label for metrics and
// notifications.
func FailureReason(err error) string {
	switch {
	case errors.Is(err, ErrCapabilityUnavailable):
		return "capability_unavailable"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrTimedOut):
		return "timed_out"
	default:
		return "generation_failed"
	}
}
