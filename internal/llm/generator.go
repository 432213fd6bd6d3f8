// Package llm provides the completion backend used to turn qualifying
// destinations into a readable recommendation.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/backoff"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

// OpenAIGenerator implements port.TextGenerator on the OpenAI chat API.
type OpenAIGenerator struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	retry   config.RetryConfig
}

// NewOpenAIGenerator creates a generator from the completion settings.
// A missing API key yields a generator that fails with
// ErrCapabilityUnavailable, so callers degrade instead of crashing.
func NewOpenAIGenerator(cfg *config.LLMConfig) *OpenAIGenerator {
	var client *openai.Client
	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		client = openai.NewClientWithConfig(clientCfg)
	}
	return &OpenAIGenerator{
		client:  client,
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		retry:   cfg.Retry,
	}
}

// Complete sends prompt to the chat API and returns the completion text.
// Transient failures are retried with exponential backoff; the returned
// error wraps one of the package-level failure classes.
func (g *OpenAIGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	if g.client == nil {
		return "", fmt.Errorf("%w: no API key configured", ErrCapabilityUnavailable)
	}

	maxAttempts := g.retry.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	initialInterval := time.Duration(g.retry.InitialInterval) * time.Millisecond

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := backoff.Calculate(initialInterval, attempt)
			logger.Debugf("Retrying completion in %s (attempt %d/%d)", delay, attempt+1, maxAttempts)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrTimedOut, ctx.Err())
			case <-time.After(delay):
			}
		}

		text, err := g.complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !errors.Is(err, ErrRateLimited) && !errors.Is(err, ErrTimedOut) {
			return "", err
		}
	}
	return "", lastErr
}

func (g *OpenAIGenerator) complete(ctx context.Context, prompt string) (string, error) {
	reqCtx := ctx
	if g.timeout > 0 {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.client.CreateChatCompletion(reqCtx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return resp.Choices[0].Message.Content, nil
}

// classify maps API errors onto the package failure classes.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %v", ErrTimedOut, err)
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", ErrRateLimited, err)
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrCapabilityUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %v", ErrGeneration, err)
}

var _ port.TextGenerator = (*OpenAIGenerator)(nil)
