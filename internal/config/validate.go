package config

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
)

// Validate checks the loaded configuration for inconsistencies. All
// problems are collected so a broken deployment surfaces every mistake in
// one pass instead of one per restart.
func (c *Config) Validate() error {
	var result *multierror.Error
	v := &c.VacationSpots

	if v.Batch.ChunkSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("batch.chunk_size must be positive, got %d", v.Batch.ChunkSize))
	}
	if v.Batch.Retry.MaxAttempts < 1 {
		result = multierror.Append(result, fmt.Errorf("batch.retry.max_attempts must be at least 1, got %d", v.Batch.Retry.MaxAttempts))
	}
	if v.Batch.Retry.InitialInterval < 1 {
		result = multierror.Append(result, fmt.Errorf("batch.retry.initial_interval must be at least 1 millisecond, got %d", v.Batch.Retry.InitialInterval))
	}
	if v.Scheduler.IntervalMinutes <= 0 {
		result = multierror.Append(result, fmt.Errorf("scheduler.interval_minutes must be positive, got %d", v.Scheduler.IntervalMinutes))
	}
	if v.Recommendation.Limit <= 0 {
		result = multierror.Append(result, fmt.Errorf("recommendation.limit must be positive, got %d", v.Recommendation.Limit))
	}
	if v.LLM.TimeoutSeconds <= 0 {
		result = multierror.Append(result, fmt.Errorf("llm.timeout_seconds must be positive, got %d", v.LLM.TimeoutSeconds))
	}
	if v.LLM.Retry.MaxAttempts < 1 {
		result = multierror.Append(result, fmt.Errorf("llm.retry.max_attempts must be at least 1, got %d", v.LLM.Retry.MaxAttempts))
	}
	if v.LLM.Retry.InitialInterval < 1 {
		result = multierror.Append(result, fmt.Errorf("llm.retry.initial_interval must be at least 1 millisecond, got %d", v.LLM.Retry.InitialInterval))
	}
	if v.Retention.Days < 0 {
		result = multierror.Append(result, fmt.Errorf("retention.days must not be negative, got %d", v.Retention.Days))
	}

	if v.Email.Enabled {
		if v.Email.Host == "" {
			result = multierror.Append(result, fmt.Errorf("email.host is required when email is enabled"))
		}
		if v.Email.From == "" {
			result = multierror.Append(result, fmt.Errorf("email.from is required when email is enabled"))
		}
		if len(v.Email.To) == 0 {
			result = multierror.Append(result, fmt.Errorf("email.to must name at least one recipient when email is enabled"))
		}
	}

	switch v.Storage.Provider {
	case "local":
		if v.Storage.BasePath == "" {
			result = multierror.Append(result, fmt.Errorf("storage.base_path is required for the local provider"))
		}
	case "gcs":
		if v.Storage.Bucket == "" {
			result = multierror.Append(result, fmt.Errorf("storage.bucket is required for the gcs provider"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("storage.provider must be 'local' or 'gcs', got '%s'", v.Storage.Provider))
	}

	if v.Metrics.Enabled && v.Metrics.Addr == "" {
		result = multierror.Append(result, fmt.Errorf("metrics.addr is required when metrics are enabled"))
	}

	return result.ErrorOrNil()
}
