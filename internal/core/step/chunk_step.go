// Package step provides the step implementations of the batch engine:
// chunk-oriented steps and tasklet steps.
package step

import (
	"context"
	"errors"
	"io"
	"time"

	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleChunkStep = "chunk_step"

// ChunkStep is a chunk-oriented step: it reads items one at a time,
// processes them, and writes them in chunks, each chunk under a single
// database transaction. Failed chunk writes are retried per the policy.
type ChunkStep[I any, O any] struct {
	name      string
	reader    port.ItemReader[I]
	processor port.ItemProcessor[I, O]
	writer    port.ItemWriter[O]
	chunkSize int
	db        *gorm.DB
	policy    RetryPolicy
	recorder  port.MetricRecorder
}

// NewChunkStep creates a new chunk-oriented step.
func NewChunkStep[I any, O any](
	name string,
	reader port.ItemReader[I],
	processor port.ItemProcessor[I, O],
	writer port.ItemWriter[O],
	chunkSize int,
	db *gorm.DB,
	policy RetryPolicy,
	recorder port.MetricRecorder,
) *ChunkStep[I, O] {
	if chunkSize <= 0 {
		chunkSize = 10
	}
	return &ChunkStep[I, O]{
		name:      name,
		reader:    reader,
		processor: processor,
		writer:    writer,
		chunkSize: chunkSize,
		db:        db,
		policy:    policy,
		recorder:  recorder,
	}
}

// StepName returns the logical name of the step.
func (s *ChunkStep[I, O]) StepName() string {
	return s.name
}

// Execute runs the read-process-write loop.
func (s *ChunkStep[I, O]) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error {
	if err := s.reader.Open(ctx, stepExecution.ExecutionContext); err != nil {
		return exception.NewBatchError(moduleChunkStep, "failed to open reader", err, false, false)
	}
	defer func() {
		if err := s.reader.Close(ctx); err != nil {
			logger.Errorf("Step '%s': failed to close reader: %v", s.name, err)
		}
	}()

	if err := s.writer.Open(ctx, stepExecution.ExecutionContext); err != nil {
		return exception.NewBatchError(moduleChunkStep, "failed to open writer", err, false, false)
	}
	defer func() {
		if err := s.writer.Close(ctx); err != nil {
			logger.Errorf("Step '%s': failed to close writer: %v", s.name, err)
		}
	}()

	chunk := make([]*O, 0, s.chunkSize)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		item, err := s.reader.Read(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return exception.NewBatchError(moduleChunkStep, "read failed", err, false, false)
		}
		stepExecution.ReadCount++
		s.recorder.RecordItemRead(ctx, s.name, 1)

		out, err := s.processor.Process(ctx, item)
		if err != nil {
			return exception.NewBatchError(moduleChunkStep, "process failed", err, false, false)
		}
		if out == nil {
			stepExecution.FilterCount++
			s.recorder.RecordItemFilter(ctx, s.name, 1)
			continue
		}

		chunk = append(chunk, out)
		if len(chunk) >= s.chunkSize {
			if err := s.commitChunk(ctx, stepExecution, chunk); err != nil {
				return err
			}
			chunk = chunk[:0]
		}
	}

	if len(chunk) > 0 {
		if err := s.commitChunk(ctx, stepExecution, chunk); err != nil {
			return err
		}
	}
	return nil
}

// commitChunk writes one chunk inside a transaction, retrying per policy.
func (s *ChunkStep[I, O]) commitChunk(ctx context.Context, stepExecution *model.StepExecution, chunk []*O) error {
	var lastErr error
	for attempt := 1; attempt <= s.policy.MaxAttempts(); attempt++ {
		if attempt > 1 {
			interval := s.policy.BackoffInterval(attempt - 1)
			logger.Warnf("Step '%s': retrying chunk write (attempt %d/%d) after %v: %v",
				s.name, attempt, s.policy.MaxAttempts(), interval, lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(interval):
			}
		}

		lastErr = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			return s.writer.Write(ctx, tx, chunk)
		})
		if lastErr == nil {
			stepExecution.WriteCount += len(chunk)
			stepExecution.CommitCount++
			s.recorder.RecordItemWrite(ctx, s.name, len(chunk))
			s.recorder.RecordChunkCommit(ctx, s.name)
			return nil
		}

		stepExecution.RollbackCount++
		s.recorder.RecordChunkRollback(ctx, s.name)
		if !s.policy.ShouldRetry(lastErr) {
			break
		}
	}
	return exception.NewBatchError(moduleChunkStep, "chunk write failed", lastErr, false, false)
}

var _ port.Step = (*ChunkStep[any, any])(nil)
