package metrics

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
)

// NoopRecorder discards all metrics. It is used when the metrics endpoint
// is disabled and in tests.
type NoopRecorder struct{}

// NewNoopRecorder creates a NoopRecorder.
func NewNoopRecorder() *NoopRecorder {
	return &NoopRecorder{}
}

func (r *NoopRecorder) RecordJobStart(ctx context.Context, execution *model.JobExecution)   {}
func (r *NoopRecorder) RecordJobEnd(ctx context.Context, execution *model.JobExecution)     {}
func (r *NoopRecorder) RecordStepStart(ctx context.Context, execution *model.StepExecution) {}
func (r *NoopRecorder) RecordStepEnd(ctx context.Context, execution *model.StepExecution)   {}
func (r *NoopRecorder) RecordItemRead(ctx context.Context, stepName string, count int)      {}
func (r *NoopRecorder) RecordItemWrite(ctx context.Context, stepName string, count int)     {}
func (r *NoopRecorder) RecordItemFilter(ctx context.Context, stepName string, count int)    {}
func (r *NoopRecorder) RecordChunkCommit(ctx context.Context, stepName string)              {}
func (r *NoopRecorder) RecordChunkRollback(ctx context.Context, stepName string)            {}
func (r *NoopRecorder) RecordGenerationFailure(ctx context.Context, reason string)          {}

var _ port.MetricRecorder = (*NoopRecorder)(nil)
