package listener

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
)

// MetricsListener forwards job and step lifecycle events to the recorder.
type MetricsListener struct {
	recorder port.MetricRecorder
}

// NewMetricsListener creates a MetricsListener.
func NewMetricsListener(recorder port.MetricRecorder) *MetricsListener {
	return &MetricsListener{recorder: recorder}
}

func (l *MetricsListener) BeforeJob(ctx context.Context, execution *model.JobExecution) {
	l.recorder.RecordJobStart(ctx, execution)
}

func (l *MetricsListener) AfterJob(ctx context.Context, execution *model.JobExecution) {
	l.recorder.RecordJobEnd(ctx, execution)
}

func (l *MetricsListener) BeforeStep(ctx context.Context, execution *model.StepExecution) {
	l.recorder.RecordStepStart(ctx, execution)
}

func (l *MetricsListener) AfterStep(ctx context.Context, execution *model.StepExecution) {
	l.recorder.RecordStepEnd(ctx, execution)
}

var (
	_ port.JobExecutionListener  = (*MetricsListener)(nil)
	_ port.StepExecutionListener = (*MetricsListener)(nil)
)
