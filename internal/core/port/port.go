// Package port defines the core interfaces for the batch pipeline.
// These interfaces abstract the engine's capabilities and dependencies,
// allowing for flexible implementation and testing.
package port

import (
	"context"

	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/core/model"
)

// Job is the interface for an executable batch job.
type Job interface {
	// Run executes the entire job flow.
	Run(ctx context.Context, jobExecution *model.JobExecution) error
	// JobName returns the logical name of the job.
	JobName() string
}

// Step is the interface for a single step executed within a job.
type Step interface {
	// Execute executes the business logic of the step.
	Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error
	// StepName returns the logical name of the step.
	StepName() string
}

// ItemReader reads items one at a time from a data source.
// Read returns io.EOF when no more items are available.
type ItemReader[I any] interface {
	Open(ctx context.Context, ec model.ExecutionContext) error
	Read(ctx context.Context) (*I, error)
	Close(ctx context.Context) error
}

// ItemProcessor transforms a read item into a writable item.
// A nil result with a nil error filters the item out.
type ItemProcessor[I any, O any] interface {
	Process(ctx context.Context, item *I) (*O, error)
}

// ItemWriter persists a chunk of items within the given transaction.
type ItemWriter[O any] interface {
	Open(ctx context.Context, ec model.ExecutionContext) error
	Write(ctx context.Context, tx *gorm.DB, items []*O) error
	Close(ctx context.Context) error
}

// JobExecutionListener observes job lifecycle events.
type JobExecutionListener interface {
	BeforeJob(ctx context.Context, jobExecution *model.JobExecution)
	AfterJob(ctx context.Context, jobExecution *model.JobExecution)
}

// StepExecutionListener observes step lifecycle events.
type StepExecutionListener interface {
	BeforeStep(ctx context.Context, stepExecution *model.StepExecution)
	AfterStep(ctx context.Context, stepExecution *model.StepExecution)
}

// Tasklet is a single-shot unit of work executed by a TaskletStep.
type Tasklet interface {
	Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error)
}

// Notifier delivers an out-of-band notification to the configured recipient.
// Delivery failure modes are opaque to the caller.
type Notifier interface {
	Notify(ctx context.Context, subject, body string) error
}

// TextGenerator is the hosted text-generation collaborator.
type TextGenerator interface {
	// Complete submits a prompt and returns the generated text.
	Complete(ctx context.Context, prompt string) (string, error)
}

// JobRepository persists job and step executions.
type JobRepository interface {
	SaveJobExecution(ctx context.Context, execution *model.JobExecution) error
	UpdateJobExecution(ctx context.Context, execution *model.JobExecution) error
	FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error)
	SaveStepExecution(ctx context.Context, execution *model.StepExecution) error
	UpdateStepExecution(ctx context.Context, execution *model.StepExecution) error
}

// MetricRecorder records job, step and item level metrics.
type MetricRecorder interface {
	RecordJobStart(ctx context.Context, execution *model.JobExecution)
	RecordJobEnd(ctx context.Context, execution *model.JobExecution)
	RecordStepStart(ctx context.Context, execution *model.StepExecution)
	RecordStepEnd(ctx context.Context, execution *model.StepExecution)
	RecordItemRead(ctx context.Context, stepName string, count int)
	RecordItemWrite(ctx context.Context, stepName string, count int)
	RecordItemFilter(ctx context.Context, stepName string, count int)
	RecordChunkCommit(ctx context.Context, stepName string)
	RecordChunkRollback(ctx context.Context, stepName string)
	RecordGenerationFailure(ctx context.Context, reason string)
}

// Tracer starts spans around job and step executions.
type Tracer interface {
	StartJobSpan(ctx context.Context, execution *model.JobExecution) (context.Context, func())
	StartStepSpan(ctx context.Context, execution *model.StepExecution) (context.Context, func())
	RecordError(ctx context.Context, module string, err error)
}
