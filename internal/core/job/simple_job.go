// Package job provides the sequential job implementation and the launcher
// that persists executions through the JobRepository.
package job

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleSimpleJob = "simple_job"

// SimpleJob executes its steps strictly in order, short-circuiting on the
// first failure. Listener fan-out wraps the job and every step.
type SimpleJob struct {
	name          string
	steps         []port.Step
	jobRepository port.JobRepository
	jobListeners  []port.JobExecutionListener
	stepListeners []port.StepExecutionListener
	tracer        port.Tracer
}

// NewSimpleJob creates a new SimpleJob.
func NewSimpleJob(
	name string,
	steps []port.Step,
	jobRepository port.JobRepository,
	jobListeners []port.JobExecutionListener,
	stepListeners []port.StepExecutionListener,
	tracer port.Tracer,
) *SimpleJob {
	return &SimpleJob{
		name:          name,
		steps:         steps,
		jobRepository: jobRepository,
		jobListeners:  jobListeners,
		stepListeners: stepListeners,
		tracer:        tracer,
	}
}

// JobName returns the logical name of the job.
func (j *SimpleJob) JobName() string {
	return j.name
}

// Run executes all steps in order within the given JobExecution.
func (j *SimpleJob) Run(ctx context.Context, jobExecution *model.JobExecution) error {
	ctx, endJobSpan := j.tracer.StartJobSpan(ctx, jobExecution)
	defer endJobSpan()

	for _, l := range j.jobListeners {
		l.BeforeJob(ctx, jobExecution)
	}
	defer func() {
		for _, l := range j.jobListeners {
			l.AfterJob(ctx, jobExecution)
		}
	}()

	jobExecution.MarkAsStarted()
	if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
		logger.Warnf("Job '%s': failed to persist STARTED state: %v", j.name, err)
	}

	for _, s := range j.steps {
		select {
		case <-ctx.Done():
			jobExecution.MarkAsStopped()
			if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
				logger.Warnf("Job '%s': failed to persist STOPPED state: %v", j.name, err)
			}
			return ctx.Err()
		default:
		}

		if err := j.runStep(ctx, jobExecution, s); err != nil {
			jobExecution.MarkAsFailed(err)
			if updErr := j.jobRepository.UpdateJobExecution(ctx, jobExecution); updErr != nil {
				logger.Warnf("Job '%s': failed to persist FAILED state: %v", j.name, updErr)
			}
			return exception.NewBatchError(moduleSimpleJob, "step '"+s.StepName()+"' failed", err, false, false)
		}
	}

	jobExecution.MarkAsCompleted()
	if err := j.jobRepository.UpdateJobExecution(ctx, jobExecution); err != nil {
		logger.Warnf("Job '%s': failed to persist COMPLETED state: %v", j.name, err)
	}
	return nil
}

// runStep executes a single step with listeners and persistence around it.
func (j *SimpleJob) runStep(ctx context.Context, jobExecution *model.JobExecution, s port.Step) error {
	stepExecution := model.NewStepExecution(jobExecution, s.StepName())
	jobExecution.AddStepExecution(stepExecution)
	jobExecution.CurrentStepName = s.StepName()

	if err := j.jobRepository.SaveStepExecution(ctx, stepExecution); err != nil {
		logger.Warnf("Step '%s': failed to persist initial state: %v", s.StepName(), err)
	}

	stepCtx, endStepSpan := j.tracer.StartStepSpan(ctx, stepExecution)
	defer endStepSpan()

	for _, l := range j.stepListeners {
		l.BeforeStep(stepCtx, stepExecution)
	}

	stepExecution.MarkAsStarted()
	err := s.Execute(stepCtx, jobExecution, stepExecution)
	if err != nil {
		stepExecution.MarkAsFailed(err)
		j.tracer.RecordError(stepCtx, s.StepName(), err)
	} else {
		stepExecution.MarkAsCompleted()
	}

	for _, l := range j.stepListeners {
		l.AfterStep(stepCtx, stepExecution)
	}

	if updErr := j.jobRepository.UpdateStepExecution(ctx, stepExecution); updErr != nil {
		logger.Warnf("Step '%s': failed to persist final state: %v", s.StepName(), updErr)
	}
	return err
}

var _ port.Job = (*SimpleJob)(nil)
