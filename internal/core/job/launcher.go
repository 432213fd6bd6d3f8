package job

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleLauncher = "job_launcher"

// Launcher starts jobs synchronously. The caller observes the final
// JobExecution when Launch returns, which lets a second job be chained
// strictly after the first one completes.
type Launcher struct {
	jobRepository port.JobRepository
}

// NewLauncher creates a new Launcher.
func NewLauncher(jobRepository port.JobRepository) *Launcher {
	return &Launcher{jobRepository: jobRepository}
}

// Launch creates a JobExecution, persists it, runs the job to completion
// and returns the final execution. A non-nil error means the job did not
// reach COMPLETED; the returned execution still carries the failure detail.
func (l *Launcher) Launch(ctx context.Context, j port.Job, params model.JobParameters) (*model.JobExecution, error) {
	jobExecution := model.NewJobExecution(j.JobName(), params)

	if err := l.jobRepository.SaveJobExecution(ctx, jobExecution); err != nil {
		return nil, exception.NewBatchError(moduleLauncher, "failed to persist new JobExecution for job '"+j.JobName()+"'", err, false, true)
	}

	logger.Infof("Launching job '%s' (execution ID: %s)", j.JobName(), jobExecution.ID)
	if err := j.Run(ctx, jobExecution); err != nil {
		logger.Errorf("Job '%s' (execution ID: %s) finished with status %s: %v", j.JobName(), jobExecution.ID, jobExecution.Status, err)
		return jobExecution, err
	}

	logger.Infof("Job '%s' (execution ID: %s) finished with status %s", j.JobName(), jobExecution.ID, jobExecution.Status)
	return jobExecution, nil
}
