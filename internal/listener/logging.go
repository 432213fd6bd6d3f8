// Package listener provides job and step execution listeners for logging,
// metrics and failure notification.
package listener

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

// LoggingListener logs the lifecycle of jobs and steps.
type LoggingListener struct{}

// NewLoggingListener creates a LoggingListener.
func NewLoggingListener() *LoggingListener {
	return &LoggingListener{}
}

// BeforeJob logs the job start.
func (l *LoggingListener) BeforeJob(ctx context.Context, execution *model.JobExecution) {
	logger.Infof("Job '%s' starting (execution ID: %s)", execution.JobName, execution.ID)
}

// AfterJob logs the job outcome including any failures.
func (l *LoggingListener) AfterJob(ctx context.Context, execution *model.JobExecution) {
	if execution.Status == model.BatchStatusFailed {
		logger.Errorf("Job '%s' finished with status %s (failures: %v)", execution.JobName, execution.Status, execution.Failures)
		return
	}
	logger.Infof("Job '%s' finished with status %s", execution.JobName, execution.Status)
}

// BeforeStep logs the step start.
func (l *LoggingListener) BeforeStep(ctx context.Context, execution *model.StepExecution) {
	logger.Infof("Step '%s' starting", execution.StepName)
}

// AfterStep logs the step outcome with its item counts.
func (l *LoggingListener) AfterStep(ctx context.Context, execution *model.StepExecution) {
	logger.Infof("Step '%s' finished with status %s (read: %d, written: %d, filtered: %d, commits: %d, rollbacks: %d)",
		execution.StepName, execution.Status,
		execution.ReadCount, execution.WriteCount, execution.FilterCount,
		execution.CommitCount, execution.RollbackCount)
}

var (
	_ port.JobExecutionListener  = (*LoggingListener)(nil)
	_ port.StepExecutionListener = (*LoggingListener)(nil)
)
