package listener

import (
	"context"
	"fmt"
	"strings"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

// FailureNotificationListener alerts the operator when a job fails.
// Successful jobs are not reported here; the recommendation step owns its
// own result notification.
type FailureNotificationListener struct {
	notifier port.Notifier
}

// NewFailureNotificationListener creates a FailureNotificationListener.
func NewFailureNotificationListener(notifier port.Notifier) *FailureNotificationListener {
	return &FailureNotificationListener{notifier: notifier}
}

// BeforeJob does nothing.
func (l *FailureNotificationListener) BeforeJob(ctx context.Context, execution *model.JobExecution) {
}

// AfterJob sends a failure alert when the job did not complete.
func (l *FailureNotificationListener) AfterJob(ctx context.Context, execution *model.JobExecution) {
	if execution.Status != model.BatchStatusFailed {
		return
	}
	subject := fmt.Sprintf("[vacationspots] Job '%s' failed", execution.JobName)
	body := fmt.Sprintf("Job '%s' (execution ID: %s) failed.\n\nFailures:\n%s",
		execution.JobName, execution.ID, strings.Join(execution.Failures, "\n"))
	if err := l.notifier.Notify(ctx, subject, body); err != nil {
		logger.Errorf("Failed to deliver job failure alert for '%s': %v", execution.JobName, err)
	}
}

var _ port.JobExecutionListener = (*FailureNotificationListener)(nil)
