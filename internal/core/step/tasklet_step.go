package step

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
)

const moduleTaskletStep = "tasklet_step"

// TaskletStep executes a single Tasklet as one step.
type TaskletStep struct {
	name    string
	tasklet port.Tasklet
}

// NewTaskletStep creates a new TaskletStep.
func NewTaskletStep(name string, tasklet port.Tasklet) *TaskletStep {
	return &TaskletStep{name: name, tasklet: tasklet}
}

// StepName returns the logical name of the step.
func (s *TaskletStep) StepName() string {
	return s.name
}

// Execute runs the tasklet and maps its exit status onto the StepExecution.
func (s *TaskletStep) Execute(ctx context.Context, jobExecution *model.JobExecution, stepExecution *model.StepExecution) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	exitStatus, err := s.tasklet.Execute(ctx, stepExecution)
	if err != nil {
		return exception.NewBatchError(moduleTaskletStep, "tasklet failed", err, false, false)
	}
	if exitStatus != "" {
		stepExecution.ExitStatus = exitStatus
	}
	return nil
}

var _ port.Step = (*TaskletStep)(nil)
