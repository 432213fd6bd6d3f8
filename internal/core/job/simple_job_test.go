package job_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	corejob "github.com/tigerroll/vacationspots/internal/core/job"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	corestep "github.com/tigerroll/vacationspots/internal/core/step"
	"github.com/tigerroll/vacationspots/internal/tracing"
)

type memoryJobRepository struct {
	mu             sync.Mutex
	jobExecutions  map[string]*model.JobExecution
	stepExecutions map[string]*model.StepExecution
}

func newMemoryJobRepository() *memoryJobRepository {
	return &memoryJobRepository{
		jobExecutions:  make(map[string]*model.JobExecution),
		stepExecutions: make(map[string]*model.StepExecution),
	}
}

func (r *memoryJobRepository) SaveJobExecution(ctx context.Context, je *model.JobExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobExecutions[je.ID] = je
	return nil
}

func (r *memoryJobRepository) UpdateJobExecution(ctx context.Context, je *model.JobExecution) error {
	return r.SaveJobExecution(ctx, je)
}

func (r *memoryJobRepository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	je, ok := r.jobExecutions[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return je, nil
}

func (r *memoryJobRepository) SaveStepExecution(ctx context.Context, se *model.StepExecution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stepExecutions[se.ID] = se
	return nil
}

func (r *memoryJobRepository) UpdateStepExecution(ctx context.Context, se *model.StepExecution) error {
	return r.SaveStepExecution(ctx, se)
}

// recordingTasklet notes its execution order and returns a fixed outcome.
type recordingTasklet struct {
	name       string
	exitStatus model.ExitStatus
	err        error
	order      *[]string
}

func (t *recordingTasklet) Execute(ctx context.Context, se *model.StepExecution) (model.ExitStatus, error) {
	*t.order = append(*t.order, t.name)
	if t.err != nil {
		return model.ExitStatusFailed, t.err
	}
	return t.exitStatus, nil
}

type countingListener struct {
	beforeJobs, afterJobs   int
	beforeSteps, afterSteps int
}

func (l *countingListener) BeforeJob(ctx context.Context, je *model.JobExecution)   { l.beforeJobs++ }
func (l *countingListener) AfterJob(ctx context.Context, je *model.JobExecution)    { l.afterJobs++ }
func (l *countingListener) BeforeStep(ctx context.Context, se *model.StepExecution) { l.beforeSteps++ }
func (l *countingListener) AfterStep(ctx context.Context, se *model.StepExecution)  { l.afterSteps++ }

func newJob(name string, steps []port.Step, repo port.JobRepository, listener *countingListener) *corejob.SimpleJob {
	return corejob.NewSimpleJob(
		name,
		steps,
		repo,
		[]port.JobExecutionListener{listener},
		[]port.StepExecutionListener{listener},
		tracing.NewNoopTracer(),
	)
}

func TestRunExecutesStepsInOrder(t *testing.T) {
	var order []string
	steps := []port.Step{
		corestep.NewTaskletStep("first", &recordingTasklet{name: "first", exitStatus: model.ExitStatusCompleted, order: &order}),
		corestep.NewTaskletStep("second", &recordingTasklet{name: "second", exitStatus: model.ExitStatusCompleted, order: &order}),
	}
	repo := newMemoryJobRepository()
	listener := &countingListener{}
	j := newJob("test_job", steps, repo, listener)

	je := model.NewJobExecution("test_job", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))
	require.NoError(t, j.Run(context.Background(), je))

	assert.Equal(t, []string{"first", "second"}, order)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	assert.Equal(t, model.ExitStatusCompleted, je.ExitStatus)
	require.Len(t, je.StepExecutions, 2)
	assert.Equal(t, 1, listener.beforeJobs)
	assert.Equal(t, 1, listener.afterJobs)
	assert.Equal(t, 2, listener.beforeSteps)
	assert.Equal(t, 2, listener.afterSteps)
}

func TestRunShortCircuitsOnStepFailure(t *testing.T) {
	var order []string
	steps := []port.Step{
		corestep.NewTaskletStep("first", &recordingTasklet{name: "first", err: errors.New("boom"), order: &order}),
		corestep.NewTaskletStep("second", &recordingTasklet{name: "second", exitStatus: model.ExitStatusCompleted, order: &order}),
	}
	repo := newMemoryJobRepository()
	j := newJob("test_job", steps, repo, &countingListener{})

	je := model.NewJobExecution("test_job", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))
	err := j.Run(context.Background(), je)
	require.Error(t, err)

	// The second step never runs.
	assert.Equal(t, []string{"first"}, order)
	assert.Equal(t, model.BatchStatusFailed, je.Status)
	require.Len(t, je.StepExecutions, 1)
	assert.Equal(t, model.BatchStatusFailed, je.StepExecutions[0].Status)
	assert.NotEmpty(t, je.Failures)
}

func TestRunPreservesTaskletExitStatus(t *testing.T) {
	var order []string
	steps := []port.Step{
		corestep.NewTaskletStep("noop", &recordingTasklet{name: "noop", exitStatus: model.ExitStatusNoOp, order: &order}),
	}
	repo := newMemoryJobRepository()
	j := newJob("test_job", steps, repo, &countingListener{})

	je := model.NewJobExecution("test_job", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))
	require.NoError(t, j.Run(context.Background(), je))

	// The job completes while the step keeps its NO_OP outcome.
	assert.Equal(t, model.BatchStatusCompleted, je.Status)
	require.Len(t, je.StepExecutions, 1)
	assert.Equal(t, model.ExitStatusNoOp, je.StepExecutions[0].ExitStatus)
	assert.Equal(t, model.BatchStatusCompleted, je.StepExecutions[0].Status)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	var order []string
	steps := []port.Step{
		corestep.NewTaskletStep("first", &recordingTasklet{name: "first", exitStatus: model.ExitStatusCompleted, order: &order}),
	}
	repo := newMemoryJobRepository()
	j := newJob("test_job", steps, repo, &countingListener{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	je := model.NewJobExecution("test_job", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(context.Background(), je))
	err := j.Run(ctx, je)
	require.Error(t, err)

	assert.Empty(t, order)
	assert.Equal(t, model.BatchStatusStopped, je.Status)
}

func TestLauncherPersistsAndRuns(t *testing.T) {
	var order []string
	steps := []port.Step{
		corestep.NewTaskletStep("only", &recordingTasklet{name: "only", exitStatus: model.ExitStatusCompleted, order: &order}),
	}
	repo := newMemoryJobRepository()
	j := newJob("test_job", steps, repo, &countingListener{})
	launcher := corejob.NewLauncher(repo)

	je, err := launcher.Launch(context.Background(), j, model.NewJobParameters())
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, je.Status)

	persisted, err := repo.FindJobExecutionByID(context.Background(), je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusCompleted, persisted.Status)
}
