package jobrepo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/jobrepo"
)

func setupRepository(t *testing.T) *jobrepo.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&jobrepo.JobExecutionRecord{}, &jobrepo.StepExecutionRecord{}))
	return jobrepo.NewRepository(db)
}

func TestJobExecutionRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	params := model.NewJobParameters()
	params.Put("origin", "SEA")
	je := model.NewJobExecution("refresh_vacation_spots", params)
	je.ExecutionContext.Put("cursor", "42")

	require.NoError(t, repo.SaveJobExecution(ctx, je))

	loaded, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	assert.Equal(t, je.ID, loaded.ID)
	assert.Equal(t, "refresh_vacation_spots", loaded.JobName)
	assert.Equal(t, model.BatchStatusStarting, loaded.Status)
	assert.Equal(t, model.ExitStatusUnknown, loaded.ExitStatus)

	origin, ok := loaded.Parameters.GetString("origin")
	require.True(t, ok)
	assert.Equal(t, "SEA", origin)
}

func TestUpdateJobExecutionPersistsLifecycle(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	je := model.NewJobExecution("refresh_vacation_spots", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	je.MarkAsStarted()
	je.MarkAsFailed(errors.New("source unavailable"))
	require.NoError(t, repo.UpdateJobExecution(ctx, je))

	loaded, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BatchStatusFailed, loaded.Status)
	assert.Equal(t, model.ExitStatusFailed, loaded.ExitStatus)
	require.NotNil(t, loaded.EndTime)
	require.Len(t, loaded.Failures, 1)
	assert.Contains(t, loaded.Failures[0], "source unavailable")
}

func TestUpdateJobExecutionUnknownID(t *testing.T) {
	repo := setupRepository(t)

	je := model.NewJobExecution("refresh_vacation_spots", model.NewJobParameters())
	err := repo.UpdateJobExecution(context.Background(), je)
	assert.Error(t, err)
}

func TestStepExecutionRoundTrip(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	je := model.NewJobExecution("refresh_vacation_spots", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	se := model.NewStepExecution(je, "merge_candidates")
	require.NoError(t, repo.SaveStepExecution(ctx, se))

	se.MarkAsStarted()
	se.ReadCount = 12
	se.WriteCount = 10
	se.FilterCount = 2
	se.CommitCount = 1
	se.MarkAsCompleted()
	require.NoError(t, repo.UpdateStepExecution(ctx, se))

	loaded, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	require.Len(t, loaded.StepExecutions, 1)

	got := loaded.StepExecutions[0]
	assert.Equal(t, "merge_candidates", got.StepName)
	assert.Equal(t, je.ID, got.JobExecutionID)
	assert.Equal(t, model.BatchStatusCompleted, got.Status)
	assert.Equal(t, 12, got.ReadCount)
	assert.Equal(t, 10, got.WriteCount)
	assert.Equal(t, 2, got.FilterCount)
	assert.Equal(t, 1, got.CommitCount)
}

func TestUpdateStepExecutionWritesZeroedCounts(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	je := model.NewJobExecution("refresh_vacation_spots", model.NewJobParameters())
	require.NoError(t, repo.SaveJobExecution(ctx, je))

	se := model.NewStepExecution(je, "merge_candidates")
	se.ReadCount = 5
	require.NoError(t, repo.SaveStepExecution(ctx, se))

	se.ReadCount = 0
	require.NoError(t, repo.UpdateStepExecution(ctx, se))

	loaded, err := repo.FindJobExecutionByID(ctx, je.ID)
	require.NoError(t, err)
	require.Len(t, loaded.StepExecutions, 1)
	assert.Equal(t, 0, loaded.StepExecutions[0].ReadCount)
}

func TestFindJobExecutionByIDUnknown(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.FindJobExecutionByID(context.Background(), "does-not-exist")
	assert.Error(t, err)
}
