package tasklet_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/step/tasklet"
)

func staleSpot(city, airport string, age time.Duration) *entity.VacationSpot {
	s := qualifyingSpot(city, airport)
	s.RefreshedAt = time.Now().UTC().Add(-age)
	return s
}

func TestPurgeRemovesOnlyStaleRows(t *testing.T) {
	repo := setupSpotsRepo(t, []*entity.VacationSpot{
		staleSpot("San Diego", "SAN", 45*24*time.Hour),
		staleSpot("Honolulu", "HNL", time.Hour),
	})

	tk := tasklet.NewRetentionPurgeTasklet(repo, &config.RetentionConfig{Days: 30})
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, exitStatus)

	all, err := repo.FindAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Honolulu", all[0].City)
}

func TestPurgeDisabledIsNoOp(t *testing.T) {
	repo := setupSpotsRepo(t, []*entity.VacationSpot{
		staleSpot("San Diego", "SAN", 400*24*time.Hour),
	})

	tk := tasklet.NewRetentionPurgeTasklet(repo, &config.RetentionConfig{Days: 0})
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusNoOp, exitStatus)

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
