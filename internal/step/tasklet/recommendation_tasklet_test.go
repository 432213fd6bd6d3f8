package tasklet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/llm"
	"github.com/tigerroll/vacationspots/internal/metrics"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/step/tasklet"
)

type fakeGenerator struct {
	text string
	err  error

	prompts []string
}

func (g *fakeGenerator) Complete(ctx context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.text, g.err
}

type notification struct {
	subject string
	body    string
}

type fakeNotifier struct {
	err  error
	sent []notification
}

func (n *fakeNotifier) Notify(ctx context.Context, subject, body string) error {
	if n.err != nil {
		return n.err
	}
	n.sent = append(n.sent, notification{subject: subject, body: body})
	return nil
}

type countingRecorder struct {
	*metrics.NoopRecorder
	failureReasons []string
}

func (r *countingRecorder) RecordGenerationFailure(ctx context.Context, reason string) {
	r.failureReasons = append(r.failureReasons, reason)
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{NoopRecorder: metrics.NewNoopRecorder()}
}

func setupSpotsRepo(t *testing.T, seed []*entity.VacationSpot) *spots.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.VacationSpot{}))

	repo := spots.NewRepository(db)
	if len(seed) > 0 {
		require.NoError(t, db.Transaction(func(tx *gorm.DB) error {
			return repo.Upsert(context.Background(), tx, seed)
		}))
	}
	return repo
}

func qualifyingSpot(city, airport string) *entity.VacationSpot {
	return &entity.VacationSpot{
		City:                city,
		Airport:             airport,
		CO2KgPerPerson:      120,
		PunctualPct:         85,
		AvgTemperatureAirF:  75,
		AquariumCnt:         1,
		ZooCnt:              1,
		KoreanRestaurantCnt: 5,
		RefreshedAt:         time.Now().UTC(),
	}
}

func defaultPolicy() *config.RecommendationConfig {
	return &config.RecommendationConfig{
		MinPunctualPct:     50,
		MinAvgTemperatureF: 70,
		Limit:              10,
	}
}

func newStepExecution() *model.StepExecution {
	je := model.NewJobExecution("recommend_vacation_spots", model.NewJobParameters())
	return model.NewStepExecution(je, "recommend_destinations")
}

func TestExecuteDeliversRecommendation(t *testing.T) {
	repo := setupSpotsRepo(t, []*entity.VacationSpot{qualifyingSpot("San Diego", "SAN")})
	generator := &fakeGenerator{text: "Go to San Diego."}
	notifier := &fakeNotifier{}
	recorder := newCountingRecorder()

	tk := tasklet.NewRecommendationTasklet(repo, defaultPolicy(), generator, notifier, recorder)
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, exitStatus)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Your vacation spot recommendations", notifier.sent[0].subject)
	assert.Equal(t, "Go to San Diego.", notifier.sent[0].body)

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], `"city": "San Diego"`)
	assert.Empty(t, recorder.failureReasons)
}

func TestExecuteSendsEmptyResultNotice(t *testing.T) {
	repo := setupSpotsRepo(t, nil)
	generator := &fakeGenerator{text: "unused"}
	notifier := &fakeNotifier{}

	tk := tasklet.NewRecommendationTasklet(repo, defaultPolicy(), generator, notifier, newCountingRecorder())
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusNoOp, exitStatus)

	// The generator must not be consulted for an empty result.
	assert.Empty(t, generator.prompts)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Vacation spots: no destinations qualified", notifier.sent[0].subject)
}

func TestExecuteDegradesWhenGenerationFails(t *testing.T) {
	repo := setupSpotsRepo(t, []*entity.VacationSpot{qualifyingSpot("San Diego", "SAN")})
	generator := &fakeGenerator{err: llm.ErrRateLimited}
	notifier := &fakeNotifier{}
	recorder := newCountingRecorder()

	tk := tasklet.NewRecommendationTasklet(repo, defaultPolicy(), generator, notifier, recorder)
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.NoError(t, err)
	assert.Equal(t, model.ExitStatusCompleted, exitStatus)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "Vacation spots: destinations qualified (no summary)", notifier.sent[0].subject)
	assert.Contains(t, notifier.sent[0].body, "rate_limited")
	assert.Contains(t, notifier.sent[0].body, `"city": "San Diego"`)
	assert.Equal(t, []string{"rate_limited"}, recorder.failureReasons)
}

func TestExecuteFailsWhenNotificationFails(t *testing.T) {
	repo := setupSpotsRepo(t, []*entity.VacationSpot{qualifyingSpot("San Diego", "SAN")})
	generator := &fakeGenerator{text: "Go to San Diego."}
	notifier := &fakeNotifier{err: errors.New("smtp unreachable")}

	tk := tasklet.NewRecommendationTasklet(repo, defaultPolicy(), generator, notifier, newCountingRecorder())
	exitStatus, err := tk.Execute(context.Background(), newStepExecution())
	require.Error(t, err)
	assert.Equal(t, model.ExitStatusFailed, exitStatus)
}
