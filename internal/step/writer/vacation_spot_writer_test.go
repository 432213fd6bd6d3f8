package writer_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/step/writer"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entity.VacationSpot{}))
	return db
}

func newSpot(city, airport string) *entity.VacationSpot {
	return &entity.VacationSpot{
		City:               city,
		Airport:            airport,
		CO2KgPerPerson:     100,
		PunctualPct:        80,
		AvgTemperatureAirF: 75,
	}
}

func TestWriteStampsOneTimestampPerRun(t *testing.T) {
	db := setupTestDB(t)
	w := writer.NewVacationSpotWriter(spots.NewRepository(db))
	ctx := context.Background()

	before := time.Now().UTC()
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))

	// Two chunks written out of the same run must carry an identical
	// refresh timestamp.
	err := db.Transaction(func(tx *gorm.DB) error {
		return w.Write(ctx, tx, []*entity.VacationSpot{newSpot("San Diego", "SAN")})
	})
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)
	err = db.Transaction(func(tx *gorm.DB) error {
		return w.Write(ctx, tx, []*entity.VacationSpot{newSpot("Honolulu", "HNL")})
	})
	require.NoError(t, err)
	require.NoError(t, w.Close(ctx))

	var stored []entity.VacationSpot
	require.NoError(t, db.Order("city asc").Find(&stored).Error)
	require.Len(t, stored, 2)
	assert.Equal(t, stored[0].RefreshedAt, stored[1].RefreshedAt)
	assert.False(t, stored[0].RefreshedAt.Before(before.Truncate(time.Second)))
}

func TestOpenRefreshesTimestampBetweenRuns(t *testing.T) {
	db := setupTestDB(t)
	w := writer.NewVacationSpotWriter(spots.NewRepository(db))
	ctx := context.Background()

	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	err := db.Transaction(func(tx *gorm.DB) error {
		return w.Write(ctx, tx, []*entity.VacationSpot{newSpot("San Diego", "SAN")})
	})
	require.NoError(t, err)

	var first entity.VacationSpot
	require.NoError(t, db.First(&first, "city = ?", "San Diego").Error)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	err = db.Transaction(func(tx *gorm.DB) error {
		return w.Write(ctx, tx, []*entity.VacationSpot{newSpot("San Diego", "SAN")})
	})
	require.NoError(t, err)

	var second entity.VacationSpot
	require.NoError(t, db.First(&second, "city = ?", "San Diego").Error)
	assert.True(t, second.RefreshedAt.After(first.RefreshedAt))
}

func TestWriteRespectsCancelledContext(t *testing.T) {
	db := setupTestDB(t)
	w := writer.NewVacationSpotWriter(spots.NewRepository(db))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Open(ctx, model.NewExecutionContext()))
	cancel()

	err := db.Transaction(func(tx *gorm.DB) error {
		return w.Write(ctx, tx, []*entity.VacationSpot{newSpot("San Diego", "SAN")})
	})
	assert.ErrorIs(t, err, context.Canceled)
}
