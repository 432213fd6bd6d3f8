package spots_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/spots"
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

func spot(city, airport string, co2 float64, refreshedAt time.Time) *entity.VacationSpot {
	return &entity.VacationSpot{
		City:                city,
		Airport:             airport,
		CO2KgPerPerson:      co2,
		PunctualPct:         80,
		AvgTemperatureAirF:  75,
		AquariumCnt:         1,
		ZooCnt:              1,
		KoreanRestaurantCnt: 1,
		RefreshedAt:         refreshedAt,
	}
}

func TestUpsertInsertsAndRefreshes(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)
	ctx := context.Background()

	first := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{
			spot("San Diego", "SAN", 120, first),
			spot("Honolulu", "HNL", 300, first),
		})
	})
	require.NoError(t, err)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	// A second refresh of the same (city, airport) must overwrite the
	// metrics in place instead of adding rows.
	second := first.Add(24 * time.Hour)
	updated := spot("San Diego", "SAN", 110, second)
	updated.ZooCnt = 0
	err = db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{updated})
	})
	require.NoError(t, err)

	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	var got entity.VacationSpot
	require.NoError(t, db.Where("city = ? AND airport = ?", "San Diego", "SAN").First(&got).Error)
	assert.Equal(t, 110.0, got.CO2KgPerPerson)
	assert.Equal(t, int32(0), got.ZooCnt)
	assert.Equal(t, second.Unix(), got.RefreshedAt.Unix())
}

func TestUpsertEmptyIsNoOp(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(context.Background(), tx, nil)
	})
	assert.NoError(t, err)
}

func TestFindQualifyingAppliesPolicy(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	cold := spot("Anchorage", "ANC", 50, now)
	cold.AvgTemperatureAirF = 40

	late := spot("Newark", "EWR", 60, now)
	late.PunctualPct = 20

	noZoo := spot("Boise", "BOI", 70, now)
	noZoo.ZooCnt = 0

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{
			spot("Honolulu", "HNL", 300, now),
			spot("San Diego", "SAN", 120, now),
			cold, late, noZoo,
		})
	})
	require.NoError(t, err)

	policy := &config.RecommendationConfig{
		MinPunctualPct:     50,
		MinAvgTemperatureF: 70,
		Limit:              10,
	}
	results, err := repo.FindQualifying(ctx, policy)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Lowest emissions first.
	assert.Equal(t, "San Diego", results[0].City)
	assert.Equal(t, "Honolulu", results[1].City)
}

func TestFindQualifyingHonorsLimit(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{
			spot("Honolulu", "HNL", 300, now),
			spot("San Diego", "SAN", 120, now),
			spot("Miami", "MIA", 200, now),
		})
	})
	require.NoError(t, err)

	results, err := repo.FindQualifying(ctx, &config.RecommendationConfig{
		MinPunctualPct:     50,
		MinAvgTemperatureF: 70,
		Limit:              2,
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "San Diego", results[0].City)
	assert.Equal(t, "Miami", results[1].City)
}

func TestPurgeOlderThanRemovesStaleRows(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)
	ctx := context.Background()

	stale := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	fresh := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{
			spot("San Diego", "SAN", 120, stale),
			spot("Honolulu", "HNL", 300, fresh),
		})
	})
	require.NoError(t, err)

	removed, err := repo.PurgeOlderThan(ctx, fresh.Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Honolulu", all[0].City)
}

func TestFindAllOrdersByCityThenAirport(t *testing.T) {
	db := setupTestDB(t)
	repo := spots.NewRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	err := db.Transaction(func(tx *gorm.DB) error {
		return repo.Upsert(ctx, tx, []*entity.VacationSpot{
			spot("Miami", "MIA", 200, now),
			spot("Austin", "AUS", 150, now),
			spot("Chicago", "ORD", 90, now),
		})
	})
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "Austin", all[0].City)
	assert.Equal(t, "Chicago", all[1].City)
	assert.Equal(t, "Miami", all[2].City)
}
