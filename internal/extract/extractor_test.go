package extract_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tigerroll/vacationspots/internal/extract"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func TestRouteEmissions(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM estimated_emissions_schedules").
		WillReturnRows(sqlmock.NewRows([]string{"departure_airport", "arrival_airport", "co2_emissions_kg_per_person"}).
			AddRow("SEA", "SAN", 120.5).
			AddRow("SEA", "HNL", 310.0))

	rows, err := extract.NewSQLExtractor(db).RouteEmissions(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SEA", rows[0].DepartureAirport)
	assert.Equal(t, "SAN", rows[0].ArrivalAirport)
	assert.Equal(t, 120.5, rows[0].CO2KgPerPerson)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRoutePunctuality(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM flight_status_latest").
		WillReturnRows(sqlmock.NewRows([]string{"departure_airport", "arrival_airport", "punctual_pct"}).
			AddRow("SEA", "SAN", 87.5))

	rows, err := extract.NewSQLExtractor(db).RoutePunctuality(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 87.5, rows[0].PunctualPct)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityWeatherFiltersByPopulation(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM major_us_cities").
		WithArgs(100000).
		WillReturnRows(sqlmock.NewRows([]string{
			"city", "total_population", "avg_temperature_air_f",
			"avg_relative_humidity_pct", "avg_cloud_cover_pct", "precipitation_probability_pct",
		}).AddRow("San Diego", 1380000, 72.1, 61.0, 32.0, 10.0))

	rows, err := extract.NewSQLExtractor(db).CityWeather(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "San Diego", rows[0].City)
	assert.Equal(t, int64(1380000), rows[0].TotalPopulation)
	assert.Equal(t, 72.1, rows[0].AvgTemperatureAirF)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCityAttractions(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM point_of_interest").
		WithArgs(100000).
		WillReturnRows(sqlmock.NewRows([]string{"city", "aquarium_cnt", "zoo_cnt", "korean_restaurant_cnt"}).
			AddRow("San Diego", 2, 1, 12))

	rows, err := extract.NewSQLExtractor(db).CityAttractions(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 2, rows[0].AquariumCnt)
	assert.Equal(t, 1, rows[0].ZooCnt)
	assert.Equal(t, 12, rows[0].KoreanRestaurantCnt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRouteEmissionsPropagatesQueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	mock.ExpectQuery("FROM estimated_emissions_schedules").
		WillReturnError(assert.AnError)

	_, err := extract.NewSQLExtractor(db).RouteEmissions(context.Background())
	assert.Error(t, err)
}
