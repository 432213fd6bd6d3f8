// Package extract aggregates the replicated marketplace tables into the
// intermediate per-route and per-city shapes consumed by harmonization.
package extract

import (
	"context"

	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/support/exception"
)

const moduleName = "extract"

// Extractor reads the aggregated source views.
type Extractor interface {
	// RouteEmissions returns the average per-seat CO2 emission per route.
	RouteEmissions(ctx context.Context) ([]entity.RouteEmissions, error)
	// RoutePunctuality returns the on-time arrival percentage per route.
	RoutePunctuality(ctx context.Context) ([]entity.RoutePunctuality, error)
	// CityWeather returns the forecast averages for major US cities.
	CityWeather(ctx context.Context) ([]entity.CityWeather, error)
	// CityAttractions returns counted points of interest for major US cities.
	CityAttractions(ctx context.Context) ([]entity.CityAttractions, error)
}

// minMajorCityPopulation limits the pipeline to cities big enough to
// provide the full set of urban amenities.
const minMajorCityPopulation = 100000

// SQLExtractor implements Extractor against the replicated source tables.
type SQLExtractor struct {
	db *gorm.DB
}

// NewSQLExtractor creates an Extractor over the given source database.
func NewSQLExtractor(db *gorm.DB) *SQLExtractor {
	return &SQLExtractor{db: db}
}

// RouteEmissions divides total emissions by the seat count to obtain the
// per-person kilograms for each route. Rows without seats or emission data
// are excluded.
func (e *SQLExtractor) RouteEmissions(ctx context.Context) ([]entity.RouteEmissions, error) {
	var rows []entity.RouteEmissions
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			departure_airport,
			arrival_airport,
			AVG(estimated_co2_total_tonnes / seats) * 1000 AS co2_emissions_kg_per_person
		FROM estimated_emissions_schedules
		WHERE seats != 0 AND estimated_co2_total_tonnes IS NOT NULL
		GROUP BY departure_airport, arrival_airport`).
		Scan(&rows).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to extract route emissions", err, false, true)
	}
	return rows, nil
}

// RoutePunctuality computes the fraction of flights that arrived early or
// on time for each route, as a percentage.
func (e *SQLExtractor) RoutePunctuality(ctx context.Context) ([]entity.RoutePunctuality, error) {
	var rows []entity.RoutePunctuality
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			departure_iata_airport_code AS departure_airport,
			arrival_iata_airport_code AS arrival_airport,
			COUNT(CASE WHEN arrival_actual_ingate_timeliness IN ('OnTime', 'Early') THEN 1 END) * 100.0 / COUNT(*) AS punctual_pct
		FROM flight_status_latest
		WHERE arrival_actual_ingate_timeliness IS NOT NULL
		GROUP BY departure_iata_airport_code, arrival_iata_airport_code`).
		Scan(&rows).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to extract route punctuality", err, false, true)
	}
	return rows, nil
}

// CityWeather averages the two-week forecast over every zip code belonging
// to a major US city. The free forecast feed only covers US zip codes.
func (e *SQLExtractor) CityWeather(ctx context.Context) ([]entity.CityWeather, error) {
	var rows []entity.CityWeather
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			city.geo_name AS city,
			city.total_population AS total_population,
			AVG(weather.avg_temperature_air_2m_f) AS avg_temperature_air_f,
			AVG(weather.avg_humidity_relative_2m_pct) AS avg_relative_humidity_pct,
			AVG(weather.avg_cloud_cover_tot_pct) AS avg_cloud_cover_pct,
			AVG(weather.probability_of_precipitation_pct) AS precipitation_probability_pct
		FROM major_us_cities city
		JOIN zip_codes_in_city zip ON city.geo_id = zip.city_geo_id
		JOIN forecast_day weather ON zip.zip_geo_name = weather.postal_code
		WHERE city.total_population > ? AND weather.country = 'US'
		GROUP BY city.geo_id, city.geo_name, city.total_population`, minMajorCityPopulation).
		Scan(&rows).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to extract city weather", err, false, true)
	}
	return rows, nil
}

// CityAttractions counts aquariums, zoos and Korean restaurants per major
// US city from the point of interest index.
func (e *SQLExtractor) CityAttractions(ctx context.Context) ([]entity.CityAttractions, error) {
	var rows []entity.CityAttractions
	err := e.db.WithContext(ctx).Raw(`
		SELECT
			city.geo_name AS city,
			COUNT(CASE WHEN poi.category_main = 'Aquarium' THEN 1 END) AS aquarium_cnt,
			COUNT(CASE WHEN poi.category_main = 'Zoo' THEN 1 END) AS zoo_cnt,
			COUNT(CASE WHEN poi.category_main = 'Korean Restaurant' THEN 1 END) AS korean_restaurant_cnt
		FROM point_of_interest poi
		JOIN major_us_cities city ON city.geo_id = poi.city_geo_id
		WHERE poi.category_main IN ('Aquarium', 'Zoo', 'Korean Restaurant')
		  AND city.total_population > ?
		GROUP BY city.geo_id, city.geo_name`, minMajorCityPopulation).
		Scan(&rows).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to extract city attractions", err, false, true)
	}
	return rows, nil
}

var _ Extractor = (*SQLExtractor)(nil)
