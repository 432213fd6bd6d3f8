// Package entity defines the domain records flowing through the refresh
// pipeline, from aggregated marketplace rows to the stored vacation spots.
package entity

import "time"

// RouteEmissions is the per-seat carbon emission for a flight route,
// averaged over all scheduled flights on the route.
type RouteEmissions struct {
	DepartureAirport string  `gorm:"column:departure_airport"`
	ArrivalAirport   string  `gorm:"column:arrival_airport"`
	CO2KgPerPerson   float64 `gorm:"column:co2_emissions_kg_per_person"`
}

// RoutePunctuality is the fraction of flights on a route that arrived
// early or on time, as a percentage.
type RoutePunctuality struct {
	DepartureAirport string  `gorm:"column:departure_airport"`
	ArrivalAirport   string  `gorm:"column:arrival_airport"`
	PunctualPct      float64 `gorm:"column:punctual_pct"`
}

// CityWeather is the forecast for a major city, averaged over all zip
// codes belonging to the city.
type CityWeather struct {
	City                        string  `gorm:"column:city"`
	TotalPopulation             int64   `gorm:"column:total_population"`
	AvgTemperatureAirF          float64 `gorm:"column:avg_temperature_air_f"`
	AvgRelativeHumidityPct      float64 `gorm:"column:avg_relative_humidity_pct"`
	AvgCloudCoverPct            float64 `gorm:"column:avg_cloud_cover_pct"`
	PrecipitationProbabilityPct float64 `gorm:"column:precipitation_probability_pct"`
}

// CityAttractions holds the counted points of interest for a major city.
type CityAttractions struct {
	City                string `gorm:"column:city"`
	AquariumCnt         int    `gorm:"column:aquarium_cnt"`
	ZooCnt              int    `gorm:"column:zoo_cnt"`
	KoreanRestaurantCnt int    `gorm:"column:korean_restaurant_cnt"`
}

// CandidateDestination is a fully harmonized destination reachable from the
// traveler's home airport, carrying every metric needed for a decision.
type CandidateDestination struct {
	City                        string
	Airport                     string
	CO2KgPerPerson              float64
	PunctualPct                 float64
	AvgTemperatureAirF          float64
	AvgRelativeHumidityPct      float64
	AvgCloudCoverPct            float64
	PrecipitationProbabilityPct float64
	AquariumCnt                 int
	ZooCnt                      int
	KoreanRestaurantCnt         int
}

// VacationSpot is the durable per-destination record.
type VacationSpot struct {
	City                        string    `gorm:"column:city;primaryKey"`
	Airport                     string    `gorm:"column:airport;primaryKey"`
	CO2KgPerPerson              float64   `gorm:"column:co2_emissions_kg_per_person"`
	PunctualPct                 float64   `gorm:"column:punctual_pct"`
	AvgTemperatureAirF          float64   `gorm:"column:avg_temperature_air_f"`
	AvgRelativeHumidityPct      float64   `gorm:"column:avg_relative_humidity_pct"`
	AvgCloudCoverPct            float64   `gorm:"column:avg_cloud_cover_pct"`
	PrecipitationProbabilityPct float64   `gorm:"column:precipitation_probability_pct"`
	AquariumCnt                 int32     `gorm:"column:aquarium_cnt"`
	ZooCnt                      int32     `gorm:"column:zoo_cnt"`
	KoreanRestaurantCnt         int32     `gorm:"column:korean_restaurant_cnt"`
	RefreshedAt                 time.Time `gorm:"column:refreshed_at"`
}

// TableName specifies the table name for VacationSpot.
func (VacationSpot) TableName() string {
	return "vacation_spots"
}

// VacationSpotExport is the snapshot shape written to Parquet files.
// Timestamps are exported as epoch milliseconds.
type VacationSpotExport struct {
	City                        string  `parquet:"name=city,type=BYTE_ARRAY,convertedtype=UTF8"`
	Airport                     string  `parquet:"name=airport,type=BYTE_ARRAY,convertedtype=UTF8"`
	CO2KgPerPerson              float64 `parquet:"name=co2_emissions_kg_per_person,type=DOUBLE"`
	PunctualPct                 float64 `parquet:"name=punctual_pct,type=DOUBLE"`
	AvgTemperatureAirF          float64 `parquet:"name=avg_temperature_air_f,type=DOUBLE"`
	AvgRelativeHumidityPct      float64 `parquet:"name=avg_relative_humidity_pct,type=DOUBLE"`
	AvgCloudCoverPct            float64 `parquet:"name=avg_cloud_cover_pct,type=DOUBLE"`
	PrecipitationProbabilityPct float64 `parquet:"name=precipitation_probability_pct,type=DOUBLE"`
	AquariumCnt                 int32   `parquet:"name=aquarium_cnt,type=INT32"`
	ZooCnt                      int32   `parquet:"name=zoo_cnt,type=INT32"`
	KoreanRestaurantCnt         int32   `parquet:"name=korean_restaurant_cnt,type=INT32"`
	RefreshedAt                 int64   `parquet:"name=refreshed_at,type=INT64,convertedtype=TIMESTAMP_MILLIS"`
}

// ToExport converts a VacationSpot into its Parquet export shape.
func (v *VacationSpot) ToExport() *VacationSpotExport {
	return &VacationSpotExport{
		City:                        v.City,
		Airport:                     v.Airport,
		CO2KgPerPerson:              v.CO2KgPerPerson,
		PunctualPct:                 v.PunctualPct,
		AvgTemperatureAirF:          v.AvgTemperatureAirF,
		AvgRelativeHumidityPct:      v.AvgRelativeHumidityPct,
		AvgCloudCoverPct:            v.AvgCloudCoverPct,
		PrecipitationProbabilityPct: v.PrecipitationProbabilityPct,
		AquariumCnt:                 v.AquariumCnt,
		ZooCnt:                      v.ZooCnt,
		KoreanRestaurantCnt:         v.KoreanRestaurantCnt,
		RefreshedAt:                 v.RefreshedAt.UnixMilli(),
	}
}
