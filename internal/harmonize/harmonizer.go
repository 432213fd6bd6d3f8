// Package harmonize joins the aggregated marketplace shapes into candidate
// destinations reachable from the traveler's home airport.
package harmonize

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/airport"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/extract"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const moduleName = "harmonize"

// Harmonizer builds candidate destinations from the extracted data.
type Harmonizer struct {
	extractor   Extractor
	airports    *airport.Lookup
	homeAirport string
}

// Extractor is the subset of extract.Extractor the harmonizer needs.
type Extractor = extract.Extractor

// NewHarmonizer creates a Harmonizer. homeAirport is the IATA code flights
// must depart from.
func NewHarmonizer(extractor Extractor, airports *airport.Lookup, homeAirport string) *Harmonizer {
	return &Harmonizer{
		extractor:   extractor,
		airports:    airports,
		homeAirport: homeAirport,
	}
}

// routeKey identifies a flight route.
type routeKey struct {
	departure string
	arrival   string
}

// BuildCandidates extracts all source shapes and joins them into candidate
// destinations. A route only becomes a candidate when every part is present:
// emission and punctuality data for the route, a known arrival city, and
// weather and attraction data for that city. Incomplete rows are dropped.
// Duplicate (city, airport) pairs resolve to the last row observed.
func (h *Harmonizer) BuildCandidates(ctx context.Context) ([]*entity.CandidateDestination, error) {
	emissions, err := h.extractor.RouteEmissions(ctx)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load route emissions", err, false, true)
	}
	punctuality, err := h.extractor.RoutePunctuality(ctx)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load route punctuality", err, false, true)
	}
	weather, err := h.extractor.CityWeather(ctx)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load city weather", err, false, true)
	}
	attractions, err := h.extractor.CityAttractions(ctx)
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load city attractions", err, false, true)
	}

	punctualityByRoute := make(map[routeKey]entity.RoutePunctuality, len(punctuality))
	for _, p := range punctuality {
		punctualityByRoute[routeKey{p.DepartureAirport, p.ArrivalAirport}] = p
	}
	weatherByCity := make(map[string]entity.CityWeather, len(weather))
	for _, w := range weather {
		weatherByCity[w.City] = w
	}
	attractionsByCity := make(map[string]entity.CityAttractions, len(attractions))
	for _, a := range attractions {
		attractionsByCity[a.City] = a
	}

	candidateByKey := make(map[routeKey]*entity.CandidateDestination)
	var order []routeKey
	dropped := 0

	for _, em := range emissions {
		if em.DepartureAirport != h.homeAirport {
			continue
		}
		punct, ok := punctualityByRoute[routeKey{em.DepartureAirport, em.ArrivalAirport}]
		if !ok {
			dropped++
			continue
		}
		city, ok := h.airports.CityForAirport(em.ArrivalAirport)
		if !ok {
			dropped++
			continue
		}
		cityWeather, ok := weatherByCity[city]
		if !ok {
			dropped++
			continue
		}
		cityAttractions, ok := attractionsByCity[city]
		if !ok {
			dropped++
			continue
		}

		key := routeKey{city, em.ArrivalAirport}
		if _, exists := candidateByKey[key]; !exists {
			order = append(order, key)
		}
		candidateByKey[key] = &entity.CandidateDestination{
			City:                        city,
			Airport:                     em.ArrivalAirport,
			CO2KgPerPerson:              em.CO2KgPerPerson,
			PunctualPct:                 punct.PunctualPct,
			AvgTemperatureAirF:          cityWeather.AvgTemperatureAirF,
			AvgRelativeHumidityPct:      cityWeather.AvgRelativeHumidityPct,
			AvgCloudCoverPct:            cityWeather.AvgCloudCoverPct,
			PrecipitationProbabilityPct: cityWeather.PrecipitationProbabilityPct,
			AquariumCnt:                 cityAttractions.AquariumCnt,
			ZooCnt:                      cityAttractions.ZooCnt,
			KoreanRestaurantCnt:         cityAttractions.KoreanRestaurantCnt,
		}
	}

	candidates := make([]*entity.CandidateDestination, 0, len(candidateByKey))
	for _, key := range order {
		candidates = append(candidates, candidateByKey[key])
	}

	logger.Infof("Harmonized %d candidate destinations from %d routes departing %s (%d incomplete rows dropped)",
		len(candidates), len(emissions), h.homeAirport, dropped)
	return candidates, nil
}
