// Package processor provides the item processors for the refresh pipeline.
package processor

import (
	"context"

	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
)

// CandidateProcessor converts harmonized candidates into the durable
// vacation spot shape. The refresh timestamp is stamped by the writer so
// the whole run shares one value.
type CandidateProcessor struct{}

// NewCandidateProcessor creates a CandidateProcessor.
func NewCandidateProcessor() *CandidateProcessor {
	return &CandidateProcessor{}
}

// Process maps a candidate onto a VacationSpot. Candidates are already
// validated by harmonization, so nothing is filtered here.
func (p *CandidateProcessor) Process(ctx context.Context, item *entity.CandidateDestination) (*entity.VacationSpot, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	return &entity.VacationSpot{
		City:                        item.City,
		Airport:                     item.Airport,
		CO2KgPerPerson:              item.CO2KgPerPerson,
		PunctualPct:                 item.PunctualPct,
		AvgTemperatureAirF:          item.AvgTemperatureAirF,
		AvgRelativeHumidityPct:      item.AvgRelativeHumidityPct,
		AvgCloudCoverPct:            item.AvgCloudCoverPct,
		PrecipitationProbabilityPct: item.PrecipitationProbabilityPct,
		AquariumCnt:                 int32(item.AquariumCnt),
		ZooCnt:                      int32(item.ZooCnt),
		KoreanRestaurantCnt:         int32(item.KoreanRestaurantCnt),
	}, nil
}

var _ port.ItemProcessor[entity.CandidateDestination, entity.VacationSpot] = (*CandidateProcessor)(nil)
