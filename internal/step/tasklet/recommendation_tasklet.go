// Package tasklet provides the single-shot steps of the pipeline:
// recommendation, snapshot export and retention purge.
package tasklet

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/llm"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const ModuleRecommendationTasklet = "RecommendationTasklet"

// RecommendationTasklet selects qualifying destinations, asks the text
// generator for a recommendation and delivers the result. Every execution
// ends in exactly one notification: a recommendation, an empty-result
// notice, or a degraded listing when generation fails.
type RecommendationTasklet struct {
	repository *spots.Repository
	policy     *config.RecommendationConfig
	generator  port.TextGenerator
	notifier   port.Notifier
	recorder   port.MetricRecorder
}

// NewRecommendationTasklet creates a RecommendationTasklet.
func NewRecommendationTasklet(
	repository *spots.Repository,
	policy *config.RecommendationConfig,
	generator port.TextGenerator,
	notifier port.Notifier,
	recorder port.MetricRecorder,
) *RecommendationTasklet {
	return &RecommendationTasklet{
		repository: repository,
		policy:     policy,
		generator:  generator,
		notifier:   notifier,
		recorder:   recorder,
	}
}

// Execute runs the recommendation flow.
func (t *RecommendationTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	qualifying, err := t.repository.FindQualifying(ctx, t.policy)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleRecommendationTasklet, "failed to select qualifying destinations", err, false, true)
	}

	if len(qualifying) == 0 {
		logger.Infof("No destinations qualify under the current policy; sending empty-result notice.")
		if err := t.notifier.Notify(ctx,
			"Vacation spots: no destinations qualified",
			"No vacation spots matched the recommendation policy in this refresh. The next run may qualify new destinations."); err != nil {
			return model.ExitStatusFailed, exception.NewBatchError(ModuleRecommendationTasklet, "failed to deliver empty-result notice", err, false, false)
		}
		return model.ExitStatusNoOp, nil
	}

	payload, err := json.MarshalIndent(toPayload(qualifying), "", "  ")
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleRecommendationTasklet, "failed to encode destination payload", err, false, false)
	}

	text, genErr := t.generator.Complete(ctx, buildPrompt(string(payload)))
	if genErr != nil {
		reason := llm.FailureReason(genErr)
		t.recorder.RecordGenerationFailure(ctx, reason)
		logger.Warnf("Text generation failed (%s); sending degraded notification: %v", reason, genErr)

		body := fmt.Sprintf(
			"The recommendation text could not be generated (%s).\n\nQualifying destinations:\n%s",
			reason, string(payload))
		if err := t.notifier.Notify(ctx, "Vacation spots: destinations qualified (no summary)", body); err != nil {
			return model.ExitStatusFailed, exception.NewBatchError(ModuleRecommendationTasklet, "failed to deliver degraded notification", err, false, false)
		}
		return model.ExitStatusCompleted, nil
	}

	if err := t.notifier.Notify(ctx, "Your vacation spot recommendations", text); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleRecommendationTasklet, "failed to deliver recommendation", err, false, false)
	}
	logger.Infof("Delivered recommendation covering %d destinations.", len(qualifying))
	return model.ExitStatusCompleted, nil
}

// destinationPayload is the JSON shape handed to the text generator and
// included in degraded notifications.
type destinationPayload struct {
	City                        string  `json:"city"`
	Airport                     string  `json:"airport"`
	CO2KgPerPerson              float64 `json:"co2_emissions_kg_per_person"`
	PunctualPct                 float64 `json:"punctual_pct"`
	AvgTemperatureAirF          float64 `json:"avg_temperature_air_f"`
	AvgRelativeHumidityPct      float64 `json:"avg_relative_humidity_pct"`
	AvgCloudCoverPct            float64 `json:"avg_cloud_cover_pct"`
	PrecipitationProbabilityPct float64 `json:"precipitation_probability_pct"`
	AquariumCnt                 int32   `json:"aquarium_cnt"`
	ZooCnt                      int32   `json:"zoo_cnt"`
	KoreanRestaurantCnt         int32   `json:"korean_restaurant_cnt"`
}

func toPayload(spots []*entity.VacationSpot) []destinationPayload {
	out := make([]destinationPayload, 0, len(spots))
	for _, s := range spots {
		out = append(out, destinationPayload{
			City:                        s.City,
			Airport:                     s.Airport,
			CO2KgPerPerson:              s.CO2KgPerPerson,
			PunctualPct:                 s.PunctualPct,
			AvgTemperatureAirF:          s.AvgTemperatureAirF,
			AvgRelativeHumidityPct:      s.AvgRelativeHumidityPct,
			AvgCloudCoverPct:            s.AvgCloudCoverPct,
			PrecipitationProbabilityPct: s.PrecipitationProbabilityPct,
			AquariumCnt:                 s.AquariumCnt,
			ZooCnt:                      s.ZooCnt,
			KoreanRestaurantCnt:         s.KoreanRestaurantCnt,
		})
	}
	return out
}

func buildPrompt(payload string) string {
	var b strings.Builder
	b.WriteString("You are a travel assistant. The JSON below lists US cities that qualify ")
	b.WriteString("as vacation destinations, with flight emissions, punctuality, weather ")
	b.WriteString("forecasts and attraction counts. Write a short, friendly email that ")
	b.WriteString("recommends these destinations, highlights the trade-offs between them ")
	b.WriteString("and suggests which to pick for a relaxing week. Do not invent data.\n\n")
	b.WriteString(payload)
	return b.String()
}

var _ port.Tasklet = (*RecommendationTasklet)(nil)
