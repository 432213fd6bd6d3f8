// Package spots persists the durable vacation spot table and answers the
// qualification queries used by recommendation.
package spots

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/support/exception"
)

const moduleName = "spots_repository"

// Repository stores and queries vacation spots.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository backed by the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Upsert inserts or refreshes the given spots within the supplied
// transaction. Existing (city, airport) rows have every metric column and
// refreshed_at overwritten, so a re-run of an identical refresh is a no-op
// apart from the timestamp.
func (r *Repository) Upsert(ctx context.Context, tx *gorm.DB, items []*entity.VacationSpot) error {
	if len(items) == 0 {
		return nil
	}
	err := tx.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "city"}, {Name: "airport"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"co2_emissions_kg_per_person",
			"punctual_pct",
			"avg_temperature_air_f",
			"avg_relative_humidity_pct",
			"avg_cloud_cover_pct",
			"precipitation_probability_pct",
			"aquarium_cnt",
			"zoo_cnt",
			"korean_restaurant_cnt",
			"refreshed_at",
		}),
	}).Create(items).Error
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to upsert vacation spots", err, false, true)
	}
	return nil
}

// FindQualifying returns up to limit spots matching the recommendation
// policy, ordered by lowest emissions first.
func (r *Repository) FindQualifying(ctx context.Context, policy *config.RecommendationConfig) ([]*entity.VacationSpot, error) {
	var results []*entity.VacationSpot
	err := r.db.WithContext(ctx).
		Where("punctual_pct >= ?", policy.MinPunctualPct).
		Where("avg_temperature_air_f >= ?", policy.MinAvgTemperatureF).
		Where("aquarium_cnt > 0").
		Where("zoo_cnt > 0").
		Where("korean_restaurant_cnt > 0").
		Order("co2_emissions_kg_per_person asc").
		Limit(policy.Limit).
		Find(&results).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to query qualifying vacation spots", err, false, true)
	}
	return results, nil
}

// FindAll returns every stored spot, ordered by city then airport.
func (r *Repository) FindAll(ctx context.Context) ([]*entity.VacationSpot, error) {
	var results []*entity.VacationSpot
	err := r.db.WithContext(ctx).
		Order("city asc, airport asc").
		Find(&results).Error
	if err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load vacation spots", err, false, true)
	}
	return results, nil
}

// PurgeOlderThan deletes spots whose last refresh is before cutoff and
// returns the number of rows removed.
func (r *Repository) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("refreshed_at < ?", cutoff).
		Delete(&entity.VacationSpot{})
	if result.Error != nil {
		return 0, exception.NewBatchError(moduleName, "failed to purge stale vacation spots", result.Error, false, true)
	}
	return result.RowsAffected, nil
}

// Count returns the number of stored spots.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&entity.VacationSpot{}).Count(&n).Error; err != nil {
		return 0, exception.NewBatchError(moduleName, "failed to count vacation spots", err, false, true)
	}
	return n, nil
}
