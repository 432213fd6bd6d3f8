// Package writer provides the item writers for the refresh pipeline.
package writer

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const ModuleVacationSpotWriter = "VacationSpotWriter"

// VacationSpotWriter upserts vacation spots inside the chunk transaction.
// Every row written during one step execution carries the same refresh
// timestamp, captured in Open.
type VacationSpotWriter struct {
	repository  *spots.Repository
	refreshedAt time.Time
}

// NewVacationSpotWriter creates a VacationSpotWriter.
func NewVacationSpotWriter(repository *spots.Repository) *VacationSpotWriter {
	return &VacationSpotWriter{repository: repository}
}

// Open captures the refresh timestamp for this run.
func (w *VacationSpotWriter) Open(ctx context.Context, ec model.ExecutionContext) error {
	w.refreshedAt = time.Now().UTC()
	logger.Debugf("VacationSpotWriter: refresh timestamp %s.", w.refreshedAt.Format(time.RFC3339))
	return nil
}

// Write stamps the refresh timestamp and upserts the chunk.
func (w *VacationSpotWriter) Write(ctx context.Context, tx *gorm.DB, items []*entity.VacationSpot) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	for _, item := range items {
		item.RefreshedAt = w.refreshedAt
	}
	if err := w.repository.Upsert(ctx, tx, items); err != nil {
		return exception.NewBatchError(ModuleVacationSpotWriter, "failed to upsert vacation spot chunk", err, false, true)
	}
	return nil
}

// Close does nothing; the repository owns the connection.
func (w *VacationSpotWriter) Close(ctx context.Context) error {
	return nil
}

var _ port.ItemWriter[entity.VacationSpot] = (*VacationSpotWriter)(nil)
