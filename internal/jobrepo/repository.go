package jobrepo

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/support/exception"
)

const moduleName = "job_repository"

// Repository stores job and step executions in the batch metadata tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a Repository backed by the given gorm handle.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// SaveJobExecution inserts a new JobExecution row.
func (r *Repository) SaveJobExecution(ctx context.Context, je *model.JobExecution) error {
	if err := r.db.WithContext(ctx).Create(toJobExecutionRecord(je)).Error; err != nil {
		return exception.NewBatchError(moduleName, "failed to save JobExecution", err, false, true)
	}
	return nil
}

// UpdateJobExecution writes back the current state of a JobExecution.
func (r *Repository) UpdateJobExecution(ctx context.Context, je *model.JobExecution) error {
	// Select("*") forces zero-valued columns (cleared counts, empty lists)
	// to be written as well.
	result := r.db.WithContext(ctx).Model(&JobExecutionRecord{}).
		Where("id = ?", je.ID).
		Select("*").
		Updates(toJobExecutionRecord(je))
	if result.Error != nil {
		return exception.NewBatchError(moduleName, "failed to update JobExecution", result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return exception.NewBatchError(moduleName, "JobExecution not found: "+je.ID, gorm.ErrRecordNotFound, false, false)
	}
	return nil
}

// FindJobExecutionByID loads a JobExecution together with its step executions.
func (r *Repository) FindJobExecutionByID(ctx context.Context, id string) (*model.JobExecution, error) {
	var record JobExecutionRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, exception.NewBatchError(moduleName, "JobExecution not found: "+id, err, false, false)
		}
		return nil, exception.NewBatchError(moduleName, "failed to load JobExecution", err, false, true)
	}

	je := fromJobExecutionRecord(&record)

	var stepRecords []StepExecutionRecord
	if err := r.db.WithContext(ctx).
		Where("job_execution_id = ?", id).
		Order("start_time asc").
		Find(&stepRecords).Error; err != nil {
		return nil, exception.NewBatchError(moduleName, "failed to load StepExecutions", err, false, true)
	}
	for i := range stepRecords {
		je.StepExecutions = append(je.StepExecutions, fromStepExecutionRecord(&stepRecords[i], je))
	}
	return je, nil
}

// SaveStepExecution inserts a new StepExecution row.
func (r *Repository) SaveStepExecution(ctx context.Context, se *model.StepExecution) error {
	if err := r.db.WithContext(ctx).Create(toStepExecutionRecord(se)).Error; err != nil {
		return exception.NewBatchError(moduleName, "failed to save StepExecution", err, false, true)
	}
	return nil
}

// UpdateStepExecution writes back the current state of a StepExecution.
func (r *Repository) UpdateStepExecution(ctx context.Context, se *model.StepExecution) error {
	result := r.db.WithContext(ctx).Model(&StepExecutionRecord{}).
		Where("id = ?", se.ID).
		Select("*").
		Updates(toStepExecutionRecord(se))
	if result.Error != nil {
		return exception.NewBatchError(moduleName, "failed to update StepExecution", result.Error, false, true)
	}
	if result.RowsAffected == 0 {
		return exception.NewBatchError(moduleName, "StepExecution not found: "+se.ID, gorm.ErrRecordNotFound, false, false)
	}
	return nil
}

var _ port.JobRepository = (*Repository)(nil)
