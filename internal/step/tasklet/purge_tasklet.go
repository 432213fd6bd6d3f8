package tasklet

import (
	"context"
	"time"

	"github.com/tigerroll/vacationspots/internal/config"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const ModulePurgeTasklet = "RetentionPurgeTasklet"

// RetentionPurgeTasklet removes vacation spots that have not been refreshed
// within the retention window. A zero retention disables purging.
type RetentionPurgeTasklet struct {
	repository *spots.Repository
	retention  *config.RetentionConfig
}

// NewRetentionPurgeTasklet creates a RetentionPurgeTasklet.
func NewRetentionPurgeTasklet(repository *spots.Repository, retention *config.RetentionConfig) *RetentionPurgeTasklet {
	return &RetentionPurgeTasklet{repository: repository, retention: retention}
}

// Execute purges stale rows.
func (t *RetentionPurgeTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	if t.retention.Days <= 0 {
		logger.Debugf("Retention purge disabled.")
		return model.ExitStatusNoOp, nil
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -t.retention.Days)
	removed, err := t.repository.PurgeOlderThan(ctx, cutoff)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModulePurgeTasklet, "failed to purge stale vacation spots", err, false, true)
	}

	if removed > 0 {
		logger.Infof("Purged %d vacation spot records not refreshed since %s.", removed, cutoff.Format(time.RFC3339))
	}
	return model.ExitStatusCompleted, nil
}

var _ port.Tasklet = (*RetentionPurgeTasklet)(nil)
