package tasklet

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	"github.com/tigerroll/vacationspots/internal/adapter/storage"
	"github.com/tigerroll/vacationspots/internal/core/model"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/domain/entity"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
)

const ModuleExportTasklet = "SnapshotExportTasklet"

// SnapshotExportTasklet writes the current vacation spot table as a Parquet
// file into a Hive-partitioned (dt=YYYY-MM-DD) path on the configured
// storage backend.
type SnapshotExportTasklet struct {
	repository *spots.Repository
	storage    storage.Connection
}

// NewSnapshotExportTasklet creates a SnapshotExportTasklet.
func NewSnapshotExportTasklet(repository *spots.Repository, conn storage.Connection) *SnapshotExportTasklet {
	return &SnapshotExportTasklet{repository: repository, storage: conn}
}

// Execute exports all stored spots. An empty table exports nothing and
// completes normally.
func (t *SnapshotExportTasklet) Execute(ctx context.Context, stepExecution *model.StepExecution) (model.ExitStatus, error) {
	allSpots, err := t.repository.FindAll(ctx)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleExportTasklet, "failed to load vacation spots for export", err, false, true)
	}
	if len(allSpots) == 0 {
		logger.Warnf("No vacation spot records to export.")
		return model.ExitStatusCompleted, nil
	}

	buf := new(bytes.Buffer)
	pw, err := writer.NewParquetWriterFromWriter(buf, new(entity.VacationSpotExport), 1)
	if err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleExportTasklet, "failed to create parquet writer", err, false, false)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for _, s := range allSpots {
		if err := pw.Write(*s.ToExport()); err != nil {
			return model.ExitStatusFailed, exception.NewBatchError(ModuleExportTasklet, "failed to write record to parquet", err, false, false)
		}
	}
	if err := stopWriter(pw); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleExportTasklet, "failed to finalize parquet file", err, false, false)
	}

	now := time.Now().UTC()
	dateStr := now.Format("2006-01-02")
	objectPath := fmt.Sprintf("vacation_spots/dt=%s/vacation_spots_%s_%s.parquet",
		dateStr,
		strings.ReplaceAll(dateStr, "-", ""),
		now.Format("150405"))

	if err := t.storage.Upload(ctx, objectPath, buf, "application/x-parquet"); err != nil {
		return model.ExitStatusFailed, exception.NewBatchError(ModuleExportTasklet, "failed to upload parquet snapshot to '"+objectPath+"'", err, false, true)
	}

	logger.Infof("Exported %d vacation spot records to '%s' (%d bytes).", len(allSpots), objectPath, buf.Len())
	return model.ExitStatusCompleted, nil
}

// stopWriter finalizes the parquet writer, converting its panics into errors.
func stopWriter(pw *writer.ParquetWriter) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("parquet writer panic: %v", r)
			}
		}
	}()
	return pw.WriteStop()
}

var _ port.Tasklet = (*SnapshotExportTasklet)(nil)
