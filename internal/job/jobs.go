// Package job assembles the two application jobs: the refresh job that
// rebuilds the vacation spot table and the recommendation job that turns it
// into a delivered recommendation.
package job

import (
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/adapter/storage"
	"github.com/tigerroll/vacationspots/internal/config"
	corejob "github.com/tigerroll/vacationspots/internal/core/job"
	"github.com/tigerroll/vacationspots/internal/core/port"
	corestep "github.com/tigerroll/vacationspots/internal/core/step"
	"github.com/tigerroll/vacationspots/internal/harmonize"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/step/processor"
	"github.com/tigerroll/vacationspots/internal/step/reader"
	"github.com/tigerroll/vacationspots/internal/step/tasklet"
	"github.com/tigerroll/vacationspots/internal/step/writer"
)

// Job and step names as they appear in the batch metadata tables.
const (
	RefreshJobName        = "refresh_vacation_spots"
	RecommendationJobName = "recommend_vacation_spots"

	MergeStepName     = "merge_candidates"
	ExportStepName    = "export_snapshot"
	PurgeStepName     = "purge_stale_spots"
	RecommendStepName = "recommend_destinations"
)

// Params collects the shared dependencies of both jobs.
type Params struct {
	fx.In

	Config        *config.Config
	AppDB         *gorm.DB `name:"app_db"`
	JobRepository port.JobRepository
	Harmonizer    *harmonize.Harmonizer
	SpotsRepo     *spots.Repository
	Generator     port.TextGenerator
	Notifier      port.Notifier
	Recorder      port.MetricRecorder
	Tracer        port.Tracer
	Storage       storage.Connection

	JobListeners  []port.JobExecutionListener  `group:"job_listeners"`
	StepListeners []port.StepExecutionListener `group:"step_listeners"`
}

// RefreshJob is the fx-named refresh job.
type RefreshJob port.Job

// RecommendationJob is the fx-named recommendation job.
type RecommendationJob port.Job

// NewRefreshJob builds the refresh job: merge harmonized candidates into
// the durable table, export a Parquet snapshot, then purge stale rows.
func NewRefreshJob(p Params) RefreshJob {
	batchCfg := p.Config.VacationSpots.Batch
	policy := corestep.NewRetryPolicy(
		batchCfg.Retry.MaxAttempts,
		time.Duration(batchCfg.Retry.InitialInterval)*time.Millisecond,
	)

	mergeStep := corestep.NewChunkStep(
		MergeStepName,
		reader.NewCandidateReader(p.Harmonizer),
		processor.NewCandidateProcessor(),
		writer.NewVacationSpotWriter(p.SpotsRepo),
		batchCfg.ChunkSize,
		p.AppDB,
		policy,
		p.Recorder,
	)

	steps := []port.Step{mergeStep}
	if p.Config.VacationSpots.Export.Enabled {
		steps = append(steps, corestep.NewTaskletStep(
			ExportStepName,
			tasklet.NewSnapshotExportTasklet(p.SpotsRepo, p.Storage),
		))
	}
	steps = append(steps, corestep.NewTaskletStep(
		PurgeStepName,
		tasklet.NewRetentionPurgeTasklet(p.SpotsRepo, &p.Config.VacationSpots.Retention),
	))

	return corejob.NewSimpleJob(
		RefreshJobName,
		steps,
		p.JobRepository,
		p.JobListeners,
		p.StepListeners,
		p.Tracer,
	)
}

// NewRecommendationJob builds the recommendation job as a single tasklet step.
func NewRecommendationJob(p Params) RecommendationJob {
	recommendStep := corestep.NewTaskletStep(
		RecommendStepName,
		tasklet.NewRecommendationTasklet(
			p.SpotsRepo,
			&p.Config.VacationSpots.Recommendation,
			p.Generator,
			p.Notifier,
			p.Recorder,
		),
	)

	return corejob.NewSimpleJob(
		RecommendationJobName,
		[]port.Step{recommendStep},
		p.JobRepository,
		p.JobListeners,
		p.StepListeners,
		p.Tracer,
	)
}

// Module provides the application jobs to Fx.
var Module = fx.Options(
	fx.Provide(NewRefreshJob),
	fx.Provide(NewRecommendationJob),
)
