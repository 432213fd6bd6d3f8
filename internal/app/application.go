// Package app wires the application together with uber-fx and owns its
// lifecycle: configuration, databases, migrations, metrics, tracing, the
// two jobs and the scheduler.
package app

import (
	"context"
	"embed"
	"fmt"
	"os"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tigerroll/vacationspots/internal/adapter/database"
	"github.com/tigerroll/vacationspots/internal/adapter/storage"
	"github.com/tigerroll/vacationspots/internal/airport"
	"github.com/tigerroll/vacationspots/internal/config"
	corejob "github.com/tigerroll/vacationspots/internal/core/job"
	"github.com/tigerroll/vacationspots/internal/core/port"
	"github.com/tigerroll/vacationspots/internal/extract"
	"github.com/tigerroll/vacationspots/internal/harmonize"
	appjob "github.com/tigerroll/vacationspots/internal/job"
	"github.com/tigerroll/vacationspots/internal/jobrepo"
	"github.com/tigerroll/vacationspots/internal/listener"
	"github.com/tigerroll/vacationspots/internal/llm"
	"github.com/tigerroll/vacationspots/internal/metrics"
	"github.com/tigerroll/vacationspots/internal/notification"
	"github.com/tigerroll/vacationspots/internal/scheduler"
	"github.com/tigerroll/vacationspots/internal/spots"
	"github.com/tigerroll/vacationspots/internal/support/exception"
	"github.com/tigerroll/vacationspots/internal/support/logger"
	"github.com/tigerroll/vacationspots/internal/tracing"
)

const moduleName = "app"

// Database connection names expected under vacationspots.database.
const (
	appDBName    = "app"
	sourceDBName = "source"
)

// migrationsPath is the directory inside the embedded FS holding the
// migration SQL files.
const migrationsPath = "resources/migrations"

// Options describes how the process should run.
type Options struct {
	// EnvFilePath is the optional .env file location.
	EnvFilePath string
	// RunOnce executes a single refresh cycle and exits instead of
	// starting the scheduler.
	RunOnce bool
}

// Run builds the fx application and blocks until shutdown is requested,
// either by the context or by the run-once cycle finishing.
func Run(ctx context.Context, opts Options, embeddedConfig config.EmbeddedConfig, migrationsFS embed.FS) error {
	cfg, err := config.LoadConfig(opts.EnvFilePath, embeddedConfig)
	if err != nil {
		return exception.NewBatchError(moduleName, "failed to load configuration", err, false, false)
	}
	logger.SetLogLevel(cfg.VacationSpots.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.VacationSpots.System.Logging.Level)

	app := fx.New(
		fx.Supply(
			cfg,
			opts,
			fx.Annotate(migrationsFS, fx.ResultTags(`name:"migrations_fs"`)),
		),
		logger.Module,
		config.Module,

		fx.Provide(
			fx.Annotate(newAppDB, fx.ResultTags(`name:"app_db"`)),
			fx.Annotate(newSourceDB, fx.ResultTags(`name:"source_db"`)),
			fx.Annotate(jobrepo.NewRepository, fx.ParamTags(`name:"app_db"`), fx.As(new(port.JobRepository))),
			fx.Annotate(spots.NewRepository, fx.ParamTags(`name:"app_db"`)),
			fx.Annotate(extract.NewSQLExtractor, fx.ParamTags(`name:"source_db"`), fx.As(new(extract.Extractor))),
			newAirportLookup,
			newHarmonizer,
			fx.Annotate(llm.NewOpenAIGenerator, fx.As(new(port.TextGenerator))),
			notification.ForConfig,
			newMetricRecorder,
			newTracer,
			newStorageConnection,
			corejob.NewLauncher,
			newScheduler,
		),

		fx.Provide(
			fx.Annotate(listener.NewLoggingListener, fx.As(new(port.JobExecutionListener)), fx.ResultTags(`group:"job_listeners"`)),
			fx.Annotate(listener.NewLoggingListener, fx.As(new(port.StepExecutionListener)), fx.ResultTags(`group:"step_listeners"`)),
			fx.Annotate(listener.NewMetricsListener, fx.As(new(port.JobExecutionListener)), fx.ResultTags(`group:"job_listeners"`)),
			fx.Annotate(listener.NewMetricsListener, fx.As(new(port.StepExecutionListener)), fx.ResultTags(`group:"step_listeners"`)),
			fx.Annotate(listener.NewFailureNotificationListener, fx.As(new(port.JobExecutionListener)), fx.ResultTags(`group:"job_listeners"`)),
		),

		appjob.Module,

		fx.Invoke(fx.Annotate(runMigrations, fx.ParamTags(``, `name:"app_db"`, `name:"migrations_fs"`))),
		fx.Invoke(startMetricsServer),
		fx.Invoke(start),
	)
	if err := app.Err(); err != nil {
		return exception.NewBatchError(moduleName, "failed to assemble application", err, false, false)
	}

	startCtx, cancelStart := context.WithTimeout(ctx, fx.DefaultTimeout)
	defer cancelStart()
	if err := app.Start(startCtx); err != nil {
		return exception.NewBatchError(moduleName, "application failed to start", err, false, false)
	}

	select {
	case <-ctx.Done():
	case <-app.Done():
	}

	stopCtx, cancelStop := context.WithTimeout(context.Background(), fx.DefaultTimeout)
	defer cancelStop()
	if err := app.Stop(stopCtx); err != nil {
		return exception.NewBatchError(moduleName, "application failed to stop cleanly", err, false, false)
	}
	return nil
}

// newAppDB opens the application database holding the vacation spot table
// and the batch metadata.
func newAppDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg, ok := cfg.VacationSpots.Databases[appDBName]
	if !ok {
		return nil, exception.NewBatchError(moduleName, fmt.Sprintf("database connection '%s' is not configured", appDBName), nil, false, false)
	}
	return database.Open(dbCfg)
}

// newSourceDB opens the replicated marketplace database. When no separate
// source connection is configured, the application connection settings are
// reused.
func newSourceDB(cfg *config.Config) (*gorm.DB, error) {
	dbCfg, ok := cfg.VacationSpots.Databases[sourceDBName]
	if !ok {
		logger.Infof("No '%s' database configured; using the '%s' connection settings for extraction.", sourceDBName, appDBName)
		dbCfg, ok = cfg.VacationSpots.Databases[appDBName]
		if !ok {
			return nil, exception.NewBatchError(moduleName, fmt.Sprintf("database connection '%s' is not configured", appDBName), nil, false, false)
		}
	}
	return database.Open(dbCfg)
}

func newAirportLookup(cfg *config.Config) (*airport.Lookup, error) {
	return airport.NewLookup(cfg.VacationSpots.Data.AirportListPath)
}

// newHarmonizer resolves the home airport, preferring the home definition
// file over the static origin configuration.
func newHarmonizer(cfg *config.Config, extractor extract.Extractor, lookup *airport.Lookup) (*harmonize.Harmonizer, error) {
	homeAirport := cfg.VacationSpots.Origin.Airport
	if homePath := cfg.VacationSpots.Data.HomePath; homePath != "" {
		if _, err := os.Stat(homePath); err == nil {
			home, err := airport.LoadHome(homePath)
			if err != nil {
				return nil, err
			}
			homeAirport = home.Airport
		}
	}
	if homeAirport == "" {
		return nil, exception.NewBatchError(moduleName, "no home airport configured", nil, false, false)
	}
	return harmonize.NewHarmonizer(extractor, lookup, homeAirport), nil
}

// metricRecorderResult exposes the recorder both as the port interface and,
// when Prometheus is enabled, as the concrete type for the HTTP server.
type metricRecorderResult struct {
	fx.Out

	Recorder   port.MetricRecorder
	Prometheus *metrics.PrometheusRecorder
}

func newMetricRecorder(cfg *config.Config) metricRecorderResult {
	if !cfg.VacationSpots.Metrics.Enabled {
		return metricRecorderResult{Recorder: metrics.NewNoopRecorder()}
	}
	recorder := metrics.NewPrometheusRecorder()
	return metricRecorderResult{Recorder: recorder, Prometheus: recorder}
}

func newTracer(lc fx.Lifecycle, cfg *config.Config) (port.Tracer, error) {
	if !cfg.VacationSpots.Tracing.Enabled {
		return tracing.NewNoopTracer(), nil
	}
	tracer, err := tracing.NewOTelTracer(context.Background(), &cfg.VacationSpots.Tracing)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
	return tracer, nil
}

func newStorageConnection(lc fx.Lifecycle, cfg *config.Config) (storage.Connection, error) {
	conn, err := storage.New(context.Background(), &cfg.VacationSpots.Storage)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return conn.Close()
		},
	})
	return conn, nil
}

func newScheduler(cfg *config.SchedulerConfig, launcher *corejob.Launcher, jobRepository port.JobRepository, refresh appjob.RefreshJob, recommend appjob.RecommendationJob) *scheduler.Scheduler {
	return scheduler.NewScheduler(cfg, launcher, jobRepository, refresh, recommend)
}

// runMigrations applies the embedded schema migrations to the application
// database before anything else touches it.
func runMigrations(cfg *config.Config, db *gorm.DB, migrationsFS embed.FS) error {
	dbCfg := cfg.VacationSpots.Databases[appDBName]
	return database.Migrate(db, dbCfg.Type, migrationsFS, migrationsPath)
}

func startMetricsServer(lc fx.Lifecycle, cfg *config.Config, recorder *metrics.PrometheusRecorder) {
	if recorder == nil {
		return
	}
	server := metrics.NewServer(&cfg.VacationSpots.Metrics, recorder)
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			server.Start()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return server.Stop(ctx)
		},
	})
}

// start either runs one refresh cycle and shuts down, or hands control to
// the scheduler.
func start(lc fx.Lifecycle, shutdowner fx.Shutdowner, opts Options, sched *scheduler.Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if opts.RunOnce {
				go func() {
					defer func() {
						if err := shutdowner.Shutdown(); err != nil {
							logger.Errorf("Failed to shut down application: %v", err)
						}
					}()
					if err := sched.RunCycle(context.Background()); err != nil {
						logger.Errorf("Refresh cycle failed: %v", err)
					}
				}()
				return nil
			}
			sched.Start(context.Background())
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if !opts.RunOnce {
				sched.Stop()
			}
			logger.Infof("Application is shutting down.")
			return nil
		},
	})
}
