package config

// Package config provides structures and utilities for managing application configuration.

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
type EmbeddedConfig []byte

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// DatabaseConfig holds connection settings for a single database.
type DatabaseConfig struct {
	Type     string `yaml:"type"` // "postgres", "mysql" or "sqlite"
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Database string `yaml:"database"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Sslmode  string `yaml:"sslmode"`
}

// RetryConfig holds retry settings for chunk commits and external calls.
type RetryConfig struct {
	// MaxAttempts is the maximum number of attempts, including the first one.
	MaxAttempts int `yaml:"max_attempts"`
	// InitialInterval is the initial backoff interval in milliseconds.
	InitialInterval int `yaml:"initial_interval"`
}

// BatchConfig holds settings for the batch engine.
type BatchConfig struct {
	// ChunkSize is the chunk size for chunk-oriented steps.
	ChunkSize int `yaml:"chunk_size"`
	// Retry is the chunk commit retry configuration.
	Retry RetryConfig `yaml:"retry"`
}

// SchedulerConfig holds settings for the periodic refresh schedule.
type SchedulerConfig struct {
	// IntervalMinutes is the time between refresh runs.
	IntervalMinutes int `yaml:"interval_minutes"`
	// RunOnStart triggers a run immediately when the scheduler starts.
	// Defaults to true. Because zero values in YAML do not override
	// defaults, setting run_on_start: false in the file has no effect;
	// disable it with VACATIONSPOTS_SCHEDULER_RUN_ON_START=false.
	RunOnStart bool `yaml:"run_on_start"`
}

// OriginConfig identifies the traveler's home location. Destinations
// reachable from the origin airport are excluded from candidates.
type OriginConfig struct {
	Airport string `yaml:"airport"`
}

// RecommendationConfig holds the qualification policy for vacation spots.
type RecommendationConfig struct {
	// MinPunctualPct is the minimum flight punctuality percentage.
	MinPunctualPct float64 `yaml:"min_punctual_pct"`
	// MinAvgTemperatureF is the minimum average air temperature in Fahrenheit.
	MinAvgTemperatureF float64 `yaml:"min_avg_temperature_f"`
	// Limit caps the number of destinations handed to the text generator.
	Limit int `yaml:"limit"`
}

// LLMConfig holds settings for the completion backend.
type LLMConfig struct {
	APIKey string `yaml:"api_key"`
	// BaseURL overrides the API endpoint, e.g. for a compatible proxy.
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
	// TimeoutSeconds bounds a single completion request.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// Retry bounds transient-failure retries for a completion.
	Retry RetryConfig `yaml:"retry"`
}

// EmailConfig holds SMTP delivery settings for recommendation notifications.
type EmailConfig struct {
	Enabled  bool     `yaml:"enabled"`
	Host     string   `yaml:"host"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       []string `yaml:"to"`
}

// StorageConfig holds settings for snapshot export storage.
type StorageConfig struct {
	// Provider selects the backend: "local" or "gcs".
	Provider string `yaml:"provider"`
	// Bucket is the GCS bucket name when Provider is "gcs".
	Bucket string `yaml:"bucket"`
	// BasePath is the directory (local) or object prefix (gcs) for exports.
	BasePath string `yaml:"base_path"`
	// CredentialsFile is an optional service account key file for GCS.
	CredentialsFile string `yaml:"credentials_file"`
}

// ExportConfig holds settings for the parquet snapshot export step.
type ExportConfig struct {
	Enabled bool `yaml:"enabled"`
}

// RetentionConfig controls purging of stale vacation spot rows.
type RetentionConfig struct {
	// Days is the maximum age of a row since its last refresh. Zero disables purging.
	Days int `yaml:"days"`
}

// MetricsConfig holds settings for the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// TracingConfig holds settings for OTLP trace export.
type TracingConfig struct {
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP/HTTP collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`
	// ServiceName identifies this process in exported spans.
	ServiceName string `yaml:"service_name"`
}

// DataConfig points at the reference data files used during harmonization.
type DataConfig struct {
	// AirportListPath is the airport reference list (JSON).
	AirportListPath string `yaml:"airport_list_path"`
	// HomePath is the traveler home definition (JSON). Overrides Origin when present.
	HomePath string `yaml:"home_path"`
}

// VacationSpotsConfig holds all configuration under the "vacationspots" top-level key.
type VacationSpotsConfig struct {
	System         SystemConfig              `yaml:"system"`
	Batch          BatchConfig               `yaml:"batch"`
	Scheduler      SchedulerConfig           `yaml:"scheduler"`
	Origin         OriginConfig              `yaml:"origin"`
	Recommendation RecommendationConfig      `yaml:"recommendation"`
	LLM            LLMConfig                 `yaml:"llm"`
	Email          EmailConfig               `yaml:"email"`
	Storage        StorageConfig             `yaml:"storage"`
	Export         ExportConfig              `yaml:"export"`
	Retention      RetentionConfig           `yaml:"retention"`
	Metrics        MetricsConfig             `yaml:"metrics"`
	Tracing        TracingConfig             `yaml:"tracing"`
	Data           DataConfig                `yaml:"data"`
	Databases      map[string]DatabaseConfig `yaml:"database"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	VacationSpots VacationSpotsConfig `yaml:"vacationspots"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	return &Config{
		VacationSpots: VacationSpotsConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Batch: BatchConfig{
				ChunkSize: 50,
				Retry: RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 1000,
				},
			},
			Scheduler: SchedulerConfig{
				IntervalMinutes: 1440,
				RunOnStart:      true,
			},
			Recommendation: RecommendationConfig{
				MinPunctualPct:     50,
				MinAvgTemperatureF: 70,
				Limit:              10,
			},
			LLM: LLMConfig{
				Model:          "gpt-4o-mini",
				TimeoutSeconds: 60,
				Retry: RetryConfig{
					MaxAttempts:     3,
					InitialInterval: 1000,
				},
			},
			Storage: StorageConfig{
				Provider: "local",
				BasePath: "./output",
			},
			Metrics: MetricsConfig{
				Addr: ":9090",
			},
			Tracing: TracingConfig{
				ServiceName: "vacationspots",
			},
			Data: DataConfig{
				AirportListPath: "data/airport_list.json",
				HomePath:        "data/home.json",
			},
			Databases: map[string]DatabaseConfig{},
		},
	}
}
