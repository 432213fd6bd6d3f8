package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tigerroll/vacationspots/internal/config"
)

const embeddedYAML = `
vacationspots:
  system:
    logging:
      level: "DEBUG"
  batch:
    chunk_size: 25
  scheduler:
    interval_minutes: 60
    run_on_start: false
  origin:
    airport: "SEA"
  recommendation:
    min_punctual_pct: 60
  email:
    enabled: true
    host: "smtp.example.com"
    from: "noreply@example.com"
    to:
      - "traveler@example.com"
  database:
    app:
      type: "sqlite"
      database: "vacationspots.db"
`

func TestLoadConfigMergesYAMLOverDefaults(t *testing.T) {
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)

	// YAML values override defaults.
	assert.Equal(t, "DEBUG", cfg.VacationSpots.System.Logging.Level)
	assert.Equal(t, 25, cfg.VacationSpots.Batch.ChunkSize)
	assert.Equal(t, 60, cfg.VacationSpots.Scheduler.IntervalMinutes)
	assert.Equal(t, "SEA", cfg.VacationSpots.Origin.Airport)
	assert.Equal(t, 60.0, cfg.VacationSpots.Recommendation.MinPunctualPct)

	// Defaults survive where the YAML is silent.
	assert.Equal(t, "UTC", cfg.VacationSpots.System.Timezone)
	assert.Equal(t, 3, cfg.VacationSpots.Batch.Retry.MaxAttempts)
	assert.Equal(t, "gpt-4o-mini", cfg.VacationSpots.LLM.Model)
	assert.Equal(t, 10, cfg.VacationSpots.Recommendation.Limit)

	require.Contains(t, cfg.VacationSpots.Databases, "app")
	assert.Equal(t, "sqlite", cfg.VacationSpots.Databases["app"].Type)
}

func TestYAMLFalseDoesNotOverrideDefaultTrueBoolean(t *testing.T) {
	// The YAML merge skips zero values, so run_on_start: false in the file
	// is ignored; only the environment can disable a default-true boolean.
	cfg, err := config.LoadConfig("", config.EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)
	assert.True(t, cfg.VacationSpots.Scheduler.RunOnStart)

	t.Setenv("VACATIONSPOTS_SCHEDULER_RUN_ON_START", "false")
	cfg, err = config.LoadConfig("", config.EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)
	assert.False(t, cfg.VacationSpots.Scheduler.RunOnStart)
}

func TestLoadConfigEnvOverridesYAML(t *testing.T) {
	t.Setenv("VACATIONSPOTS_SYSTEM_LOGGING_LEVEL", "WARN")
	t.Setenv("VACATIONSPOTS_LLM_API_KEY", "sk-test")
	t.Setenv("VACATIONSPOTS_RECOMMENDATION_LIMIT", "3")
	t.Setenv("VACATIONSPOTS_SCHEDULER_RUN_ON_START", "true")
	t.Setenv("VACATIONSPOTS_EMAIL_TO", "a@example.com, b@example.com")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)

	assert.Equal(t, "WARN", cfg.VacationSpots.System.Logging.Level)
	assert.Equal(t, "sk-test", cfg.VacationSpots.LLM.APIKey)
	assert.Equal(t, 3, cfg.VacationSpots.Recommendation.Limit)
	assert.True(t, cfg.VacationSpots.Scheduler.RunOnStart)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.VacationSpots.Email.To)
}

func TestLoadConfigEnvOverridesDatabaseMap(t *testing.T) {
	t.Setenv("VACATIONSPOTS_DATABASE_APP_PASSWORD", "secret")
	t.Setenv("VACATIONSPOTS_DATABASE_SOURCE_HOST", "replica.internal")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(embeddedYAML))
	require.NoError(t, err)

	// Existing entries keep their YAML settings and gain the env value.
	app := cfg.VacationSpots.Databases["app"]
	assert.Equal(t, "sqlite", app.Type)
	assert.Equal(t, "secret", app.Password)

	// Entries can be introduced entirely from the environment.
	source, ok := cfg.VacationSpots.Databases["source"]
	require.True(t, ok)
	assert.Equal(t, "replica.internal", source.Host)
}

func TestLoadConfigRejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("vacationspots: ["))
	assert.Error(t, err)
}
