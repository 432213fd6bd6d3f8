package config

import "go.uber.org/fx"

// Module provides configuration-related components to Fx. The *Config
// itself is loaded before the container is built and supplied by the
// application.
var Module = fx.Options(
	fx.Provide(func(cfg *Config) *SchedulerConfig { return &cfg.VacationSpots.Scheduler }),
	fx.Provide(func(cfg *Config) *RecommendationConfig { return &cfg.VacationSpots.Recommendation }),
	fx.Provide(func(cfg *Config) *LLMConfig { return &cfg.VacationSpots.LLM }),
	fx.Provide(func(cfg *Config) *EmailConfig { return &cfg.VacationSpots.Email }),
	fx.Provide(func(cfg *Config) *StorageConfig { return &cfg.VacationSpots.Storage }),
	fx.Provide(func(cfg *Config) *RetentionConfig { return &cfg.VacationSpots.Retention }),
	fx.Provide(func(cfg *Config) *MetricsConfig { return &cfg.VacationSpots.Metrics }),
	fx.Provide(func(cfg *Config) *TracingConfig { return &cfg.VacationSpots.Tracing }),
	fx.Provide(func(cfg *Config) *DataConfig { return &cfg.VacationSpots.Data }),
)
