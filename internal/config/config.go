package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Log       LogConfig       `mapstructure:"log" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Review    ReviewConfig    `mapstructure:"review" validate:"required"`
	User      UserConfig      `mapstructure:"user"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	Driver       string `mapstructure:"driver" validate:"required,oneof=postgres sqlite"`
	URL          string `mapstructure:"url" validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=0"`
}

// LogConfig controls the process-wide slog handler.
type LogConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// SchedulerConfig tunes the spaced-repetition model.
type SchedulerConfig struct {
	DesiredRetention float64         `mapstructure:"desired_retention" validate:"gte=0.7,lte=0.99"`
	MaximumInterval  int             `mapstructure:"maximum_interval" validate:"gte=1,lte=36500"`
	LearningSteps    []time.Duration `mapstructure:"learning_steps" validate:"min=1,dive,gt=0s"`
	RelearningSteps  []time.Duration `mapstructure:"relearning_steps" validate:"min=1,dive,gt=0s"`
}

// ReviewConfig bounds the optimistic-concurrency retry loop around review
// submission and the parallelism of bulk rescheduling.
type ReviewConfig struct {
	MaxAttempts       int           `mapstructure:"max_attempts" validate:"gte=1,lte=10"`
	InitialBackoff    time.Duration `mapstructure:"initial_backoff" validate:"gt=0s"`
	MaxBackoff        time.Duration `mapstructure:"max_backoff" validate:"gtefield=InitialBackoff"`
	RescheduleWorkers int           `mapstructure:"reschedule_workers" validate:"gte=1,lte=64"`
}

// UserConfig identifies the user the CLI acts for.
type UserConfig struct {
	ID string `mapstructure:"id" validate:"omitempty,uuid"`
}
