package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads.
const EnvPrefix = "SCRY"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"database-driver": "database.driver",
	"database-url":    "database.url",
	"log-level":       "log.level",
	"log-format":      "log.format",
	"user":            "user.id",
}

// LoadOptions customizes where Load looks for configuration.
type LoadOptions struct {
	// ConfigFile is an explicit config file; it must exist when set.
	// When empty, an optional config.yaml in the working directory is read.
	ConfigFile string

	// EnvFile is a dotenv file loaded into the environment when present.
	// Variables already set in the environment win. Defaults to ".env".
	EnvFile string

	// Flags, when set, override every other source for flags that were
	// passed explicitly. See RegisterFlags.
	Flags *pflag.FlagSet
}

// RegisterFlags defines the command-line flags Load knows how to bind.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "path to a config file")
	fs.String("database-driver", "", "database driver: postgres or sqlite")
	fs.String("database-url", "", "database connection URL")
	fs.String("log-level", "", "log level: debug, info, warn or error")
	fs.String("log-format", "", "log format: json or text")
	fs.String("user", "", "id of the user to act as")
}

// Load configuration from environment variables and optionally config files.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

// LoadWithOptions resolves configuration from, lowest precedence first:
// defaults, config file, dotenv file, SCRY_* environment variables and
// explicitly set flags. The result is validated before it is returned.
func LoadWithOptions(opts LoadOptions) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if flag := opts.Flags.Lookup(name); flag != nil {
				if err := v.BindPFlag(key, flag); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.url", "")
	v.SetDefault("database.max_open_conns", 0)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("scheduler.desired_retention", 0.9)
	v.SetDefault("scheduler.maximum_interval", 36500)
	v.SetDefault("scheduler.learning_steps", []time.Duration{time.Minute, 10 * time.Minute})
	v.SetDefault("scheduler.relearning_steps", []time.Duration{10 * time.Minute})

	v.SetDefault("review.max_attempts", 5)
	v.SetDefault("review.initial_backoff", 10*time.Millisecond)
	v.SetDefault("review.max_backoff", 500*time.Millisecond)
	v.SetDefault("review.reschedule_workers", 4)

	v.SetDefault("user.id", "")
}
