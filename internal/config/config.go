package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/getsentry/framestats/internal/aggregate"
	"github.com/getsentry/framestats/internal/column"
	"github.com/getsentry/framestats/internal/export"
	"github.com/getsentry/framestats/internal/sample"
)

type (
	Config struct {
		Environment string `yaml:"environment" env:"SENTRY_ENVIRONMENT" env-default:"development"`
		SentryDSN   string `yaml:"sentry_dsn" env:"SENTRY_DSN"`
		LogLevel    string `yaml:"log_level" env:"FRAMESTATS_LOG_LEVEL"`

		Pools sample.PoolSizes `yaml:"pools"`

		Reducer string `yaml:"reducer" env:"FRAMESTATS_REDUCER" env-default:"sum"`
		SortBy  string `yaml:"sort_by" env:"FRAMESTATS_SORT_BY" env-default:"SelfTime"`

		Format     string `yaml:"format" env:"FRAMESTATS_FORMAT" env-default:"json"`
		OutputPath string `yaml:"output_path" env:"FRAMESTATS_OUTPUT" env-default:"profiler_data.json"`
		// SessionBucket is the URL of the bucket sessions are read from and
		// exports may be written to, file:///path or mem://. Empty means the
		// working directory.
		SessionBucket string `yaml:"session_bucket" env:"FRAMESTATS_SESSION_BUCKET"`
		Compress      bool   `yaml:"compress" env:"FRAMESTATS_COMPRESS"`
	}

	environmentConfig struct {
		LogLevel string
	}
)

var environments = map[string]environmentConfig{
	"development": {
		LogLevel: "debug",
	},
	"production": {
		LogLevel: "info",
	},
}

// Load reads the configuration from the YAML file at path, if any, and from
// the environment, which takes precedence.
func Load(path string) (Config, error) {
	var cfg Config
	var err error
	if path != "" {
		err = cleanenv.ReadConfig(path, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		return Config{}, err
	}
	env, exists := environments[cfg.Environment]
	if !exists {
		return Config{}, fmt.Errorf("config for environment %v does not exist", cfg.Environment)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = env.LogLevel
	}
	return cfg, nil
}

// AggregateOptions returns aggregation options using every column with the
// configured reducer and sort column.
func (c Config) AggregateOptions() (aggregate.Options, error) {
	opts := aggregate.DefaultOptions()
	var err error
	opts.Reducer, err = aggregate.ParseReducer(c.Reducer)
	if err != nil {
		return aggregate.Options{}, err
	}
	opts.SortBy, err = column.Parse(c.SortBy)
	if err != nil {
		return aggregate.Options{}, err
	}
	return opts, nil
}

// ExportFormat returns the configured export format.
func (c Config) ExportFormat() (sample.Format, error) {
	return export.ParseFormat(c.Format)
}

// Usage describes the environment variables Load reads.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
