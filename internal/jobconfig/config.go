// Package jobconfig loads the engine's configuration from environment
// variables, following the teacher's config.GetEnvAsString/GetEnvAsInt64
// idiom (oss.nandlabs.io/jobctl/config) rather than a bespoke flag parser
// or a file-backed properties layer — spec.md's configuration table is
// env-var only. The one exception is logging: JOBCTL_LOG_CONFIG_FILE
// optionally names a YAML file holding a full l3.LogConfig (writers,
// per-package levels), loaded with gopkg.in/yaml.v3, the same way the
// teacher's l3 package loads its own JSON config file.
package jobconfig

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"oss.nandlabs.io/jobctl/config"
	"oss.nandlabs.io/jobctl/l3"
)

// ErrDatabaseURLRequired is returned by Load when JOBCTL_DATABASE_URL is
// unset; the spec defines no default for it.
var ErrDatabaseURLRequired = errors.New("jobconfig: JOBCTL_DATABASE_URL must be set")

// Config is an immutable value passed to constructors; there is no global
// mutable configuration state (spec.md §9).
type Config struct {
	DatabaseURL    string
	MaxConcurrency int
	TickInterval   time.Duration
	JobTimeout     time.Duration
	PoolSize       int
	LogLevel       string
	HandlerSleep   time.Duration
	// LogConfig is non-nil only when JOBCTL_LOG_CONFIG_FILE pointed at a
	// loadable YAML file; it overrides LogLevel entirely when set.
	LogConfig *l3.LogConfig
}

// Load resolves Config from the environment, applying the defaults from
// spec.md §6 (max concurrency 10, tick interval 500ms, job timeout 5s).
func Load() (Config, error) {
	databaseURL := config.GetEnvAsString("JOBCTL_DATABASE_URL", "")
	if databaseURL == "" {
		return Config{}, ErrDatabaseURLRequired
	}

	maxConcurrency, err := config.GetEnvAsInt("JOBCTL_MAX_CONCURRENCY", 10)
	if err != nil {
		return Config{}, err
	}

	tickIntervalMs, err := config.GetEnvAsInt64("JOBCTL_TICK_INTERVAL_MS", 500)
	if err != nil {
		return Config{}, err
	}

	jobTimeoutMs, err := config.GetEnvAsInt64("JOBCTL_JOB_TIMEOUT_MS", 5000)
	if err != nil {
		return Config{}, err
	}

	poolSize, err := config.GetEnvAsInt("JOBCTL_POOL_SIZE", 5)
	if err != nil {
		return Config{}, err
	}

	handlerSleepMs, err := config.GetEnvAsInt64("JOBCTL_HANDLER_SLEEP_MS", 1000)
	if err != nil {
		return Config{}, err
	}

	logLevel := config.GetEnvAsString("JOBCTL_LOG_LEVEL", "INFO")

	var logCfg *l3.LogConfig
	if logConfigFile := config.GetEnvAsString("JOBCTL_LOG_CONFIG_FILE", ""); logConfigFile != "" {
		var err error
		logCfg, err = loadLogConfig(logConfigFile)
		if err != nil {
			return Config{}, err
		}
	}

	return Config{
		DatabaseURL:    databaseURL,
		MaxConcurrency: maxConcurrency,
		TickInterval:   time.Duration(tickIntervalMs) * time.Millisecond,
		JobTimeout:     time.Duration(jobTimeoutMs) * time.Millisecond,
		PoolSize:       poolSize,
		LogLevel:       logLevel,
		HandlerSleep:   time.Duration(handlerSleepMs) * time.Millisecond,
		LogConfig:      logCfg,
	}, nil
}

// loadLogConfig reads a YAML-encoded l3.LogConfig from path. It is kept
// separate from Load so a malformed file reports a path-specific error.
func loadLogConfig(path string) (*l3.LogConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("jobconfig: reading log config file %s: %w", path, err)
	}

	var cfg l3.LogConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("jobconfig: parsing log config file %s: %w", path, err)
	}
	return &cfg, nil
}
