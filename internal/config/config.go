// Package config defines process configuration for the wildfire search
// binaries. Settings layer defaults, an optional YAML file, and WILDFIRE_
// environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Runner modes supported by the search engine.
const (
	RunnerLocal = "local"
	RunnerNATS  = "nats"
)

// ConfigPathEnvVar optionally points at a YAML config file.
const ConfigPathEnvVar = "WILDFIRE_CONFIG"

// Config holds all process settings.
type Config struct {
	LogLevel  string `koanf:"log_level"`
	LogFormat string `koanf:"log_format"`

	HTTPAddr        string        `koanf:"http_addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// LocalDir is the explicit local storage root for downloaded scan
	// files; an existing file there is reused instead of re-downloaded.
	LocalDir string `koanf:"local_dir"`
	// PersistDir is where wildfire result files are written.
	PersistDir string `koanf:"persist_dir"`

	// ArchiveBaseURL overrides the NOAA bucket endpoint; empty means the
	// public archive.
	ArchiveBaseURL string        `koanf:"archive_base_url"`
	FetchTimeout   time.Duration `koanf:"fetch_timeout"`

	// Runner selects the execution mode: local in-process fan-out or
	// delegation to NATS workers.
	Runner      string        `koanf:"runner"`
	Workers     int           `koanf:"workers"`
	TaskTimeout time.Duration `koanf:"task_timeout"`

	NATSURL         string `koanf:"nats_url"`
	NATSSubject     string `koanf:"nats_subject"`
	NATSMaxInFlight int    `koanf:"nats_max_in_flight"`
}

// defaultConfig returns the documented defaults, applied before file and
// env overrides.
func defaultConfig() Config {
	return Config{
		LogLevel:        "info",
		LogFormat:       "json",
		HTTPAddr:        ":8080",
		ShutdownTimeout: 10 * time.Second,
		LocalDir:        "downloaded_data",
		PersistDir:      ".",
		FetchTimeout:    2 * time.Minute,
		Runner:          RunnerLocal,
		Workers:         runtime.NumCPU(),
		TaskTimeout:     5 * time.Minute,
		NATSURL:         "nats://localhost:4222",
		NATSSubject:     "wildfire.detect",
		NATSMaxInFlight: 16,
	}
}

// Load builds a Config by layering defaults, optional YAML file, and env
// vars. Env keys map WILDFIRE_LOCAL_DIR -> local_dir (flat keys,
// underscores preserved).
func Load() (*Config, error) {
	k := koanf.New(".")

	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider("WILDFIRE_", ".", func(s string) string {
		s = strings.ToLower(s)
		return strings.TrimPrefix(s, "wildfire_")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := defaultConfig()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.LocalDir == "" {
		return errors.New("local_dir must not be empty")
	}
	if c.PersistDir == "" {
		return errors.New("persist_dir must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.Runner {
	case RunnerLocal:
	case RunnerNATS:
		if c.NATSURL == "" {
			return errors.New("nats_url is required when runner is nats")
		}
	default:
		return fmt.Errorf("unknown runner %q (want %s or %s)", c.Runner, RunnerLocal, RunnerNATS)
	}
	if c.FetchTimeout <= 0 {
		return errors.New("fetch_timeout must be positive")
	}
	return nil
}
