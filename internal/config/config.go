// Package config loads application configuration from environment
// variables layered over an optional YAML file. Environment wins.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces the environment variables (MSYS_SERVER_PORT, ...)
const envPrefix = "MSYS"

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Ingest  IngestConfig  `yaml:"ingest" envconfig:"INGEST"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" default:"8080" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains request rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100" validate:"min=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50" validate:"min=0"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console" validate:"oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// IngestConfig tunes the ingestion and analysis pipeline
type IngestConfig struct {
	// Parallelism for the aggregation pass; 0 means one engine per CPU.
	Workers int `yaml:"workers" envconfig:"WORKERS" default:"0" validate:"min=0"`
	// RFMReference pins recency ("DD/MM/YYYY"); empty means "now".
	RFMReference string `yaml:"rfm_reference" envconfig:"RFM_REFERENCE"`
	// ExcludedStorePrefixes hides depot codes from store rankings.
	ExcludedStorePrefixes []string `yaml:"excluded_store_prefixes" envconfig:"EXCLUDED_STORE_PREFIXES" default:"M41,M42"`
	// Trend estimation knobs.
	MovingAverageWindow int     `yaml:"moving_average_window" envconfig:"MOVING_AVERAGE_WINDOW" default:"3" validate:"min=1"`
	ForecastPeriods     int     `yaml:"forecast_periods" envconfig:"FORECAST_PERIODS" default:"3" validate:"min=0"`
	AnomalyThreshold    float64 `yaml:"anomaly_threshold" envconfig:"ANOMALY_THRESHOLD" default:"0.20" validate:"gt=0"`
}

// ExportConfig contains CSV export configuration
type ExportConfig struct {
	Dir string `yaml:"dir" envconfig:"DIR" default:"exports"`
}

// Load reads configuration from the environment layered over the
// optional config file, then validates the result.
func Load() (*Config, error) {
	return LoadFromFile(getConfigFilePath())
}

// LoadFromFile loads configuration with an explicit file path. A
// missing file is not an error; the environment and defaults apply.
// Precedence is defaults < file < environment.
func LoadFromFile(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			// The file overlays the baseline, then explicitly set
			// environment variables win back their fields. Re-running
			// envconfig here would also re-apply every default tag and
			// wipe the file layer.
			fileCfg := cfg
			if err := yaml.Unmarshal(data, &fileCfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			mergeEnvOverFile(&fileCfg, cfg)
			cfg = fileCfg
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// mergeEnvOverFile copies env into dst for every field whose MSYS_*
// variable is set, so the environment takes precedence over the file.
func mergeEnvOverFile(dst *Config, env Config) {
	if envIsSet("SERVER_PORT") {
		dst.Server.Port = env.Server.Port
	}
	if envIsSet("SERVER_READ_TIMEOUT") {
		dst.Server.ReadTimeout = env.Server.ReadTimeout
	}
	if envIsSet("SERVER_WRITE_TIMEOUT") {
		dst.Server.WriteTimeout = env.Server.WriteTimeout
	}
	if envIsSet("SERVER_IDLE_TIMEOUT") {
		dst.Server.IdleTimeout = env.Server.IdleTimeout
	}
	if envIsSet("SERVER_SHUTDOWN_TIMEOUT") {
		dst.Server.ShutdownTimeout = env.Server.ShutdownTimeout
	}
	if envIsSet("SERVER_RATE_LIMIT_ENABLED") {
		dst.Server.RateLimit.Enabled = env.Server.RateLimit.Enabled
	}
	if envIsSet("SERVER_RATE_LIMIT_RPS") {
		dst.Server.RateLimit.RPS = env.Server.RateLimit.RPS
	}
	if envIsSet("SERVER_RATE_LIMIT_BURST") {
		dst.Server.RateLimit.Burst = env.Server.RateLimit.Burst
	}
	if envIsSet("LOGGING_LEVEL") {
		dst.Logging.Level = env.Logging.Level
	}
	if envIsSet("LOGGING_OUTPUT") {
		dst.Logging.Output = env.Logging.Output
	}
	if envIsSet("LOGGING_FILE_PATH") {
		dst.Logging.FilePath = env.Logging.FilePath
	}
	if envIsSet("INGEST_WORKERS") {
		dst.Ingest.Workers = env.Ingest.Workers
	}
	if envIsSet("INGEST_RFM_REFERENCE") {
		dst.Ingest.RFMReference = env.Ingest.RFMReference
	}
	if envIsSet("INGEST_EXCLUDED_STORE_PREFIXES") {
		dst.Ingest.ExcludedStorePrefixes = env.Ingest.ExcludedStorePrefixes
	}
	if envIsSet("INGEST_MOVING_AVERAGE_WINDOW") {
		dst.Ingest.MovingAverageWindow = env.Ingest.MovingAverageWindow
	}
	if envIsSet("INGEST_FORECAST_PERIODS") {
		dst.Ingest.ForecastPeriods = env.Ingest.ForecastPeriods
	}
	if envIsSet("INGEST_ANOMALY_THRESHOLD") {
		dst.Ingest.AnomalyThreshold = env.Ingest.AnomalyThreshold
	}
	if envIsSet("EXPORT_DIR") {
		dst.Export.Dir = env.Export.Dir
	}
}

func envIsSet(name string) bool {
	_, ok := os.LookupEnv(envPrefix + "_" + name)
	return ok
}

// Validate checks the configuration invariants
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getConfigFilePath() string {
	if p := os.Getenv(envPrefix + "_CONFIG_FILE"); p != "" {
		return p
	}
	return "config.yaml"
}
