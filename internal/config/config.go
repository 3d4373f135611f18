// Package config loads service configuration from defaults, an optional YAML
// file, and LEAFSCAN_-prefixed environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the service.
type Config struct {
	// Server configuration
	Port        int `mapstructure:"port"`
	MetricsPort int `mapstructure:"metrics_port"`

	// Model artifacts
	Model         string `mapstructure:"model"`
	ModelFallback string `mapstructure:"model_fallback"`
	Metadata      string `mapstructure:"metadata"`

	// Request limits
	MaxUploadBytes int64  `mapstructure:"max_upload_bytes"`
	ImageField     string `mapstructure:"image_field"`

	// Logging
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	LogMaxSizeMB  int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups int    `mapstructure:"log_max_backups"`

	// OpenTelemetry configuration
	OTELEnabled bool `mapstructure:"otel_enabled"`

	// Feature flags
	UseMock bool `mapstructure:"use_mock"`
}

// Load reads configuration with priority (highest to lowest):
// env vars > config file > defaults. configFile may be empty, in which case
// the usual search paths are tried and a missing file is not an error.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("port", 8080)
	v.SetDefault("metrics_port", 9100)
	v.SetDefault("model", "models/leaf_disease.onnx")
	v.SetDefault("model_fallback", "models/leaf_disease_weights.onnx")
	v.SetDefault("metadata", "models/leaf_disease_metadata.json")
	v.SetDefault("max_upload_bytes", 10<<20)
	v.SetDefault("image_field", "image")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
	v.SetDefault("log_max_size_mb", 100)
	v.SetDefault("log_max_backups", 3)
	v.SetDefault("otel_enabled", false)
	v.SetDefault("use_mock", false)

	v.SetEnvPrefix("LEAFSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/leafscan/")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
			// Config file not found; defaults and env vars apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.MetricsPort <= 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", c.MetricsPort)
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("port and metrics_port must be different")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes)
	}
	if c.ImageField == "" {
		return fmt.Errorf("image_field cannot be empty")
	}
	if !c.UseMock {
		if c.Metadata == "" {
			return fmt.Errorf("metadata path is required when not using the mock engine")
		}
		if c.Model == "" && c.ModelFallback == "" {
			return fmt.Errorf("a model artifact path is required when not using the mock engine")
		}
	}
	return nil
}
