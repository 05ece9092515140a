// Package config holds the centralized configuration for the pdiff
// application. It supports loading from configuration files, environment
// variables, and command-line flags.
package config

import (
	"fmt"
)

// Config represents the complete configuration for pdiff. It includes
// settings for both the compare command and the serve command.
type Config struct {
	// Global settings
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	// Comparison engine configuration
	Compare CompareConfig `mapstructure:"compare" yaml:"compare" json:"compare"`

	// Highlight rendering configuration
	Render RenderConfig `mapstructure:"render" yaml:"render" json:"render"`

	// Server configuration (for serve command)
	Server ServerConfig `mapstructure:"server" yaml:"server" json:"server"`
}

// CompareConfig contains comparison engine settings.
type CompareConfig struct {
	// Workers bounds per-page diff parallelism (0 means one per CPU).
	Workers int `mapstructure:"workers" yaml:"workers" json:"workers"`
}

// RenderConfig contains highlight rendering settings.
type RenderConfig struct {
	// Scale is the overlay raster resolution in pixels per point.
	Scale float64 `mapstructure:"scale" yaml:"scale" json:"scale"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host             string `mapstructure:"host" yaml:"host" json:"host"`
	Port             int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin       string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB      int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec       int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout  int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	WorkDir          string `mapstructure:"work_dir" yaml:"work_dir" json:"work_dir"`
	JobWorkers       int    `mapstructure:"job_workers" yaml:"job_workers" json:"job_workers"`
	QueueSize        int    `mapstructure:"queue_size" yaml:"queue_size" json:"queue_size"`
	RetentionMinutes int    `mapstructure:"retention_minutes" yaml:"retention_minutes" json:"retention_minutes"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		LogLevel: "info",
		Verbose:  false,
		Compare: CompareConfig{
			Workers: 0,
		},
		Render: RenderConfig{
			Scale: 2.0,
		},
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			MaxUploadMB:      50,
			TimeoutSec:       120,
			ShutdownTimeout:  10,
			JobWorkers:       2,
			QueueSize:        16,
			RetentionMinutes: 60,
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %q", c.LogLevel)
	}

	if c.Compare.Workers < 0 {
		return fmt.Errorf("compare.workers must not be negative, got %d", c.Compare.Workers)
	}
	if c.Render.Scale < 0 {
		return fmt.Errorf("render.scale must not be negative, got %v", c.Render.Scale)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("server.max_upload_mb must be at least 1, got %d", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("server.timeout_sec must be at least 1, got %d", c.Server.TimeoutSec)
	}
	if c.Server.JobWorkers < 1 {
		return fmt.Errorf("server.job_workers must be at least 1, got %d", c.Server.JobWorkers)
	}
	if c.Server.QueueSize < 1 {
		return fmt.Errorf("server.queue_size must be at least 1, got %d", c.Server.QueueSize)
	}
	if c.Server.RetentionMinutes < 1 {
		return fmt.Errorf("server.retention_minutes must be at least 1, got %d", c.Server.RetentionMinutes)
	}

	return nil
}
