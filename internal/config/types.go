package config

import (
	"time"

	"github.com/simman/go-hasrequest/internal/assertion"
)

// Config represents the entire application configuration
type Config struct {
	Server     ServerConfig          `yaml:"server"`
	Logging    LoggingConfig         `yaml:"logging"`
	Capture    CaptureConfig         `yaml:"capture"`
	Assertions []assertion.Assertion `yaml:"assertions"`
}

// ServerConfig contains capture proxy listener settings
type ServerConfig struct {
	Addr         string        `yaml:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// CaptureConfig controls how proxied requests are recorded and forwarded
type CaptureConfig struct {
	MaxRecords    int    `yaml:"max_records"`
	UpstreamProxy string `yaml:"upstream_proxy,omitempty"`
}
