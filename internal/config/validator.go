package config

import (
	"fmt"
	"net/url"

	"go.uber.org/multierr"
)

// ValidateConfig validates the configuration
func ValidateConfig(cfg *Config) error {
	if err := validateServerConfig(&cfg.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	if err := validateLoggingConfig(&cfg.Logging); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}

	if err := validateCaptureConfig(&cfg.Capture); err != nil {
		return fmt.Errorf("invalid capture config: %w", err)
	}

	var errs error
	names := make(map[string]bool)
	for i := range cfg.Assertions {
		a := &cfg.Assertions[i]
		if err := a.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid assertion at index %d (%s): %w", i, a.Name, err))
		}
		if a.Name != "" {
			if names[a.Name] {
				errs = multierr.Append(errs, fmt.Errorf("duplicate assertion name: %s", a.Name))
			}
			names[a.Name] = true
		}
	}

	return errs
}

func validateServerConfig(cfg *ServerConfig) error {
	if cfg.Addr == "" {
		return fmt.Errorf("addr is required")
	}
	if cfg.ReadTimeout < 0 {
		return fmt.Errorf("read_timeout must be positive")
	}
	if cfg.WriteTimeout < 0 {
		return fmt.Errorf("write_timeout must be positive")
	}
	if cfg.IdleTimeout < 0 {
		return fmt.Errorf("idle_timeout must be positive")
	}
	return nil
}

func validateLoggingConfig(cfg *LoggingConfig) error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[cfg.Level] {
		return fmt.Errorf("invalid level: %s (must be debug, info, warn, or error)", cfg.Level)
	}

	validFormats := map[string]bool{
		"json": true,
		"text": true,
	}
	if !validFormats[cfg.Format] {
		return fmt.Errorf("invalid format: %s (must be json or text)", cfg.Format)
	}

	return nil
}

func validateCaptureConfig(cfg *CaptureConfig) error {
	if cfg.MaxRecords < 0 {
		return fmt.Errorf("max_records must be positive")
	}
	if cfg.UpstreamProxy != "" {
		if err := validateProxyURL(cfg.UpstreamProxy); err != nil {
			return fmt.Errorf("invalid upstream_proxy: %w", err)
		}
	}
	return nil
}

func validateProxyURL(proxyURL string) error {
	u, err := url.Parse(proxyURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("proxy scheme must be http or https, got: %s", u.Scheme)
	}

	if u.Host == "" {
		return fmt.Errorf("proxy host is required")
	}

	return nil
}
