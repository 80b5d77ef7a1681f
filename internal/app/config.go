package app

import "errors"

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	ConfigPath   string // device .hcl file or directory
	SettingsPath string // overrides the settings path from the device config
	HTTPAddr     string // overrides the listen address from the device config

	LogFormat string
	LogLevel  string
}

// NewConfig validates the configuration and returns it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.ConfigPath == "" {
		return nil, errors.New("ConfigPath is a required configuration field and cannot be empty")
	}

	return &cfg, nil
}
