package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the importer configuration
type Config struct {
	Settings Settings      `yaml:"settings"`
	Input    InputConfig   `yaml:"input"`
	Storage  StorageConfig `yaml:"storage"`
}

// Settings represents global application settings
type Settings struct {
	LogLevel string `yaml:"logLevel"`
}

// Level parses the configured log level, defaulting to info.
func (s Settings) Level() (slog.Level, error) {
	if s.LogLevel == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid log level '%s': %w", s.LogLevel, err)
	}
	return level, nil
}

// InputConfig describes the capture file to import
type InputConfig struct {
	File  string `yaml:"file"`
	Scale bool   `yaml:"scale"`
}

// StorageConfig represents storage settings
type StorageConfig struct {
	Database string `yaml:"database"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err = yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if config.Input.File == "" {
		return nil, errors.New("input file is required")
	}
	if config.Storage.Database == "" {
		return nil, errors.New("storage database path is required")
	}
	return &config, nil
}
