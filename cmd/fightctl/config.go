package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const defaultConfigName = ".fightctl.yaml"

type cliConfig struct {
	Server       string        `yaml:"server"`
	SessionFile  string        `yaml:"session_file"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

func defaultConfig(home string) cliConfig {
	return cliConfig{
		Server:       "http://localhost:8080",
		SessionFile:  filepath.Join(home, ".fightctl", "session.yaml"),
		PollInterval: 15 * time.Second,
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path, home string) (cliConfig, error) {
	cfg := defaultConfig(home)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c cliConfig) validate() error {
	if c.Server == "" {
		return fmt.Errorf("server is required")
	}
	return checkPollInterval("poll_interval", c.PollInterval)
}

const (
	minPollInterval = 10 * time.Second
	maxPollInterval = 60 * time.Second
)

func checkPollInterval(name string, d time.Duration) error {
	if d < minPollInterval || d > maxPollInterval {
		return fmt.Errorf("%s must be between %s and %s, got %s", name, minPollInterval, maxPollInterval, d)
	}
	return nil
}
