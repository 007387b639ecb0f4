package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads each existing .env file into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// FromEnv parses TOME_* variables into a zero-valued overlay.
// Pass nil to read the process environment.
func FromEnv(environ map[string]string) (*Config, error) {
	cfg := &Config{}
	opts := env.Options{}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

// LoadAll applies defaults, then baseDir/config.json, then the environment,
// and validates the result.
func LoadAll(baseDir string, environ map[string]string) (*Config, error) {
	cfg, err := Load(baseDir)
	if err != nil {
		return nil, err
	}
	overlay, err := FromEnv(environ)
	if err != nil {
		return nil, err
	}
	cfg = Merge(cfg, overlay)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
