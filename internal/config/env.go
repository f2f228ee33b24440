package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

// ApplyEnv overlays DURIANCARE_* environment variables on cfg. Variables
// from dotenvPath are loaded first when that file exists; variables
// already set in the environment win over the file.
func ApplyEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", dotenvPath, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return &InvalidConfigError{
			Path:    "environment",
			Message: err.Error(),
			Hint:    "Check DURIANCARE_* variables",
			Err:     err,
		}
	}
	return nil
}
