package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/saviobatista/snoopr/internal/movement"
)

// Config holds the application configuration
type Config struct {
	DBPath            string
	OutputMap         string
	MovementThreshold float64
}

// Load loads the configuration from environment variables and .env
// file. DBPath may stay empty, in which case the most recent capture in
// the working directory is used.
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:            os.Getenv("SNOOPR_DB_PATH"),
		OutputMap:         "SnoopR_Map.html",
		MovementThreshold: movement.DefaultThreshold,
	}

	if v := os.Getenv("SNOOPR_OUTPUT_MAP"); v != "" {
		cfg.OutputMap = v
	}

	if v := os.Getenv("SNOOPR_MOVEMENT_THRESHOLD"); v != "" {
		threshold, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid SNOOPR_MOVEMENT_THRESHOLD %q: %w", v, err)
		}
		cfg.MovementThreshold = threshold
	}

	return cfg, nil
}
