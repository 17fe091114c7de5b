package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime parameters of the application.
type Config struct {
	DatabaseURL string
	ServerPort  int

	// DataDir holds dataset.yaml and the labels/ directory. Ignored when an
	// R2 bucket is configured.
	DataDir string

	MaxSubmissionsPerGroup     int
	LeaderboardMaxResults      int
	RequireCompletePredictions bool

	// Optional object-storage source for the hackathon data. All R2 fields
	// except the prefix must be set together.
	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2Prefix          string
}

// UseObjectStorage reports whether the hackathon data should be fetched from
// the configured R2 bucket instead of the local data directory.
func (c *Config) UseObjectStorage() bool {
	return c.R2BucketName != ""
}

// Load reads the configuration from environment variables, optionally
// seeded from a .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	port, err := intFromEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	maxSubmissions, err := intFromEnv("MAX_SUBMISSIONS_PER_GROUP", 4)
	if err != nil {
		return nil, err
	}
	if maxSubmissions <= 0 {
		return nil, fmt.Errorf("MAX_SUBMISSIONS_PER_GROUP must be positive, got %d", maxSubmissions)
	}

	maxResults, err := intFromEnv("LEADERBOARD_MAX_RESULTS", 3)
	if err != nil {
		return nil, err
	}
	if maxResults <= 0 {
		return nil, fmt.Errorf("LEADERBOARD_MAX_RESULTS must be positive, got %d", maxResults)
	}

	cfg := &Config{
		DatabaseURL:                dbURL,
		ServerPort:                 port,
		DataDir:                    os.Getenv("HACKATHON_DATA_DIR"),
		MaxSubmissionsPerGroup:     maxSubmissions,
		LeaderboardMaxResults:      maxResults,
		RequireCompletePredictions: os.Getenv("REQUIRE_COMPLETE_PREDICTIONS") == "true",
		R2AccountID:                os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:              os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:          os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:               os.Getenv("R2_BUCKET_NAME"),
		R2Prefix:                   os.Getenv("R2_PREFIX"),
	}

	if cfg.UseObjectStorage() {
		if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" {
			return nil, fmt.Errorf("R2_BUCKET_NAME is set but R2 account or credentials are missing")
		}
	} else if cfg.DataDir == "" {
		return nil, fmt.Errorf("HACKATHON_DATA_DIR environment variable is not set")
	}

	return cfg, nil
}

func intFromEnv(name string, fallback int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s environment variable: %w", name, err)
	}
	return value, nil
}
