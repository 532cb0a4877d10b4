package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	// Environment
	RunMode string // Set via flag, not env

	// MongoDB
	MongoURI           string
	MongoDbName        string
	ListingsCollection string

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Server
	ApiPort string

	// AWS S3
	AwsAccessKeyID     string
	AwsSecretAccessKey string
	AwsRegion          string
	AwsS3Bucket        string
	ImageBaseS3URL     string
	ImagePlaceholder   string

	// Sync engine
	SnapshotTimeout time.Duration

	// Favourites
	FavouritesTTL time.Duration

	// Retention sweep
	SweepInterval   time.Duration
	RetirementGrace time.Duration
}

// Load configuration from environment variables.
// RunMode needs to be passed in as it comes from command-line flags.
func Load(runMode string) (*Config, error) {
	// Load .env file, ignoring errors if it doesn't exist
	godotenv.Load()

	cfg := &Config{
		RunMode: runMode, // Set from flag
	}

	var err error

	// Helper function to get env var or default
	getEnv := func(key, defaultValue string) string {
		if value, exists := os.LookupEnv(key); exists {
			return value
		}
		return defaultValue
	}

	// Helper function to get required env var
	getRequiredEnv := func(key string) (string, error) {
		value, exists := os.LookupEnv(key)
		if !exists {
			return "", fmt.Errorf("missing required environment variable: %s", key)
		}
		return value, nil
	}

	cfg.MongoURI, err = getRequiredEnv("MONGO_URI")
	if err != nil {
		return nil, err
	}
	cfg.MongoDbName = getEnv("MONGO_DB_NAME", "resq")
	cfg.ListingsCollection = getEnv("LISTINGS_COLLECTION", "listings")
	cfg.RedisAddr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.ApiPort = getEnv("API_PORT", "8080")
	cfg.AwsAccessKeyID = getEnv("AWS_ACCESS_KEY_ID", "")
	cfg.AwsSecretAccessKey = getEnv("AWS_SECRET_ACCESS_KEY", "")
	cfg.AwsRegion = getEnv("AWS_REGION", "")
	cfg.AwsS3Bucket = getEnv("AWS_S3_BUCKET", "")
	cfg.ImageBaseS3URL = getEnv("IMAGE_BASE_S3_URL", "")
	cfg.ImagePlaceholder = getEnv("IMAGE_PLACEHOLDER_URL", "/placeholder.svg")

	cfg.RedisDB, err = strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	snapshotTimeoutSeconds, err := strconv.ParseInt(getEnv("SNAPSHOT_TIMEOUT_SECONDS", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SNAPSHOT_TIMEOUT_SECONDS: %w", err)
	}
	cfg.SnapshotTimeout = time.Duration(snapshotTimeoutSeconds) * time.Second

	favouritesTTLDays, err := strconv.ParseInt(getEnv("FAVOURITES_TTL_DAYS", "7"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FAVOURITES_TTL_DAYS: %w", err)
	}
	cfg.FavouritesTTL = time.Duration(favouritesTTLDays) * 24 * time.Hour

	sweepIntervalMinutes, err := strconv.ParseInt(getEnv("SWEEP_INTERVAL_MINUTES", "30"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid SWEEP_INTERVAL_MINUTES: %w", err)
	}
	cfg.SweepInterval = time.Duration(sweepIntervalMinutes) * time.Minute

	retirementGraceHours, err := strconv.ParseInt(getEnv("RETIREMENT_GRACE_HOURS", "24"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RETIREMENT_GRACE_HOURS: %w", err)
	}
	cfg.RetirementGrace = time.Duration(retirementGraceHours) * time.Hour

	return cfg, nil
}
