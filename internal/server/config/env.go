package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// envFile is loaded before reading the environment; a missing file is fine.
// Variables already set in the process environment win over the file.
var envFile = ".env"

func parseEnv(config *Config) error {
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	lookupString(&config.EndpointAddrHTTP, "HTTP_ADDR")
	lookupString(&config.DatabaseDSN, "DATABASE_URL")
	lookupString(&config.SecretKey, "JWT_SECRET_KEY")
	lookupString(&config.SessionCleanupSchedule, "SESSION_CLEANUP_SCHEDULE")
	lookupString(&config.S3RootUser, "S3_ROOT_USER")
	lookupString(&config.S3RootPassword, "S3_ROOT_PASSWORD")
	lookupString(&config.S3Bucket, "S3_BUCKET")
	lookupString(&config.S3Region, "S3_REGION")
	lookupString(&config.S3BaseEndpoint, "S3_BASE_ENDPOINT")

	if v, ok := os.LookupEnv("TOKEN_TTL"); ok && v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("TOKEN_TTL: %w", err)
		}
		config.TokenValidityDuration = d
	}

	if v, ok := os.LookupEnv("COOKIE_SECURE"); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("COOKIE_SECURE: %w", err)
		}
		config.CookieSecure = b
	}

	return nil
}

func lookupString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
