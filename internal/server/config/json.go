package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gameshelf/internal/flagx"
	"github.com/dmitrijs2005/gameshelf/internal/timex"
)

// JsonConfig mirrors Config for JSON files. Durations accept "3h" strings or
// integer nanoseconds. Pointer fields distinguish "absent" from "false".
type JsonConfig struct {
	EndpointAddrHTTP       string         `json:"endpoint_addr_http"`
	DatabaseDSN            string         `json:"database_dsn"`
	SecretKey              string         `json:"secret_key"`
	TokenValidityDuration  timex.Duration `json:"token_validity_duration"`
	CookieSecure           *bool          `json:"cookie_secure"`
	SessionCleanupSchedule string         `json:"session_cleanup_schedule"`
	S3RootUser             string         `json:"s3_root_user"`
	S3RootPassword         string         `json:"s3_root_password"`
	S3Bucket               string         `json:"s3_bucket"`
	S3Region               string         `json:"s3_region"`
	S3BaseEndpoint         string         `json:"s3_base_endpoint"`
}

// parseJson overlays values from the file named by -c/-config. Only fields
// present in the file replace what is already in config.
func parseJson(config *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.TokenValidityDuration.Duration != 0 {
		config.TokenValidityDuration = c.TokenValidityDuration.Duration
	}
	if c.CookieSecure != nil {
		config.CookieSecure = *c.CookieSecure
	}
	setString(&config.SessionCleanupSchedule, c.SessionCleanupSchedule)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
