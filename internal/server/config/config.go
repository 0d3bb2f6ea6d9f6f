// Package config handles configuration for the server component: defaults,
// a JSON file overlay, .env and environment variables, then command-line flags.
package config

import "time"

// Config holds runtime settings for the GameShelf server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the HTTP API.
//   - DatabaseDSN: postgres:// URL (pgx) or sqlite://path (modernc).
//   - SecretKey: HMAC secret for signing JWTs (HS256). Override the default in prod.
//   - TokenValidityDuration: lifetime of an issued access token.
//   - CookieSecure: sets the Secure attribute on the token cookie.
//   - SessionCleanupSchedule: cron schedule for purging expired sessions.
//   - S3*: S3-compatible storage for game covers; empty S3Bucket disables covers.
type Config struct {
	EndpointAddrHTTP       string
	DatabaseDSN            string
	SecretKey              string
	TokenValidityDuration  time.Duration
	CookieSecure           bool
	SessionCleanupSchedule string
	S3RootUser             string
	S3RootPassword         string
	S3Bucket               string
	S3Region               string
	S3BaseEndpoint         string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":5000"
	c.DatabaseDSN = "sqlite://games.db"
	c.SecretKey = "dev-jwt-secret"
	c.TokenValidityDuration = 3 * time.Hour
	c.CookieSecure = true
	c.SessionCleanupSchedule = "@every 10m"
	c.S3Region = "us-east-1"
}

// CoversEnabled reports whether object storage is configured.
func (c *Config) CoversEnabled() bool {
	return c.S3Bucket != ""
}

// LoadConfig builds a Config from defaults, then the optional JSON file, then
// the environment, and finally command-line flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
