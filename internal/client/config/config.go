package config

import "time"

// Config holds runtime settings for the GameShelf CLI.
type Config struct {
	ServerAddr     string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with defaults suitable for a local server.
func (c *Config) LoadDefaults() {
	c.ServerAddr = "http://127.0.0.1:5000"
	c.RequestTimeout = 10 * time.Second
}

// LoadConfig applies defaults, then the JSON file, then flags.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
