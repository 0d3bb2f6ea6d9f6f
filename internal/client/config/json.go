package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/gameshelf/internal/flagx"
	"github.com/dmitrijs2005/gameshelf/internal/timex"
)

// JsonConfig is used only for unmarshalling the config file.
type JsonConfig struct {
	ServerAddr     string         `json:"server_addr"`
	RequestTimeout timex.Duration `json:"request_timeout"`
}

// parseJson overlays cfg with the fields present in the -c/-config file.
func parseJson(cfg *Config) error {
	path := flagx.ConfigFileFlag()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if jc.ServerAddr != "" {
		cfg.ServerAddr = jc.ServerAddr
	}
	if jc.RequestTimeout.Duration != 0 {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	return nil
}
