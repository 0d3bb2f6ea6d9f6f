// Package config loads runtime configuration for the GameShelf CLI.
//
// Sources, later ones winning:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Command-line flags.
//
// Supported flags
//
//	-a string   base URL of the GameShelf server
//	-t int      per-request timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_addr": "http://127.0.0.1:5000",
//	  "request_timeout": "10s"
//	}
//
// request_timeout accepts a duration string or integer nanoseconds.
package config
