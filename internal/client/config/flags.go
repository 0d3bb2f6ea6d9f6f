package config

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/gameshelf/internal/flagx"
)

// parseFlags reads -a (server URL) and -t (timeout in seconds). Other flags on
// the command line are filtered out before parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "GameShelf server URL")
	timeout := fs.Int("t", int(cfg.RequestTimeout.Seconds()), "request timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *timeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %d", *timeout)
	}

	cfg.RequestTimeout = time.Duration(*timeout) * time.Second
	return nil
}
