package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/gameshelf/internal/flagx"
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string     HTTP bind address (e.g., ":5000")
//	-d string     database DSN
//	-s string     JWT HMAC secret key
//	-t duration   token validity (e.g., "3h")
//	-k bool       secure cookie, pass as -k=false to disable
//	-j string     session cleanup cron schedule
//	-u string     S3 root user
//	-p string     S3 root password
//	-b string     S3 bucket name
//	-g string     S3 region
//	-e string     S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//
// os.Args is first filtered with flagx.FilterArgs so that flags owned by other
// components do not cause parse errors.
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-t", "-k", "-j", "-u", "-p", "-b", "-g", "-e"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.TokenValidityDuration, "t", config.TokenValidityDuration, "token validity duration")
	fs.BoolVar(&config.CookieSecure, "k", config.CookieSecure, "set Secure on the token cookie")
	fs.StringVar(&config.SessionCleanupSchedule, "j", config.SessionCleanupSchedule, "expired session cleanup schedule")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	return fs.Parse(args)
}
