package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-d", "postgres://db", "-s", "secret",
				"-t", "90m", "-k=false", "-j", "@hourly",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
			},
			expected: &Config{
				EndpointAddrHTTP:       "127.0.0.1:9090",
				DatabaseDSN:            "postgres://db",
				SecretKey:              "secret",
				TokenValidityDuration:  90 * time.Minute,
				CookieSecure:           false,
				SessionCleanupSchedule: "@hourly",
				S3RootUser:             "user",
				S3RootPassword:         "password",
				S3Bucket:               "bucket",
				S3Region:               "us-west-1",
				S3BaseEndpoint:         "http://endpoint",
			},
		},
		{
			name: "foreign flags are ignored",
			args: []string{"cmd", "-x", "1", "-d", "sqlite://x.db", "--verbose"},
			expected: func() *Config {
				c := &Config{}
				c.LoadDefaults()
				c.DatabaseDSN = "sqlite://x.db"
				return c
			}(),
		},
		{
			name:      "invalid duration",
			args:      []string{"cmd", "-t", "1"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := os.Args
			t.Cleanup(func() { os.Args = orig })
			os.Args = tt.args

			config := &Config{}
			config.LoadDefaults()

			err := parseFlags(config)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, config)
		})
	}
}
