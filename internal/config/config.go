// Package config provides functionality for managing configuration options
// for the server using command-line flags, a JSON config file, a .env file
// and environment variables.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string `json:"address"`

	// DatabaseDSN holds the database connection string for the application.
	DatabaseDSN string `json:"database_dsn"`

	// Config is the path to the Config file.
	Config string `json:"-"`

	// JWTSecret signs access tokens.
	JWTSecret string `json:"jwt_secret"`

	// APIKey is the public key clients must send in the apikey header.
	// Empty disables the check.
	APIKey string `json:"api_key"`

	// TokenTTL is how long issued access tokens stay valid.
	TokenTTL Duration `json:"token_ttl"`

	// LogLevel is the zap level name.
	LogLevel string `json:"log_level"`

	// DataFile optionally replaces the embedded /data.json seed.
	DataFile string `json:"data_file"`

	// TLSCert and TLSKey switch the server to HTTPS when both are set.
	TLSCert string `json:"tls_cert"`
	TLSKey  string `json:"tls_key"`

	// CleanupInterval and SessionRetention drive the expired-session cleaner.
	CleanupInterval  Duration `json:"cleanup_interval"`
	SessionRetention Duration `json:"session_retention"`
}

// Duration is a time.Duration that reads "24h"-style strings from JSON.
type Duration struct {
	time.Duration
}

// UnmarshalJSON accepts a Go duration string.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalJSON writes the duration as a string.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Defaults returns the options used when nothing else is configured.
func Defaults() *Options {
	return &Options{
		Port:             "localhost:8080",
		Config:           "config.json",
		TokenTTL:         Duration{24 * time.Hour},
		LogLevel:         "info",
		CleanupInterval:  Duration{time.Hour},
		SessionRetention: Duration{7 * 24 * time.Hour},
	}
}

// Parse parses the command-line flags and environment variables to set
// configuration values. Precedence, lowest first: defaults, flags, config file,
// environment (a .env file in the working directory is loaded into the
// environment first and never overrides variables that are already set).
func Parse(args []string) (*Options, error) {
	options := Defaults()

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.StringVar(&options.Port, "a", options.Port, "run on ip:port server")
	fs.StringVar(&options.DatabaseDSN, "d", "", "db address")
	fs.StringVar(&options.Config, "config", options.Config, "path to config file")
	fs.StringVar(&options.Config, "c", options.Config, "path to config file (shorthand)")
	fs.StringVar(&options.LogLevel, "log-level", options.LogLevel, "log level")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	// Override flags with environment variables if set
	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				return nil, fmt.Errorf("error while reading config file: %w", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				return nil, fmt.Errorf("error while parsing config file: %w", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		options.JWTSecret = secret
	}
	if key := os.Getenv("API_KEY"); key != "" {
		options.APIKey = key
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		options.LogLevel = level
	}
	if dataFile := os.Getenv("DATA_FILE"); dataFile != "" {
		options.DataFile = dataFile
	}
	if cert := os.Getenv("TLS_CERT"); cert != "" {
		options.TLSCert = cert
	}
	if key := os.Getenv("TLS_KEY"); key != "" {
		options.TLSKey = key
	}
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		v, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL: %w", err)
		}
		options.TokenTTL = Duration{v}
	}

	if options.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET must be set")
	}

	if err := positive("token_ttl", options.TokenTTL); err != nil {
		return nil, err
	}
	if err := positive("cleanup_interval", options.CleanupInterval); err != nil {
		return nil, err
	}
	if err := positive("session_retention", options.SessionRetention); err != nil {
		return nil, err
	}

	return options, nil
}

func positive(name string, d Duration) error {
	if d.Duration <= 0 {
		return fmt.Errorf("%s must be positive, got %s", name, d)
	}
	return nil
}
