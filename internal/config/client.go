package config

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Marker sources for the map view.
const (
	SourceTable  = "table"
	SourceStatic = "static"
)

// ClientOptions holds the configuration of the terminal client.
type ClientOptions struct {
	// URL is the marker service base URL.
	URL string
	// APIKey is the service's public key.
	APIKey string
	// StateFile is where the local storage (the current user) is persisted.
	StateFile string
	// Source picks where the map view loads markers from on mount.
	Source string
	// GeoURL is the IP geolocation endpoint. Empty keeps the default centre.
	GeoURL string
	// LogLevel is the zap level name.
	LogLevel string
	// ShowVersion prints build metadata and exits.
	ShowVersion bool
}

// ParseClient reads client flags, then lets MAPKEEPER_* environment variables
// (including ones from a .env file) override them.
func ParseClient(args []string) (*ClientOptions, error) {
	o := &ClientOptions{}

	fs := flag.NewFlagSet("client", flag.ContinueOnError)
	fs.StringVar(&o.URL, "url", "http://localhost:8080", "marker service base URL")
	fs.StringVar(&o.APIKey, "key", "", "marker service public API key")
	fs.StringVar(&o.StateFile, "state", "storage.json", "path to local storage file")
	fs.StringVar(&o.Source, "source", SourceTable, "marker source: table | static")
	fs.StringVar(&o.GeoURL, "geo", "", "IP geolocation endpoint")
	fs.StringVar(&o.LogLevel, "log-level", "warn", "log level")
	fs.BoolVar(&o.ShowVersion, "version", false, "show build version and date")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	_ = godotenv.Load()

	if v := os.Getenv("MAPKEEPER_URL"); v != "" {
		o.URL = v
	}
	if v := os.Getenv("MAPKEEPER_API_KEY"); v != "" {
		o.APIKey = v
	}
	if v := os.Getenv("MAPKEEPER_GEO_URL"); v != "" {
		o.GeoURL = v
	}

	if o.Source != SourceTable && o.Source != SourceStatic {
		return nil, fmt.Errorf("unknown marker source %q", o.Source)
	}
	return o, nil
}
