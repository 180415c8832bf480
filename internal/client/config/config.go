// Package config handles configuration for the client component,
// including defaults, JSON overlay, and command-line flags.
package config

import "github.com/dkotelnikov/spotlist/internal/storage"

// Config holds runtime settings for the spotlist CLI.
//
// Fields:
//   - ServerBaseURL: base URL of the spotlist HTTP API.
//   - S3: settings for direct uploads to the S3-compatible blob store.
type Config struct {
	ServerBaseURL string
	S3            storage.S3Config
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8080"
	c.S3 = storage.S3Config{
		User:         "admin",
		Password:     "secretpassword",
		Bucket:       "spotlist",
		Region:       "us-east-1",
		BaseEndpoint: "http://127.0.0.1:9000/",
	}
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
