// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"os"
	"time"
)

// DefaultBaseURL is the public Twelve Data REST host.
const DefaultBaseURL = "https://api.twelvedata.com"

// Config holds configuration for the Twelve Data API client.
type Config struct {
	APIKey  string        // API key for authentication
	BaseURL string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout time.Duration // HTTP request timeout
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("TWELVE_DATA_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return Config{
		APIKey:  os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL: base,
		Timeout: 10 * time.Second,
	}
}
