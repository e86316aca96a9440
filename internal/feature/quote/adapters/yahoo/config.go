// Package yahoo provides a client for the Yahoo Finance quote endpoints.
package yahoo

import (
	"os"
	"time"
)

// DefaultBaseURL is the public Yahoo Finance query host.
const DefaultBaseURL = "https://query1.finance.yahoo.com"

// DefaultCookieURL issues the session cookie the crumb is bound to.
const DefaultCookieURL = "https://fc.yahoo.com"

// Config holds configuration for the Yahoo Finance client.
type Config struct {
	BaseURL   string        // Base URL for the API (e.g., "https://query1.finance.yahoo.com")
	CookieURL string        // URL that sets the session cookie before the crumb request
	UserAgent string        // User-Agent header; Yahoo rejects empty agents
	Timeout   time.Duration // HTTP request timeout
}

// LoadConfig loads Yahoo Finance configuration from environment variables.
func LoadConfig() Config {
	base := os.Getenv("YAHOO_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	cookie := os.Getenv("YAHOO_COOKIE_URL")
	if cookie == "" {
		cookie = DefaultCookieURL
	}
	return Config{
		BaseURL:   base,
		CookieURL: cookie,
		UserAgent: os.Getenv("YAHOO_USER_AGENT"),
		Timeout:   10 * time.Second,
	}
}
