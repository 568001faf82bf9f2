package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultSessionMaxAge is used when SESSION_MAX_AGE is not configured.
const DefaultSessionMaxAge = 24 * time.Hour

// Config holds the identity and session configuration read from the
// environment (optionally seeded from a .env file). Server transport
// options live in the container Options struct instead.
type Config struct {
	// AuthProviders lists the identity providers to assemble, in order.
	// Empty means open mode: sessions are validated against the user
	// store with no policy evaluation.
	AuthProviders []string

	// Users and Domains form the authorization policy allow-lists.
	Users   []string
	Domains []string

	SessionSecret string
	SessionMaxAge time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	OIDCClientID     string
	OIDCClientSecret string
	OIDCAuthURL      string
	OIDCTokenURL     string
	OIDCUserInfoURL  string
	OIDCCallbackURL  string
}

// Load reads configuration from the environment. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AuthProviders:      splitList(os.Getenv("AUTH_PROVIDERS")),
		Users:              splitList(os.Getenv("USERS")),
		Domains:            splitList(os.Getenv("DOMAINS")),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
		SessionMaxAge:      DefaultSessionMaxAge,
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),
		OIDCClientID:       os.Getenv("OIDC_CLIENT_ID"),
		OIDCClientSecret:   os.Getenv("OIDC_CLIENT_SECRET"),
		OIDCAuthURL:        os.Getenv("OIDC_AUTHORIZATION_URL"),
		OIDCTokenURL:       os.Getenv("OIDC_TOKEN_URL"),
		OIDCUserInfoURL:    os.Getenv("OIDC_USER_INFO_URL"),
		OIDCCallbackURL:    os.Getenv("OIDC_CALLBACK_URL"),
	}

	if raw := os.Getenv("SESSION_MAX_AGE"); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_MAX_AGE: %q", raw)
		}

		if seconds < 0 {
			return nil, fmt.Errorf("SESSION_MAX_AGE cannot be negative: %d", seconds)
		}

		cfg.SessionMaxAge = time.Duration(seconds) * time.Second
	}

	return cfg, nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))

	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}

	return values
}
