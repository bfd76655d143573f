package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

type Config struct {
	Env     string
	AppPort string

	// AppSlug identifies this client application in the shared SSO
	// deployment. It must appear in Apps.
	AppSlug   string
	StaticDir string

	// Apps maps application slugs to their base URLs. Only URLs from
	// this allow-list are ever used as redirect targets.
	Apps map[string]string

	// LoginSurface enables the shared login endpoints on this process.
	// LoginBaseURL is the external base URL of whichever process hosts
	// them (may be this one).
	LoginSurface bool
	LoginBaseURL string

	CookieDomain string
	CookieSecure bool
	SessionTTL   time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string

	GithubClientID     string
	GithubClientSecret string
	GithubRedirectURL  string

	RedisAddr     string
	RedisPassword string

	DatabaseDSN string

	// Optional operator-seeded local account, created at startup if the
	// credentials do not already exist.
	SeedEmail    string
	SeedPassword string
}

func Load() Config {

	cfg := Config{

		Env:     envOr("APP_ENV", "production"),
		AppPort: envOr("APP_PORT", "3001"),

		AppSlug:   os.Getenv("APP_SLUG"),
		StaticDir: envOr("STATIC_DIR", "./build"),

		Apps: parseApps(os.Getenv("APPS")),

		LoginSurface: os.Getenv("LOGIN_SURFACE") == "true",
		LoginBaseURL: os.Getenv("LOGIN_BASE_URL"),

		CookieDomain: os.Getenv("SESSION_DOMAIN"),
		CookieSecure: os.Getenv("SESSION_DOMAIN") != "",
		SessionTTL:   parseTTL(os.Getenv("SESSION_TTL")),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),

		GithubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GithubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GithubRedirectURL:  os.Getenv("GITHUB_REDIRECT_URL"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		DatabaseDSN: os.Getenv("DATABASE_DSN"),

		SeedEmail:    os.Getenv("SEED_EMAIL"),
		SeedPassword: os.Getenv("SEED_PASSWORD"),
	}

	return cfg
}

// Validate checks the parts of the configuration whose absence would
// only surface as a confusing runtime failure.
func (c Config) Validate() error {
	if c.AppSlug == "" {
		return fmt.Errorf("config: APP_SLUG is required")
	}
	if _, ok := c.Apps[c.AppSlug]; !ok {
		return fmt.Errorf("config: APP_SLUG %q not present in APPS", c.AppSlug)
	}
	if c.LoginBaseURL == "" {
		return fmt.Errorf("config: LOGIN_BASE_URL is required")
	}
	return nil
}

// parseApps parses "slug=baseURL,slug=baseURL" pairs.
func parseApps(raw string) map[string]string {
	apps := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		slug, base, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}
		apps[strings.TrimSpace(slug)] = strings.TrimSpace(base)
	}
	return apps
}

func parseTTL(raw string) time.Duration {
	if raw == "" {
		return 24 * time.Hour
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 24 * time.Hour
	}
	return d
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
