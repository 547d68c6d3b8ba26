package config

import (
	"fmt"
	"os"
	"strings"
)

// OIDCProvider holds the endpoints and client credentials for an OAuth/OIDC
// identity provider.
type OIDCProvider struct {
	ID           string
	Name         string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

type Config struct {
	DatabaseURL      string
	HTTPListenAddr   string
	MetricsAddr      string
	LogLevel         string
	Environment      string
	JWTSecret        string
	JWTIssuer        string
	OAuthCallbackURL string
	CORSOrigins      []string
	PlansFile        string

	LLMBaseURL string
	LLMAPIKey  string
	LLMModel   string

	// GitHubRawBaseURL is the raw content host README files are fetched from.
	// Overridable for tests.
	GitHubRawBaseURL string

	OIDCProviders []OIDCProvider
}

func Load() (*Config, error) {
	origins := getEnv("CORS_ORIGINS", "http://localhost:3000")
	var corsList []string
	for _, o := range strings.Split(origins, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			corsList = append(corsList, trimmed)
		}
	}

	cfg := &Config{
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		HTTPListenAddr:   getEnv("HTTP_LISTEN_ADDR", ":8080"),
		MetricsAddr:      getEnv("METRICS_LISTEN_ADDR", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		Environment:      getEnv("ENVIRONMENT", "development"),
		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTIssuer:        getEnv("JWT_ISSUER", "keyhub-api"),
		OAuthCallbackURL: getEnv("OAUTH_CALLBACK_URL", ""),
		CORSOrigins:      corsList,
		PlansFile:        getEnv("PLANS_FILE", ""),
		LLMBaseURL:       getEnv("LLM_BASE_URL", "https://api.openai.com"),
		LLMAPIKey:        getEnv("LLM_API_KEY", ""),
		LLMModel:         getEnv("LLM_MODEL", "gpt-4o-mini"),
		GitHubRawBaseURL: getEnv("GITHUB_RAW_BASE_URL", "https://raw.githubusercontent.com"),
	}

	if clientID := getEnv("OAUTH_CLIENT_ID", ""); clientID != "" {
		cfg.OIDCProviders = append(cfg.OIDCProviders, OIDCProvider{
			ID:           "google",
			Name:         "Google",
			AuthURL:      getEnv("OAUTH_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth"),
			TokenURL:     getEnv("OAUTH_TOKEN_URL", "https://oauth2.googleapis.com/token"),
			UserInfoURL:  getEnv("OAUTH_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo"),
			ClientID:     clientID,
			ClientSecret: getEnv("OAUTH_CLIENT_SECRET", ""),
			Scopes:       []string{"openid", "email", "profile"},
		})
	}

	return cfg, nil
}

// Validate checks the configuration required for the server to start at all.
// The backing store and OAuth login degrade to a disabled state when their
// settings are absent; a configured provider with a missing client secret is
// fatal in production.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("missing required config: JWT_SECRET")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 bytes")
	}
	if c.Environment == "production" {
		for _, p := range c.OIDCProviders {
			if p.ClientSecret == "" {
				return fmt.Errorf("OAUTH_CLIENT_SECRET is required in production for provider %s", p.ID)
			}
		}
	}
	return nil
}

// StoreConfigured reports whether a backing store connection is configured.
func (c *Config) StoreConfigured() bool {
	return c.DatabaseURL != ""
}

// AuthConfigured reports whether at least one usable OAuth provider exists.
func (c *Config) AuthConfigured() bool {
	for _, p := range c.OIDCProviders {
		if p.ClientID != "" && p.ClientSecret != "" {
			return true
		}
	}
	return false
}

// SummarizerConfigured reports whether the LLM backend is configured.
func (c *Config) SummarizerConfigured() bool {
	return c.LLMAPIKey != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
