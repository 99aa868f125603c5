package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

// Environment represents different deployment environments
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvProduction  Environment = "production"
)

// EnvPrefix is prepended to every variable name, e.g. JOURNAL_HTTP_PORT.
const EnvPrefix = "JOURNAL"

// Supported storage drivers and model backends.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	BackendOllama = "ollama"
	BackendGemini = "gemini"
)

// Config holds the configuration for the journal service and CLI.
type Config struct {
	Environment Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string      `envconfig:"LOG_LEVEL" default:"info"`

	// HTTP Configuration
	HTTPPort            int    `envconfig:"HTTP_PORT" default:"8000"`
	WriteTimeoutSeconds int    `envconfig:"WRITE_TIMEOUT_SECONDS" default:"180"`
	FrontendDir         string `envconfig:"FRONTEND_DIR" default:"frontend"`

	// Storage
	DBDriver    string `envconfig:"DB_DRIVER" default:"sqlite"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"data/journals.db"`
	PostgresDSN string `envconfig:"POSTGRES_DSN" default:""`

	// Language model backend: ollama (local) or gemini (cloud). Chosen once at startup.
	LLMBackend           string `envconfig:"LLM_BACKEND" default:"ollama"`
	OllamaURL            string `envconfig:"OLLAMA_URL" default:"http://localhost:11434"`
	OllamaModel          string `envconfig:"OLLAMA_MODEL" default:"llama3.2"`
	OllamaTimeoutSeconds int    `envconfig:"OLLAMA_TIMEOUT_SECONDS" default:"300"`
	GeminiAPIKey         string `envconfig:"GEMINI_API_KEY" default:""`
	GeminiModel          string `envconfig:"GEMINI_MODEL" default:"gemini-2.5-flash"`

	// WHOOP OAuth + REST
	WhoopClientID     string `envconfig:"WHOOP_CLIENT_ID" default:""`
	WhoopClientSecret string `envconfig:"WHOOP_CLIENT_SECRET" default:""`
	WhoopRedirectURI  string `envconfig:"WHOOP_REDIRECT_URI" default:"http://localhost:8000/api/whoop/callback"`
	WhoopAuthURL      string `envconfig:"WHOOP_AUTH_URL" default:"https://api.prod.whoop.com/oauth/oauth2/auth"`
	WhoopTokenURL     string `envconfig:"WHOOP_TOKEN_URL" default:"https://api.prod.whoop.com/oauth/oauth2/token"`
	WhoopAPIBaseURL   string `envconfig:"WHOOP_API_BASE_URL" default:"https://api.prod.whoop.com/developer"`
	WhoopScopes       string `envconfig:"WHOOP_SCOPES" default:"offline read:profile read:body_measurement read:cycles read:recovery read:sleep read:workout"`

	// Health monitoring
	HealthIntervalSeconds     int `envconfig:"HEALTH_INTERVAL_SECONDS" default:"30"`
	HealthProbeTimeoutSeconds int `envconfig:"HEALTH_PROBE_TIMEOUT_SECONDS" default:"2"`
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into
// the process environment. Existing variables win; missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// ResolveDefaults normalizes driver/backend names and validates combinations.
func (c *Config) ResolveDefaults() error {
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	c.LLMBackend = strings.ToLower(strings.TrimSpace(c.LLMBackend))

	switch c.DBDriver {
	case "", "auto":
		c.DBDriver = DriverSQLite
	case DriverSQLite:
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("%s_POSTGRES_DSN is required when DB_DRIVER=postgres", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER: %s", c.DBDriver)
	}

	switch c.LLMBackend {
	case "", BackendOllama:
		c.LLMBackend = BackendOllama
	case BackendGemini:
		if c.GeminiAPIKey == "" {
			return fmt.Errorf("%s_GEMINI_API_KEY is required when LLM_BACKEND=gemini", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported LLM_BACKEND: %s", c.LLMBackend)
	}

	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP_PORT: %d", c.HTTPPort)
	}
	return nil
}

// New creates a new Config by parsing environment variables prefixed with JOURNAL_.
// Example: JOURNAL_HTTP_PORT, JOURNAL_LLM_BACKEND
func New() (*Config, error) {
	var cfg Config

	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	if err := cfg.ResolveDefaults(); err != nil {
		return nil, err
	}

	log.Debug().
		Str("environment", string(cfg.Environment)).
		Str("db_driver", cfg.DBDriver).
		Int("port", cfg.HTTPPort).
		Str("llm_backend", cfg.LLMBackend).
		Str("ollama_model", cfg.OllamaModel).
		Str("gemini_model", cfg.GeminiModel).
		Bool("gemini_key_present", cfg.GeminiAPIKey != "").
		Bool("whoop_configured", cfg.WhoopConfigured()).
		Msg("Configuration loaded")

	return &cfg, nil
}

// NewForTesting creates a config specifically for testing
func NewForTesting() *Config {
	return &Config{
		Environment:               EnvTesting,
		LogLevel:                  "disabled",
		HTTPPort:                  8000,
		WriteTimeoutSeconds:       5,
		DBDriver:                  DriverSQLite,
		SQLitePath:                ":memory:",
		LLMBackend:                BackendOllama,
		OllamaURL:                 "http://localhost:11434",
		OllamaModel:               "llama3.2",
		OllamaTimeoutSeconds:      5,
		GeminiModel:               "gemini-2.5-flash",
		WhoopRedirectURI:          "http://localhost:8000/api/whoop/callback",
		WhoopAuthURL:              "http://whoop.test/oauth/oauth2/auth",
		WhoopTokenURL:             "http://whoop.test/oauth/oauth2/token",
		WhoopAPIBaseURL:           "http://whoop.test/developer",
		WhoopScopes:               "offline read:profile",
		HealthIntervalSeconds:     1,
		HealthProbeTimeoutSeconds: 1,
	}
}

// WhoopConfigured reports whether OAuth client credentials are present.
func (c *Config) WhoopConfigured() bool {
	return c.WhoopClientID != ""
}

// IsTesting returns true if the environment is set to testing
func (c *Config) IsTesting() bool {
	return c.Environment == EnvTesting
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}
