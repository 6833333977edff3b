package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	JWT      JWTConfig
	App      AppConfig
	Storage  StorageConfig
	Webhook  WebhookConfig
	Leave    LeaveConfig
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	AccessExpiration time.Duration
}

// AppConfig holds application configuration
type AppConfig struct {
	Port               int
	Env                string
	LogLevel           string
	CORSAllowedOrigins []string
}

type StorageConfig struct {
	Path    string
	BaseURL string
}

// WebhookConfig configures the document-generation web app and the outbox dispatcher.
type WebhookConfig struct {
	URL               string
	Timeout           time.Duration
	RatePerSecond     float64
	Burst             int
	SigningSecret     string
	OAuthClientID     string
	OAuthClientSecret string
	OAuthTokenURL     string
	OAuthScopes       []string
	PollInterval      time.Duration
	MaxAttempts       int
	BatchSize         int
}

// Enabled reports whether a webhook URL is configured.
func (w WebhookConfig) Enabled() bool {
	return w.URL != ""
}

type LeaveConfig struct {
	Timezone string
}

// Location is the zone that decides which calendar year a request falls in.
func (l LeaveConfig) Location() (*time.Location, error) {
	return time.LoadLocation(l.Timezone)
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	} else if err != nil {
		slog.Debug("no .env file found, using process environment")
	}

	config := &Config{}
	p := &parser{}

	// Database configuration
	config.Database = DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            p.int("DB_PORT", 5432),
		User:            getEnv("DB_USER", "postgres"),
		Password:        getEnv("DB_PASSWORD", ""),
		Name:            getEnv("DB_NAME", "eleave"),
		SSLMode:         getEnv("DB_SSL_MODE", "disable"),
		MaxConns:        int32(p.int("DB_MAX_CONNS", 25)),
		MinConns:        int32(p.int("DB_MIN_CONNS", 5)),
		MaxConnLifetime: p.duration("DB_MAX_CONN_LIFETIME", time.Hour),
	}

	// Application configuration
	config.App = AppConfig{
		Port:               p.int("APP_PORT", 8080),
		Env:                getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		CORSAllowedOrigins: getEnvSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// JWT configuration
	config.JWT = JWTConfig{
		Secret:           getEnv("JWT_SECRET_KEY", ""),
		AccessExpiration: p.duration("JWT_ACCESS_EXPIRATION_TIME", time.Hour),
	}

	config.Storage = StorageConfig{
		Path:    getEnv("STORAGE_PATH", "./uploads"),
		BaseURL: getEnv("STORAGE_BASE_URL", fmt.Sprintf("http://localhost:%d/uploads", config.App.Port)),
	}

	// Document webhook
	config.Webhook = WebhookConfig{
		URL:               getEnv("GSCRIPT_WEBHOOK_URL", ""),
		Timeout:           p.duration("GSCRIPT_TIMEOUT", 30*time.Second),
		RatePerSecond:     p.float("GSCRIPT_RATE_PER_SECOND", 2),
		Burst:             p.int("GSCRIPT_RATE_BURST", 1),
		SigningSecret:     getEnv("GSCRIPT_SIGNING_SECRET", ""),
		OAuthClientID:     getEnv("GSCRIPT_OAUTH_CLIENT_ID", ""),
		OAuthClientSecret: getEnv("GSCRIPT_OAUTH_CLIENT_SECRET", ""),
		OAuthTokenURL:     getEnv("GSCRIPT_OAUTH_TOKEN_URL", ""),
		OAuthScopes:       getEnvSlice("GSCRIPT_OAUTH_SCOPES", nil),
		PollInterval:      p.duration("OUTBOX_POLL_INTERVAL", time.Minute),
		MaxAttempts:       p.int("OUTBOX_MAX_ATTEMPTS", 5),
		BatchSize:         p.int("OUTBOX_BATCH_SIZE", 20),
	}

	config.Leave = LeaveConfig{
		Timezone: getEnv("LEAVE_TIMEZONE", "Asia/Jakarta"),
	}

	if p.err != nil {
		return nil, p.err
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET_KEY is required")
	}
	if c.JWT.AccessExpiration <= 0 {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME must be positive")
	}
	if c.Webhook.Timeout <= 0 {
		return fmt.Errorf("GSCRIPT_TIMEOUT must be positive")
	}
	if c.Webhook.PollInterval <= 0 {
		return fmt.Errorf("OUTBOX_POLL_INTERVAL must be positive")
	}
	if c.Webhook.MaxAttempts <= 0 {
		return fmt.Errorf("OUTBOX_MAX_ATTEMPTS must be positive")
	}
	if c.Webhook.OAuthClientID != "" && c.Webhook.OAuthTokenURL == "" {
		return fmt.Errorf("GSCRIPT_OAUTH_TOKEN_URL is required when GSCRIPT_OAUTH_CLIENT_ID is set")
	}
	if _, err := c.Leave.Location(); err != nil {
		return fmt.Errorf("invalid LEAVE_TIMEZONE: %w", err)
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.App.Env == "production"
}

// SlogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.App.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// parser keeps the first conversion error so Load can report it once.
type parser struct {
	err error
}

func (p *parser) int(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) float(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func (p *parser) duration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("invalid %s: %w", key, err)
	}
	return v
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(env string, fallback []string) []string {
	value := getEnv(env, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
