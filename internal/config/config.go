// Package config handles application configuration and environment loading.
package config

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the configuration for the user directory server.
type Config struct {
	DBPath     string // path to the SQLite user/audit store (default "pageguard.sqlite")
	ListenAddr string // HTTP listen address (default ":8080")
	LogLevel   string // log level: debug, info, warn, error (default "info")

	// JWTSecret is the HS256 shared secret for local/dev tokens. Ignored when
	// an OIDC issuer is configured.
	JWTSecret string

	// OIDC settings; empty IssuerURL disables OIDC validation.
	IssuerURL      string
	Audience       string
	AllowedIssuers []string

	// DirectoryFile optionally points at a YAML user list used instead of the
	// SQLite store (dev mode, no persistence).
	DirectoryFile string

	// Rate limiting
	RateLimitRPS   float64 // sustained requests per second (default 100)
	RateLimitBurst int     // burst capacity (default 200)

	// CORS
	CORSAllowedOrigins []string // allowed origins for CORS (default: ["*"])

	// AuditRetention is how long audit entries are kept before the scheduled
	// prune removes them (default 720h).
	AuditRetention time.Duration
}

// OIDCEnabled returns true when an external identity provider is configured.
func (c *Config) OIDCEnabled() bool {
	return c.IssuerURL != ""
}

// SlogLevel maps the LogLevel string to an slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
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

// LoadFromEnv builds a Config from environment variables, applying defaults
// for anything unset.
func LoadFromEnv() *Config {
	cfg := &Config{
		DBPath:        os.Getenv("DB_PATH"),
		ListenAddr:    os.Getenv("LISTEN_ADDR"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		IssuerURL:     os.Getenv("AUTH_ISSUER_URL"),
		Audience:      os.Getenv("AUTH_AUDIENCE"),
		DirectoryFile: os.Getenv("DIRECTORY_FILE"),
	}

	if v := os.Getenv("AUTH_ALLOWED_ISSUERS"); v != "" {
		cfg.AllowedIssuers = compactNonEmpty(strings.Split(v, ","))
	}
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.CORSAllowedOrigins = compactNonEmpty(strings.Split(v, ","))
	}
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		}
	}
	if v := os.Getenv("RATE_LIMIT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RateLimitBurst = n
		}
	}
	if v := os.Getenv("AUDIT_RETENTION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.AuditRetention = d
		}
	}

	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.DBPath == "" {
		c.DBPath = "pageguard.sqlite"
	}
	if c.ListenAddr == "" {
		c.ListenAddr = ":8080"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.RateLimitRPS <= 0 {
		c.RateLimitRPS = 100
	}
	if c.RateLimitBurst <= 0 {
		c.RateLimitBurst = 200
	}
	if len(c.CORSAllowedOrigins) == 0 {
		c.CORSAllowedOrigins = []string{"*"}
	}
	if c.AuditRetention <= 0 {
		c.AuditRetention = 30 * 24 * time.Hour
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.IssuerURL != "" && c.Audience == "" {
		return fmt.Errorf("AUTH_AUDIENCE is required when AUTH_ISSUER_URL is set")
	}
	if c.IssuerURL == "" && c.JWTSecret == "" {
		return fmt.Errorf("one of JWT_SECRET or AUTH_ISSUER_URL must be set")
	}
	return nil
}

func compactNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// LoadDotEnv reads a .env file and sets any variables not already in the environment.
// Lines must be in KEY=VALUE format. Comments (#) and blank lines are skipped.
func LoadDotEnv(path string) error {
	f, err := os.Open(path) //nolint:gosec // path is caller-controlled
	if err != nil {
		if os.IsNotExist(err) {
			return nil // .env not found is not an error
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = stripQuotes(strings.TrimSpace(value))
		// Only set if not already in the environment (env vars take precedence)
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("setenv %s: %w", key, err)
			}
		}
	}
	return scanner.Err()
}

// stripQuotes removes surrounding double or single quotes from a value.
// Only strips if both the first and last characters are matching quotes.
func stripQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
