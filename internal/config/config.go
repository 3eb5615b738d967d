package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultDashboardPassword is only accepted outside production
const DefaultDashboardPassword = "1234"

// Config holds all configuration for the application
type Config struct {
	// Database
	DatabaseURL string

	// Server ports
	APIPort  int
	SMTPPort int

	// Dashboard gate
	DashboardPassword string
	TokenSecret       string
	TokenTTL          time.Duration

	// Email intake
	SMTPIntakeEnabled   bool
	SMTPIntakeAddresses []string

	// Owner notification
	NotifySMTPAddr     string
	NotifySMTPUsername string
	NotifySMTPPassword string
	NotifyFrom         string
	NotifyTo           []string

	// Change feed relay between instances
	RedisURL string

	// Site content override
	ContentPath string

	// Logging
	LogLevel string

	// Security
	AllowedOrigins string
	AppEnv         string

	// Rate Limiting
	RateLimitRequests float64
	RateLimitBurst    int
	ContactRateLimit  int
	UnlockRateLimit   int
}

// LoadDotEnv seeds the environment from a .env file when present.
// Variables already set in the environment win.
func LoadDotEnv(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
		}
	}
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AppEnv = os.Getenv("APP_ENV")
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}

	// DATABASE_URL (default: local sqlite file outside production)
	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		if cfg.AppEnv == "production" {
			return nil, fmt.Errorf("DATABASE_URL is required but not set")
		}
		cfg.DatabaseURL = "sqlite:estate.db"
	}

	var err error
	if cfg.APIPort, err = intEnv("API_PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.SMTPPort, err = intEnv("SMTP_PORT", 2525); err != nil {
		return nil, err
	}
	if cfg.SMTPIntakeEnabled, err = boolEnv("SMTP_INTAKE_ENABLED", false); err != nil {
		return nil, err
	}
	cfg.SMTPIntakeAddresses = listEnv("SMTP_INTAKE_ADDRESSES")

	cfg.DashboardPassword = os.Getenv("DASHBOARD_PASSWORD")
	if cfg.DashboardPassword == "" {
		cfg.DashboardPassword = DefaultDashboardPassword
	}
	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")

	cfg.TokenTTL = 12 * time.Hour
	if ttl := os.Getenv("TOKEN_TTL"); ttl != "" {
		d, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("TOKEN_TTL must be a valid duration: %w", err)
		}
		cfg.TokenTTL = d
	}

	cfg.NotifySMTPAddr = os.Getenv("NOTIFY_SMTP_ADDR")
	cfg.NotifySMTPUsername = os.Getenv("NOTIFY_SMTP_USERNAME")
	cfg.NotifySMTPPassword = os.Getenv("NOTIFY_SMTP_PASSWORD")
	cfg.NotifyFrom = os.Getenv("NOTIFY_FROM")
	cfg.NotifyTo = listEnv("NOTIFY_TO")

	cfg.RedisURL = os.Getenv("REDIS_URL")
	cfg.ContentPath = os.Getenv("CONTENT_PATH")

	// LOG_LEVEL (default: info)
	cfg.LogLevel = os.Getenv("LOG_LEVEL")
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	cfg.AllowedOrigins = os.Getenv("ALLOWED_ORIGINS")

	// Rate limiting configuration
	if rps := os.Getenv("RATE_LIMIT_REQUESTS"); rps != "" {
		if v, err := strconv.ParseFloat(rps, 64); err == nil {
			cfg.RateLimitRequests = v
		}
	} else {
		cfg.RateLimitRequests = 10.0
	}

	if burst := os.Getenv("RATE_LIMIT_BURST"); burst != "" {
		if v, err := strconv.Atoi(burst); err == nil {
			cfg.RateLimitBurst = v
		}
	} else {
		cfg.RateLimitBurst = 20
	}

	if cfg.ContactRateLimit, err = intEnv("CONTACT_RATE_LIMIT", 5); err != nil {
		return nil, err
	}
	if cfg.UnlockRateLimit, err = intEnv("UNLOCK_RATE_LIMIT", 10); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadWithValidation loads and validates configuration, failing fast on errors
func LoadWithValidation() (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.IsProduction() {
		if err := cfg.ValidateProduction(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsProduction reports whether APP_ENV is production
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DatabaseURL cannot be empty")
	}
	if c.APIPort <= 0 || c.APIPort > 65535 {
		return fmt.Errorf("APIPort must be between 1 and 65535")
	}
	if c.SMTPPort <= 0 || c.SMTPPort > 65535 {
		return fmt.Errorf("SMTPPort must be between 1 and 65535")
	}
	if c.DashboardPassword == "" {
		return fmt.Errorf("DashboardPassword cannot be empty")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TokenTTL must be positive")
	}
	if c.SMTPIntakeEnabled && len(c.SMTPIntakeAddresses) == 0 {
		return fmt.Errorf("SMTP_INTAKE_ADDRESSES is required when SMTP intake is enabled")
	}
	if c.NotifySMTPAddr != "" && (c.NotifyFrom == "" || len(c.NotifyTo) == 0) {
		return fmt.Errorf("NOTIFY_FROM and NOTIFY_TO are required when NOTIFY_SMTP_ADDR is set")
	}
	if c.ContactRateLimit <= 0 {
		return fmt.Errorf("ContactRateLimit must be positive")
	}
	if c.UnlockRateLimit <= 0 {
		return fmt.Errorf("UnlockRateLimit must be positive")
	}
	return nil
}

// ValidateProduction performs additional validation for production environment
func (c *Config) ValidateProduction() error {
	if c.DashboardPassword == DefaultDashboardPassword {
		return fmt.Errorf("DASHBOARD_PASSWORD must be changed in production")
	}

	if len(c.TokenSecret) < 32 {
		return fmt.Errorf("TOKEN_SECRET of at least 32 characters is required in production")
	}

	if c.AllowedOrigins == "" {
		return fmt.Errorf("ALLOWED_ORIGINS is required in production")
	}

	// Check for wildcard in production
	if strings.Contains(c.AllowedOrigins, "*") {
		return fmt.Errorf("wildcard (*) origins are not allowed in production")
	}

	if strings.HasPrefix(c.DatabaseURL, "sqlite:") {
		return fmt.Errorf("sqlite databases are not allowed in production")
	}

	// Check for sslmode=disable in database URL
	if strings.Contains(c.DatabaseURL, "sslmode=disable") {
		return fmt.Errorf("sslmode=disable is not allowed in production")
	}

	return nil
}

// Origins splits AllowedOrigins into a trimmed list
func (c *Config) Origins() []string {
	return splitList(c.AllowedOrigins)
}

// SlogLevel maps LogLevel onto a slog level
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

// LogConfig logs configuration values (excluding secrets)
func (c *Config) LogConfig(logger *slog.Logger) {
	logger.Info("configuration loaded",
		slog.Int("api_port", c.APIPort),
		slog.Int("smtp_port", c.SMTPPort),
		slog.Bool("smtp_intake", c.SMTPIntakeEnabled),
		slog.Bool("notify_enabled", c.NotifySMTPAddr != ""),
		slog.Bool("redis_relay", c.RedisURL != ""),
		slog.String("content_path", c.ContentPath),
		slog.String("log_level", c.LogLevel),
		slog.String("app_env", c.AppEnv),
		slog.Bool("dashboard_password_default", c.DashboardPassword == DefaultDashboardPassword),
		slog.Bool("token_secret_set", c.TokenSecret != ""),
		slog.Duration("token_ttl", c.TokenTTL),
		slog.Bool("allowed_origins_set", c.AllowedOrigins != ""),
		slog.Float64("rate_limit_rps", c.RateLimitRequests),
		slog.Int("rate_limit_burst", c.RateLimitBurst),
		slog.Int("contact_rate_limit", c.ContactRateLimit),
		slog.Int("unlock_rate_limit", c.UnlockRateLimit),
	)
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("%s must be a valid boolean: %w", key, err)
	}
	return b, nil
}

func listEnv(key string) []string {
	return splitList(os.Getenv(key))
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
