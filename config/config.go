package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Port        string
	Environment string
	StaticDir   string

	DatabaseDriver string
	DatabaseURL    string

	JWTSecret     string
	TokenTTL      time.Duration
	CookieSecure  bool
	EncryptionKey string

	SeedAdminUsername string
	SeedAdminPassword string

	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string

	MetricsEnabled bool
	KafkaBrokers   []string
	KafkaTopic     string
}

const (
	defaultJWTSecret     = "your-secret-key-change-in-production"
	defaultEncryptionKey = "AgriPortalGo2025SecureKey1234567"
	defaultSeedPassword  = "admin123"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("static_dir", "static")
	v.SetDefault("database_driver", "sqlite")
	v.SetDefault("database_url", "agriportal.db")
	v.SetDefault("jwt_secret", defaultJWTSecret)
	v.SetDefault("token_ttl", "168h")
	v.SetDefault("cookie_secure", false)
	v.SetDefault("encryption_key", defaultEncryptionKey)
	v.SetDefault("seed_admin_username", "admin")
	v.SetDefault("seed_admin_password", defaultSeedPassword)
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 50)
	v.SetDefault("cors_allowed_origins", "")
	v.SetDefault("metrics_enabled", true)
	v.SetDefault("kafka_brokers", "")
	v.SetDefault("kafka_topic", "scheme-applications")
}

// Load reads configuration from the environment, optionally layered over a
// config file given by CONFIG_FILE (any format viper understands).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("config_file"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	return &Config{
		Port:              v.GetString("port"),
		Environment:       v.GetString("environment"),
		StaticDir:         v.GetString("static_dir"),
		DatabaseDriver:    strings.ToLower(v.GetString("database_driver")),
		DatabaseURL:       v.GetString("database_url"),
		JWTSecret:         v.GetString("jwt_secret"),
		TokenTTL:          v.GetDuration("token_ttl"),
		CookieSecure:      v.GetBool("cookie_secure"),
		EncryptionKey:     v.GetString("encryption_key"),
		SeedAdminUsername: v.GetString("seed_admin_username"),
		SeedAdminPassword: v.GetString("seed_admin_password"),
		RateLimitRPS:      v.GetFloat64("rate_limit_rps"),
		RateLimitBurst:    v.GetInt("rate_limit_burst"),
		AllowedOrigins:    splitList(v.GetString("cors_allowed_origins")),
		MetricsEnabled:    v.GetBool("metrics_enabled"),
		KafkaBrokers:      splitList(v.GetString("kafka_brokers")),
		KafkaTopic:        v.GetString("kafka_topic"),
	}, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// ValidateConfig rejects settings the server cannot start with and warns
// about insecure defaults.
func ValidateConfig(cfg *Config, log *slog.Logger) error {
	if len(cfg.EncryptionKey) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 characters, got %d", len(cfg.EncryptionKey))
	}
	switch cfg.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL must be set")
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive, got %s", cfg.TokenTTL)
	}
	if cfg.SeedAdminUsername == "" {
		return errors.New("SEED_ADMIN_USERNAME must be set")
	}

	if len(cfg.JWTSecret) < 32 {
		log.Warn("JWT_SECRET should be at least 32 characters for security")
	}
	if cfg.Environment == "production" {
		if cfg.JWTSecret == defaultJWTSecret {
			log.Warn("change JWT_SECRET in production environment")
		}
		if cfg.SeedAdminPassword == defaultSeedPassword {
			log.Warn("change SEED_ADMIN_PASSWORD in production environment")
		}
		if slices.Contains(cfg.AllowedOrigins, "*") {
			log.Warn("CORS_ALLOWED_ORIGINS allows every origin in production environment")
		}
		if !cfg.CookieSecure {
			log.Warn("COOKIE_SECURE is off in production environment")
		}
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
