package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	RateLimit  RateLimitConfig
	Secure     SecureConfig
	CORS       CORSConfig
	Log        LogConfig
	Pagination PaginationConfig
	Webhook    WebhookConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver      string
	URL         string
	MaxConns    int32
	AutoMigrate bool
	// SeedFile is a YAML or JSON file of organizations, teams and members loaded into the memory driver.
	SeedFile string
}

type RedisConfig struct {
	URL string
}

type JWTConfig struct {
	// PublicKeyPath points at the PEM used to verify access tokens. A private key PEM is accepted too.
	PublicKeyPath string
	Issuer        string
	Audience      string
}

type RateLimitConfig struct {
	// RatePerIP in ulule format ("100-M" = 100/min). Empty disables.
	RatePerIP string
	// RatePerUser in ulule format. Empty disables.
	RatePerUser string
}

type SecureConfig struct {
	IsDevelopment bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Pretty bool
	File   string
}

type PaginationConfig struct {
	DefaultPerPage int
}

// WebhookConfig enables issue event delivery. Events need both URL and Redis.
type WebhookConfig struct {
	URL     string
	Secret  string
	Workers int
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	if p := os.Getenv("CONFIG_FILE"); p != "" {
		v.SetConfigFile(p)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	v.SetDefault("DATABASE_AUTO_MIGRATE", true)
	v.SetDefault("SERVER_READ_TIMEOUT", 10*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 10*time.Second)
	v.SetDefault("PAGINATION_DEFAULT_PER_PAGE", 20)
	v.SetDefault("WEBHOOK_WORKERS", 2)

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnvOrDefault(v, "PORT", "8080"),
			ReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:      strings.ToLower(getEnvOrDefault(v, "DATABASE_DRIVER", DriverPostgres)),
			URL:         getEnvOrDefault(v, "DATABASE_URL", ""),
			MaxConns:    v.GetInt32("DATABASE_MAX_CONNS"),
			AutoMigrate: v.GetBool("DATABASE_AUTO_MIGRATE"),
			SeedFile:    getEnvOrDefault(v, "MEMORY_SEED_FILE", ""),
		},
		Redis: RedisConfig{
			URL: getEnvOrDefault(v, "REDIS_URL", ""),
		},
		JWT: JWTConfig{
			PublicKeyPath: getEnvOrDefault(v, "JWT_PUBLIC_KEY_PATH", ""),
			Issuer:        getEnvOrDefault(v, "JWT_ISSUER", "tracker"),
			Audience:      getEnvOrDefault(v, "JWT_AUDIENCE", "tracker"),
		},
		RateLimit: RateLimitConfig{
			RatePerIP:   getEnvOrDefault(v, "RATE_LIMIT_PER_IP", "300-M"),
			RatePerUser: getEnvOrDefault(v, "RATE_LIMIT_PER_USER", "600-M"),
		},
		Secure: SecureConfig{
			IsDevelopment: v.GetBool("SECURE_DEV"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			Level:  getEnvOrDefault(v, "LOG_LEVEL", "info"),
			Pretty: v.GetBool("LOG_PRETTY"),
			File:   getEnvOrDefault(v, "LOG_FILE", ""),
		},
		Pagination: PaginationConfig{
			DefaultPerPage: v.GetInt("PAGINATION_DEFAULT_PER_PAGE"),
		},
		Webhook: WebhookConfig{
			URL:     getEnvOrDefault(v, "WEBHOOK_URL", ""),
			Secret:  getEnvOrDefault(v, "WEBHOOK_SECRET", ""),
			Workers: v.GetInt("WEBHOOK_WORKERS"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.URL == "" {
			return fmt.Errorf("DATABASE_URL is required for the %s driver", DriverPostgres)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown DATABASE_DRIVER %q (want %s or %s)", c.Database.Driver, DriverPostgres, DriverMemory)
	}
	if c.JWT.PublicKeyPath == "" {
		return fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}
	if c.Pagination.DefaultPerPage < 1 || c.Pagination.DefaultPerPage > 100 {
		return fmt.Errorf("PAGINATION_DEFAULT_PER_PAGE must be between 1 and 100, got %d", c.Pagination.DefaultPerPage)
	}
	if c.Webhook.URL != "" && c.Redis.URL == "" {
		return fmt.Errorf("WEBHOOK_URL requires REDIS_URL for the event queue")
	}
	return nil
}

func getEnvOrDefault(v *viper.Viper, key, def string) string {
	if s := v.GetString(key); s != "" {
		return s
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// LoadJWTPublicKey reads the PEM file used to verify access tokens.
func (c *Config) LoadJWTPublicKey() ([]byte, error) {
	if c.JWT.PublicKeyPath == "" {
		return nil, fmt.Errorf("JWT_PUBLIC_KEY_PATH is required")
	}
	return os.ReadFile(c.JWT.PublicKeyPath)
}
