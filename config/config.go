// Package config loads runtime settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Port string `mapstructure:"port"`

	DBDriver   string `mapstructure:"db_driver"`
	DBHost     string `mapstructure:"db_host"`
	DBPort     int    `mapstructure:"db_port"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBName     string `mapstructure:"db_name"`
	DBSSLMode  string `mapstructure:"db_sslmode"`
	SQLitePath string `mapstructure:"sqlite_path"`

	AllowedOrigins         string `mapstructure:"allowed_origins"`
	RateLimitMax           int    `mapstructure:"rate_limit_max"`
	RateLimitWindowSeconds int    `mapstructure:"rate_limit_window_seconds"`
	BodyLimitMB            int    `mapstructure:"body_limit_mb"`

	JWTSecret string `mapstructure:"jwt_secret_key"`
	LogLevel  string `mapstructure:"log_level"`

	ExpiryWarningDays int           `mapstructure:"expiry_warning_days"`
	NotifyInterval    time.Duration `mapstructure:"notify_interval"`
}

var defaults = map[string]any{
	"port":                      "8080",
	"db_driver":                 DriverPostgres,
	"db_host":                   "db",
	"db_port":                   5432,
	"db_user":                   "",
	"db_password":               "",
	"db_name":                   "devis",
	"db_sslmode":                "disable",
	"sqlite_path":               "devis.db",
	"allowed_origins":           "*",
	"rate_limit_max":            60,
	"rate_limit_window_seconds": 60,
	"body_limit_mb":             4,
	"jwt_secret_key":            "",
	"log_level":                 "info",
	"expiry_warning_days":       7,
	"notify_interval":           time.Hour,
}

// Load reads .env when present, then the environment, then path when it is
// not empty. Environment variables win over the file.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("jwt_secret_key", "JWT_SECRET_KEY", "JWT_SECRET"); err != nil {
		return nil, fmt.Errorf("bind jwt secret: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported db_driver %q", c.DBDriver)
	}
	if c.RateLimitMax <= 0 {
		return fmt.Errorf("rate_limit_max must be positive")
	}
	if c.NotifyInterval < time.Minute {
		return fmt.Errorf("notify_interval must be at least one minute")
	}
	return nil
}

// DSN returns the postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

func (c *Config) BodyLimitBytes() int {
	return c.BodyLimitMB * 1024 * 1024
}

func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}
