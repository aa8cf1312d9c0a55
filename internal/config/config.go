package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	DB         DBConfig
	CORS       CORSConfig
	Log        LogConfig
	Completion CompletionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the reference
// pricing store.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CompletionProviderConfig holds settings for a single completion
// service provider.
type CompletionProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	Endpoint     string `mapstructure:"endpoint"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// CompletionConfig holds completion service settings with optional
// secondary provider fallback.
type CompletionConfig struct {
	Primary   CompletionProviderConfig `mapstructure:"primary"`
	Secondary CompletionProviderConfig `mapstructure:"secondary"`
}

// SecondaryConfig returns the secondary provider config, or nil if not
// configured.
func (c *CompletionConfig) SecondaryConfig() *CompletionProviderConfig {
	if c.Secondary.Provider != "" {
		return &c.Secondary
	}
	return nil
}

// Load reads configuration from environment variables with the
// BILLSAGE_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("BILLSAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "billsage")
	v.SetDefault("db.password", "billsage_secret")
	v.SetDefault("db.name", "billsage_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// CORS defaults: the analyze endpoint is called straight from the
	// patient-facing frontend, so preflight must be permissive.
	v.SetDefault("cors.allowed_origins", "*")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Completion provider defaults
	v.SetDefault("completion.primary.provider", "openai")
	v.SetDefault("completion.primary.api_key", "")
	v.SetDefault("completion.primary.endpoint", "")
	v.SetDefault("completion.primary.default_model", "gpt-4o-mini")
	v.SetDefault("completion.primary.timeout_secs", 120)
	v.SetDefault("completion.secondary.provider", "")
	v.SetDefault("completion.secondary.api_key", "")
	v.SetDefault("completion.secondary.endpoint", "")
	v.SetDefault("completion.secondary.default_model", "")
	v.SetDefault("completion.secondary.timeout_secs", 120)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                        "BILLSAGE_SERVER_PORT",
		"server.read_timeout":                "BILLSAGE_SERVER_READ_TIMEOUT",
		"server.write_timeout":               "BILLSAGE_SERVER_WRITE_TIMEOUT",
		"server.environment":                 "BILLSAGE_SERVER_ENVIRONMENT",
		"db.host":                            "BILLSAGE_DB_HOST",
		"db.port":                            "BILLSAGE_DB_PORT",
		"db.user":                            "BILLSAGE_DB_USER",
		"db.password":                        "BILLSAGE_DB_PASSWORD",
		"db.name":                            "BILLSAGE_DB_NAME",
		"db.sslmode":                         "BILLSAGE_DB_SSLMODE",
		"db.max_open":                        "BILLSAGE_DB_MAX_OPEN",
		"db.max_idle":                        "BILLSAGE_DB_MAX_IDLE",
		"cors.allowed_origins":               "BILLSAGE_CORS_ALLOWED_ORIGINS",
		"log.level":                          "BILLSAGE_LOG_LEVEL",
		"log.format":                         "BILLSAGE_LOG_FORMAT",
		"completion.primary.provider":        "BILLSAGE_COMPLETION_PRIMARY_PROVIDER",
		"completion.primary.api_key":         "BILLSAGE_COMPLETION_PRIMARY_API_KEY",
		"completion.primary.endpoint":        "BILLSAGE_COMPLETION_PRIMARY_ENDPOINT",
		"completion.primary.default_model":   "BILLSAGE_COMPLETION_PRIMARY_DEFAULT_MODEL",
		"completion.primary.timeout_secs":    "BILLSAGE_COMPLETION_PRIMARY_TIMEOUT_SECS",
		"completion.secondary.provider":      "BILLSAGE_COMPLETION_SECONDARY_PROVIDER",
		"completion.secondary.api_key":       "BILLSAGE_COMPLETION_SECONDARY_API_KEY",
		"completion.secondary.endpoint":      "BILLSAGE_COMPLETION_SECONDARY_ENDPOINT",
		"completion.secondary.default_model": "BILLSAGE_COMPLETION_SECONDARY_DEFAULT_MODEL",
		"completion.secondary.timeout_secs":  "BILLSAGE_COMPLETION_SECONDARY_TIMEOUT_SECS",
	}
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
