package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Server     ServerConfig
	Twitter    TwitterConfig
	AI         AIConfig
	Refresh    RefreshConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	ClickHouse ClickHouseConfig
	Telegram   TelegramConfig
	Logging    LoggingConfig
}

// ServerConfig represents HTTP API parameters
type ServerConfig struct {
	Port         int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout  time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"10s"`
	WriteTimeout time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"30s"`
}

// TwitterConfig represents the social post source credentials.
// With no bearer token the adapter degrades to mock lookups and
// empty timelines instead of failing.
type TwitterConfig struct {
	BearerToken string `envconfig:"TWITTER_BEARER_TOKEN" required:"false"`
}

// AIConfig represents the external completion service
type AIConfig struct {
	ToolkitURL string        `envconfig:"AI_TOOLKIT_URL" required:"false"`
	Timeout    time.Duration `envconfig:"AI_TIMEOUT" default:"30s"`
}

// RefreshConfig represents the signal refresh loop parameters
type RefreshConfig struct {
	Interval     time.Duration `envconfig:"REFRESH_INTERVAL" default:"15m"`
	MaxPosts     int           `envconfig:"REFRESH_MAX_POSTS" default:"10"`
	AlertEnabled bool          `envconfig:"REFRESH_ALERT_ENABLED" default:"false"`
}

// DatabaseConfig represents PostgreSQL connection parameters.
// When disabled, repositories fall back to the KV store.
type DatabaseConfig struct {
	Enabled        bool   `envconfig:"DB_ENABLED" default:"false"`
	Host           string `envconfig:"DB_HOST" default:"localhost"`
	Port           int    `envconfig:"DB_PORT" default:"5432"`
	Name           string `envconfig:"DB_NAME" default:"situation_monitor"`
	User           string `envconfig:"DB_USER" required:"false"`
	Password       string `envconfig:"DB_PASSWORD" required:"false"`
	SSLMode        string `envconfig:"DB_SSLMODE" default:"disable"`
	MigrationsPath string `envconfig:"DB_MIGRATIONS_PATH" default:"migrations"`
}

// RedisConfig represents the durable KV backend
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" required:"false"`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// ClickHouseConfig represents the classification metrics sink
type ClickHouseConfig struct {
	Enabled  bool   `envconfig:"CLICKHOUSE_ENABLED" default:"false"`
	Host     string `envconfig:"CLICKHOUSE_HOST" default:"localhost"`
	Port     int    `envconfig:"CLICKHOUSE_PORT" default:"9000"`
	Database string `envconfig:"CLICKHOUSE_DATABASE" default:"situation_monitor"`
	User     string `envconfig:"CLICKHOUSE_USER" default:"default"`
	Password string `envconfig:"CLICKHOUSE_PASSWORD" required:"false"`
}

// TelegramConfig represents the signal alert channel
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"false"`
	ChatID   int64  `envconfig:"TELEGRAM_CHAT_ID" required:"false"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" required:"false"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if c.Refresh.MaxPosts < 1 || c.Refresh.MaxPosts > 100 {
		return fmt.Errorf("refresh max_posts must be between 1 and 100")
	}
	if c.Refresh.Interval < time.Minute {
		return fmt.Errorf("refresh interval must be at least 1m")
	}

	if c.Database.Enabled && c.Database.User == "" {
		return fmt.Errorf("db_user is required when database is enabled")
	}

	if c.Telegram.BotToken != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram chat_id is required when bot token is set")
	}

	return nil
}

// GetDSN returns PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// GetDSN returns ClickHouse connection string
func (c *ClickHouseConfig) GetDSN() string {
	return fmt.Sprintf(
		"clickhouse://%s:%s@%s:%d/%s",
		c.User, c.Password, c.Host, c.Port, c.Database,
	)
}

// AIEnabled reports whether the external completion service is configured
func (c *AIConfig) AIEnabled() bool {
	return c.ToolkitURL != ""
}
