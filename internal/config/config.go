package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"APP_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
// `required:"true"` makes an environment variable mandatory.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // debug enables per-section resolution logs
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Merch      MerchConfig
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port               string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead        time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite       time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle        time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
	CORSAllowedOrigins []string      `envconfig:"HTTP_CORS_ALLOWED_ORIGINS" default:"*"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST" required:"true"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER" required:"true"`
	Password string `envconfig:"POSTGRES_PASSWORD" required:"true"`
	DBName   string `envconfig:"POSTGRES_DBNAME" required:"true"`
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName)
}

// RedisConfig points at the view-history Redis. An empty Addr keeps history in process memory.
type RedisConfig struct {
	Addr       string        `envconfig:"REDIS_ADDR"`
	Password   string        `envconfig:"REDIS_PASSWORD"`
	DB         int           `envconfig:"REDIS_DB" default:"0"`
	HistoryTTL time.Duration `envconfig:"VIEW_HISTORY_TTL" default:"720h"`
}

// Enabled reports whether a Redis address is configured.
func (rc *RedisConfig) Enabled() bool { return rc.Addr != "" }

// MerchConfig tunes the merchandising engine.
type MerchConfig struct {
	RulesFile       string        `envconfig:"MERCH_RULES_FILE"` // empty = embedded default rules
	PoolLimit       int           `envconfig:"MERCH_POOL_LIMIT" default:"500"`
	CountdownTick   time.Duration `envconfig:"MERCH_COUNTDOWN_TICK" default:"1s"`
	CampaignRefresh time.Duration `envconfig:"MERCH_CAMPAIGN_REFRESH" default:"30s"`
}

// Debug reports whether debug logging is on.
func (c *Config) Debug() bool { return strings.EqualFold(c.LogLevel, "debug") }

// Load initializes the configuration from environment variables.
// It should be called once during application startup.
func Load() (*Config, error) {
	log.Println("Loading service configuration...")
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	if cfg.Merch.PoolLimit <= 0 {
		return nil, fmt.Errorf("invalid MERCH_POOL_LIMIT: %d", cfg.Merch.PoolLimit)
	}
	if cfg.Merch.CountdownTick <= 0 || cfg.Merch.CampaignRefresh <= 0 {
		return nil, fmt.Errorf("MERCH_COUNTDOWN_TICK and MERCH_CAMPAIGN_REFRESH must be positive")
	}

	log.Printf("Configuration loaded successfully for APP_ENV: %s", cfg.AppEnv)
	return &cfg, nil
}
