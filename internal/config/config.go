// Package config loads service configuration from embedded defaults, an optional
// YAML file and LZAR_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
)

// EnvPrefix prefixes every environment override; "__" separates nested keys.
const EnvPrefix = "LZAR_"

// DefaultConfig is the base layer every other source overrides
var DefaultConfig = []byte(`
server:
  port: "8080"
  read_timeout: 15s
  write_timeout: 45s
  idle_timeout: 60s

logger:
  level: info

database:
  host: localhost
  port: "5432"
  user: postgres
  password: postgres
  dbname: lzar_wallet
  sslmode: disable
  max_open_conns: 25
  max_idle_conns: 5
  conn_max_lifetime: 5m

gateway:
  base_url: "http://localhost:9090/v1"
  api_key: ""
  timeout: 20s
  read_attempts: 3
  fault_rate: 0
  min_latency_ms: 0
  max_latency_ms: 0

webhook:
  secret: ""

auth:
  jwt_secret: ""

redis:
  addr: ""
  password: ""
  dedup_ttl: 24h

kafka:
  brokers: []
  topic: "lzar.ledger"

charges:
  ttl: 24h
  sweep_interval: 1m
`)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logger   LoggerConfig   `koanf:"logger"`
	Database DatabaseConfig `koanf:"database"`
	Gateway  GatewayConfig  `koanf:"gateway"`
	Webhook  WebhookConfig  `koanf:"webhook"`
	Auth     AuthConfig     `koanf:"auth"`
	Redis    RedisConfig    `koanf:"redis"`
	Kafka    KafkaConfig    `koanf:"kafka"`
	Charges  ChargesConfig  `koanf:"charges"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port         string        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            string        `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	DBName          string        `koanf:"dbname"`
	SSLMode         string        `koanf:"sslmode"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
}

// GatewayConfig holds settlement API configuration. FaultRate and the latency
// bounds inject failures in front of the real gateway for resilience testing.
type GatewayConfig struct {
	BaseURL      string        `koanf:"base_url"`
	APIKey       string        `koanf:"api_key"`
	Timeout      time.Duration `koanf:"timeout"`
	ReadAttempts int           `koanf:"read_attempts"`
	FaultRate    float64       `koanf:"fault_rate"`
	MinLatencyMS int           `koanf:"min_latency_ms"`
	MaxLatencyMS int           `koanf:"max_latency_ms"`
}

// WebhookConfig holds the shared secret for settlement notifications
type WebhookConfig struct {
	Secret string `koanf:"secret"`
}

// AuthConfig holds the bearer token verification key
type AuthConfig struct {
	JWTSecret string `koanf:"jwt_secret"`
}

// RedisConfig holds the webhook de-duplication cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `koanf:"addr"`
	Password string        `koanf:"password"`
	DedupTTL time.Duration `koanf:"dedup_ttl"`
}

// KafkaConfig holds ledger event publication. No brokers disables it.
type KafkaConfig struct {
	Brokers []string `koanf:"brokers"`
	Topic   string   `koanf:"topic"`
}

// ChargesConfig holds payment request lifetime settings
type ChargesConfig struct {
	TTL           time.Duration `koanf:"ttl"`
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

// Load layers the defaults, the YAML file at path (skipped when empty) and the
// environment, then validates the result.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(DefaultConfig), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default configuration: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load configuration file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// envKey maps LZAR_DATABASE__HOST to database.host.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port cannot be empty")
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host cannot be empty")
	}
	if c.Database.DBName == "" {
		return fmt.Errorf("database name cannot be empty")
	}

	if c.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway base url cannot be empty")
	}
	if c.Gateway.Timeout <= 0 || c.Gateway.Timeout > time.Minute {
		return fmt.Errorf("gateway timeout must be in (0, 1m], got %s", c.Gateway.Timeout)
	}
	if c.Gateway.ReadAttempts < 1 {
		return fmt.Errorf("gateway read attempts must be at least 1")
	}
	if c.Gateway.FaultRate < 0 || c.Gateway.FaultRate > 1 {
		return fmt.Errorf("failure rate must be between 0 and 1, got %f", c.Gateway.FaultRate)
	}
	if c.Gateway.MinLatencyMS < 0 {
		return fmt.Errorf("min latency cannot be negative")
	}
	if c.Gateway.MaxLatencyMS < c.Gateway.MinLatencyMS {
		return fmt.Errorf("max latency (%d) must be >= min latency (%d)", c.Gateway.MaxLatencyMS, c.Gateway.MinLatencyMS)
	}

	if c.Charges.TTL <= 0 {
		return fmt.Errorf("charge ttl must be positive")
	}
	if c.Charges.SweepInterval <= 0 {
		return fmt.Errorf("charge sweep interval must be positive")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	return nil
}

// DSN returns the PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}
