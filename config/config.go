package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/laxmanfhaneendra/savebucks-sub002/errors"
)

// Config represents the application configuration structure
type Config struct {
	Server    ServerConfig    `split_words:"true"`
	Database  DatabaseConfig  `split_words:"true"`
	Redis     RedisConfig     `split_words:"true"`
	Cache     CacheConfig     `split_words:"true"`
	Analytics AnalyticsConfig `split_words:"true"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int `envconfig:"SERVER_PORT" default:"8080"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"savebucks"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

// GetDSN returns a formatted database connection string
func (c DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

// RedisConfig contains settings for the analytics event sink
type RedisConfig struct {
	Enabled  bool   `envconfig:"REDIS_ENABLED" default:"false"`
	Addr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
	EventKey string `envconfig:"REDIS_EVENT_KEY" default:"search:events"`
}

// CacheConfig contains settings for the search result cache
type CacheConfig struct {
	MaxEntries           int `envconfig:"CACHE_MAX_ENTRIES" default:"1000"`
	DefaultTTLSeconds    int `envconfig:"CACHE_DEFAULT_TTL_SECONDS" default:"300"`
	CleanupIntervalSecs  int `envconfig:"CACHE_CLEANUP_INTERVAL_SECONDS" default:"60"`
	CompressionThreshold int `envconfig:"CACHE_COMPRESSION_THRESHOLD_BYTES" default:"10240"`
}

// DefaultTTL returns the configured TTL as a duration
func (c CacheConfig) DefaultTTL() time.Duration {
	return time.Duration(c.DefaultTTLSeconds) * time.Second
}

// CleanupInterval returns the configured cleanup tick as a duration
func (c CacheConfig) CleanupInterval() time.Duration {
	return time.Duration(c.CleanupIntervalSecs) * time.Second
}

// AnalyticsConfig contains settings for the metrics aggregator
type AnalyticsConfig struct {
	FlushIntervalSecs int `envconfig:"ANALYTICS_FLUSH_INTERVAL_SECONDS" default:"300"`
	TopQueries        int `envconfig:"ANALYTICS_TOP_QUERIES" default:"10"`
}

// FlushInterval returns the configured flush tick as a duration
func (a AnalyticsConfig) FlushInterval() time.Duration {
	return time.Duration(a.FlushIntervalSecs) * time.Second
}

// LoadConfig loads and validates application configuration from environment variables
func LoadConfig() (*Config, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return nil, errors.NewConfigurationError("error processing config", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Cache.Validate(); err != nil {
		return err
	}
	if err := c.Analytics.Validate(); err != nil {
		return err
	}
	return nil
}

// Validate checks server configuration
func (s *ServerConfig) Validate() error {
	if s.Port < 1 || s.Port > 65535 {
		return errors.NewConfigurationError("SERVER_PORT must be between 1 and 65535", nil)
	}
	return nil
}

// Validate checks database configuration
func (d *DatabaseConfig) Validate() error {
	if d.Host == "" {
		return errors.NewConfigurationError("DB_HOST cannot be empty", nil)
	}
	if d.Port < 1 || d.Port > 65535 {
		return errors.NewConfigurationError("DB_PORT must be between 1 and 65535", nil)
	}
	if d.User == "" {
		return errors.NewConfigurationError("DB_USER cannot be empty", nil)
	}
	if d.Name == "" {
		return errors.NewConfigurationError("DB_NAME cannot be empty", nil)
	}
	switch d.SSLMode {
	case "disable", "require", "verify-ca", "verify-full":
		return nil
	}
	return errors.NewConfigurationError("DB_SSL_MODE must be one of: disable, require, verify-ca, verify-full", nil)
}

// Validate checks redis configuration
func (r *RedisConfig) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Addr == "" {
		return errors.NewConfigurationError("REDIS_ADDR cannot be empty when REDIS_ENABLED is true", nil)
	}
	if r.EventKey == "" {
		return errors.NewConfigurationError("REDIS_EVENT_KEY cannot be empty when REDIS_ENABLED is true", nil)
	}
	return nil
}

// Validate checks cache configuration
func (c *CacheConfig) Validate() error {
	if c.MaxEntries < 1 {
		return errors.NewConfigurationError("CACHE_MAX_ENTRIES must be at least 1", nil)
	}
	if c.DefaultTTLSeconds < 1 {
		return errors.NewConfigurationError("CACHE_DEFAULT_TTL_SECONDS must be at least 1", nil)
	}
	if c.CleanupIntervalSecs < 1 {
		return errors.NewConfigurationError("CACHE_CLEANUP_INTERVAL_SECONDS must be at least 1", nil)
	}
	if c.CompressionThreshold < 0 {
		return errors.NewConfigurationError("CACHE_COMPRESSION_THRESHOLD_BYTES cannot be negative", nil)
	}
	return nil
}

// Validate checks analytics configuration
func (a *AnalyticsConfig) Validate() error {
	if a.FlushIntervalSecs < 1 {
		return errors.NewConfigurationError("ANALYTICS_FLUSH_INTERVAL_SECONDS must be at least 1", nil)
	}
	if a.TopQueries < 1 {
		return errors.NewConfigurationError("ANALYTICS_TOP_QUERIES must be at least 1", nil)
	}
	return nil
}
