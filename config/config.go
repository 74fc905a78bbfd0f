// Package config loads application settings from the environment and an
// optional YAML, TOML or JSON file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// HTTPConfig configures the web server.
type HTTPConfig struct {
	Address      string        `yaml:"address" toml:"address" env:"HTTP_ADDR" env-default:":3000"`
	ReadTimeout  time.Duration `yaml:"read_timeout" toml:"read_timeout" env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout time.Duration `yaml:"write_timeout" toml:"write_timeout" env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
}

// DatabaseConfig configures the GORM connection.
type DatabaseConfig struct {
	Driver string `yaml:"driver" toml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	DSN    string `yaml:"dsn" toml:"dsn" env:"DB_DSN" env-default:"todo.db"`
	Debug  bool   `yaml:"debug" toml:"debug" env:"DB_DEBUG" env-default:"false"`
}

// CacheConfig configures the optional Redis read cache.
// An empty RedisAddr disables the cache.
type CacheConfig struct {
	RedisAddr string        `yaml:"redis_addr" toml:"redis_addr" env:"CACHE_REDIS_ADDR"`
	Prefix    string        `yaml:"prefix" toml:"prefix" env:"CACHE_PREFIX" env-default:"todo:"`
	TTL       time.Duration `yaml:"ttl" toml:"ttl" env:"CACHE_TTL" env-default:"5m"`
}

// SessionConfig configures flash message storage.
// An empty RedisAddr keeps sessions in memory.
type SessionConfig struct {
	RedisAddr  string        `yaml:"redis_addr" toml:"redis_addr" env:"SESSION_REDIS_ADDR"`
	Expiration time.Duration `yaml:"expiration" toml:"expiration" env:"SESSION_EXPIRATION" env-default:"24h"`
}

// Config is the root configuration.
type Config struct {
	LogLevel        string         `yaml:"log_level" toml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	LogFormat       string         `yaml:"log_format" toml:"log_format" env:"LOG_FORMAT" env-default:"text"`
	ShutdownTimeout time.Duration  `yaml:"shutdown_timeout" toml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"30s"`
	ActivityLimit   int            `yaml:"activity_limit" toml:"activity_limit" env:"ACTIVITY_LIMIT" env-default:"20"`
	HTTP            HTTPConfig     `yaml:"http" toml:"http"`
	Database        DatabaseConfig `yaml:"database" toml:"database"`
	Cache           CacheConfig    `yaml:"cache" toml:"cache"`
	Session         SessionConfig  `yaml:"session" toml:"session"`
}

// Load reads the configuration. With an empty path only the environment is
// used. A path that does not exist falls back to the environment as well.
func Load(path string) (Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	if err := cleanenv.ReadConfig(path, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("cannot read config %q: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the application cannot start with.
func (c Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return errors.New("database dsn is required")
	}
	if c.ActivityLimit <= 0 {
		return fmt.Errorf("activity limit must be positive, got %d", c.ActivityLimit)
	}
	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache ttl must be positive, got %s", c.Cache.TTL)
	}
	return nil
}

// Usage returns the description of every environment variable.
func Usage() (string, error) {
	var cfg Config
	return cleanenv.GetDescription(&cfg, nil)
}
