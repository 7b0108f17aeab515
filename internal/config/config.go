package config

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/mcoot/chessgame-go/internal/api"
	"github.com/mcoot/chessgame-go/internal/factory"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	redisstorage "github.com/mcoot/chessgame-go/internal/storage/redis"
	"github.com/mcoot/chessgame-go/internal/storage/sqldb"
)

// Config is the server configuration read from the environment
type Config struct {
	Host string `env:"CHESS_HOST"`
	Port int    `env:"CHESS_PORT" envDefault:"8080"`

	StorageType string `env:"STORAGE_TYPE" envDefault:"memory"`
	RedisURL    string `env:"REDIS_URL"`
	DatabaseURL string `env:"DATABASE_URL"`

	TokenSecret string        `env:"TOKEN_SECRET,required,notEmpty"`
	TokenTTL    time.Duration `env:"TOKEN_TTL" envDefault:"24h"`
	TokenIssuer string        `env:"TOKEN_ISSUER" envDefault:"chessgame"`

	CORSAllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	AuthRateLimit      float64  `env:"AUTH_RATE_LIMIT" envDefault:"1"`
	AuthRateBurst      int      `env:"AUTH_RATE_BURST" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses and validates the configuration from environment variables
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks settings that depend on each other
func (c Config) Validate() error {
	var errs []error

	if c.Port < 1 || c.Port > 65535 {
		errs = append(errs, fmt.Errorf("CHESS_PORT %d out of range", c.Port))
	}

	switch c.StorageType {
	case factory.StorageTypeMemory:
	case factory.StorageTypeRedis:
		if c.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL required when STORAGE_TYPE=redis"))
		}
	case factory.StorageTypeSQL:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL required when STORAGE_TYPE=sql"))
		} else if _, _, err := sqldb.ParseURL(c.DatabaseURL); err != nil {
			errs = append(errs, fmt.Errorf("DATABASE_URL: %w", err))
		}
	default:
		errs = append(errs, fmt.Errorf("STORAGE_TYPE %q must be memory, redis or sql", c.StorageType))
	}

	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.AuthRateLimit < 0 || c.AuthRateBurst < 0 {
		errs = append(errs, errors.New("AUTH_RATE_LIMIT and AUTH_RATE_BURST must not be negative"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// SlogLevel parses LOG_LEVEL (debug, info, warn, error)
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

// Factory returns the wiring configuration for the application factory
func (c Config) Factory(logger *slog.Logger) factory.Config {
	authCfg := auth.DefaultConfig()
	authCfg.TokenSecret = c.TokenSecret
	authCfg.TokenTTL = c.TokenTTL
	authCfg.Issuer = c.TokenIssuer

	cfg := factory.Config{
		AuthConfig:  authCfg,
		Logger:      logger,
		StorageType: c.StorageType,
	}

	switch c.StorageType {
	case factory.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		cfg.RedisConfig = &redisCfg
	case factory.StorageTypeSQL:
		sqlCfg := sqldb.DefaultConfig()
		sqlCfg.URL = c.DatabaseURL
		cfg.SQLConfig = &sqlCfg
	}

	return cfg
}

// Server returns the HTTP server configuration
func (c Config) Server() api.ServerConfig {
	cfg := api.DefaultServerConfig()
	cfg.Host = c.Host
	cfg.Port = c.Port
	return cfg
}
