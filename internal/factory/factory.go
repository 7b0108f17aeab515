package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/dependencies/random"
	"github.com/mcoot/chessgame-go/internal/services/auth"
	"github.com/mcoot/chessgame-go/internal/services/game"
	"github.com/mcoot/chessgame-go/internal/services/lobby"
	"github.com/mcoot/chessgame-go/internal/services/rules"
	"github.com/mcoot/chessgame-go/internal/storage"
	"github.com/mcoot/chessgame-go/internal/storage/memory"
	redisstorage "github.com/mcoot/chessgame-go/internal/storage/redis"
	"github.com/mcoot/chessgame-go/internal/storage/sqldb"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
	StorageTypeSQL    = "sql"
)

// ErrTokenSecretRequired is returned when no signing secret is configured
var ErrTokenSecretRequired = errors.New("auth token secret is required")

// App contains all wired application components
type App struct {
	// Storage
	Storage storage.Storage

	// External dependencies
	Clock  clock.Clock
	Random random.Random
	Engine rules.Engine

	// Services
	AuthService     *auth.Service
	LobbyController *lobby.Controller
	GameController  *game.Controller
}

// Config holds configuration for the application factory
type Config struct {
	// AuthConfig holds configuration for the auth service; TokenSecret is required.
	// Zero-valued fields fall back to auth.DefaultConfig()
	AuthConfig auth.Config
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "redis" or "sql")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// SQLConfig holds database settings (required if StorageType is "sql")
	SQLConfig *sqldb.Config
}

// New creates a new application with all dependencies wired
func New(ctx context.Context, cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	if cfg.AuthConfig.TokenSecret == "" {
		return nil, ErrTokenSecretRequired
	}

	store, err := newStorage(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("storage ready", slog.String("type", storageTypeOrDefault(cfg.StorageType)))

	return newWithDependencies(store, clock.New(), random.New(), rules.NewChessEngine(), cfg.AuthConfig, logger), nil
}

func storageTypeOrDefault(t string) string {
	if t == "" {
		return StorageTypeMemory
	}
	return t
}

func newStorage(ctx context.Context, cfg Config) (storage.Storage, error) {
	switch storageTypeOrDefault(cfg.StorageType) {
	case StorageTypeMemory:
		return memory.New(), nil
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		return redisstorage.New(*cfg.RedisConfig)
	case StorageTypeSQL:
		if cfg.SQLConfig == nil {
			return nil, errors.New("SQLConfig required when StorageType is sql")
		}
		return sqldb.New(ctx, *cfg.SQLConfig)
	default:
		return nil, fmt.Errorf("invalid StorageType %q: must be 'memory', 'redis' or 'sql'", cfg.StorageType)
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	engine rules.Engine,
	authCfg auth.Config,
	logger *slog.Logger,
) *App {
	return &App{
		Storage:         store,
		Clock:           clk,
		Random:          rnd,
		Engine:          engine,
		AuthService:     auth.New(store, clk, rnd, authCfg, logger),
		LobbyController: lobby.NewController(store, engine, clk, rnd, logger),
		GameController:  game.NewController(store, engine, clk, logger),
	}
}

// Close releases the storage backend
func (a *App) Close() error {
	return a.Storage.Close()
}
