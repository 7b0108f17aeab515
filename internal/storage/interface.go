package storage

import (
	"context"

	"github.com/mcoot/chessgame-go/internal/model"
)

// GameUpdate mutates a freshly loaded game inside UpdateGame. Returning a
// non-nil move appends it to the game's history in the same write. Returning an
// error aborts the update and nothing is persisted.
type GameUpdate func(game *model.Game) (*model.Move, error)

// Storage defines the interface for data persistence
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error // ErrHandleExists on duplicate
	GetUser(ctx context.Context, handle string) (*model.User, error)

	// Game operations
	CreateGame(ctx context.Context, game *model.Game) error
	GetGame(ctx context.Context, id model.GameID) (*model.Game, error)
	// UpdateGame atomically applies fn to the current stored game and persists
	// the result. Concurrent updates of the same game are serialised.
	UpdateGame(ctx context.Context, id model.GameID, fn GameUpdate) (*model.Game, error)
	// ListGamesForUser returns games where handle holds either seat, oldest first
	ListGamesForUser(ctx context.Context, handle string) ([]*model.Game, error)
	// ListOpenGames returns games with status open, oldest first
	ListOpenGames(ctx context.Context) ([]*model.Game, error)

	// Move history
	ListMoves(ctx context.Context, id model.GameID) ([]*model.Move, error)

	Close() error
}
