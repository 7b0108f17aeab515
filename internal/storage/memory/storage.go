package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Storage is an in-memory implementation of the storage interface.
// Stored values are copied on the way in and out so callers never share state.
type Storage struct {
	mu sync.RWMutex

	users     map[string]*model.User
	games     map[model.GameID]*model.Game
	gameOrder []model.GameID
	moves     map[model.GameID][]*model.Move
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		users: make(map[string]*model.User),
		games: make(map[model.GameID]*model.Game),
		moves: make(map[model.GameID][]*model.Move),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Handle]; ok {
		return model.ErrHandleExists
	}
	u := *user
	s.users[user.Handle] = &u
	return nil
}

func (s *Storage) GetUser(ctx context.Context, handle string) (*model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[handle]
	if !ok {
		return nil, model.ErrUserNotFound
	}
	u := *user
	return &u, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; ok {
		return fmt.Errorf("game %s already exists", game.ID)
	}
	s.games[game.ID] = game.Clone()
	s.gameOrder = append(s.gameOrder, game.ID)
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return game.Clone(), nil
}

func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.GameUpdate) (*model.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.games[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}

	// fn works on a copy so a failed update leaves the stored game untouched
	updated := current.Clone()
	move, err := fn(updated)
	if err != nil {
		return nil, err
	}

	s.games[id] = updated
	if move != nil {
		m := *move
		s.moves[id] = append(s.moves[id], &m)
	}
	return updated.Clone(), nil
}

func (s *Storage) ListGamesForUser(ctx context.Context, handle string) ([]*model.Game, error) {
	return s.filterGames(func(g *model.Game) bool {
		return g.IsParticipant(handle)
	}), nil
}

func (s *Storage) ListOpenGames(ctx context.Context) ([]*model.Game, error) {
	return s.filterGames(func(g *model.Game) bool {
		return g.Status == model.GameStatusOpen
	}), nil
}

func (s *Storage) filterGames(keep func(*model.Game) bool) []*model.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	games := []*model.Game{}
	for _, id := range s.gameOrder {
		if g := s.games[id]; keep(g) {
			games = append(games, g.Clone())
		}
	}
	return games
}

// Move history

func (s *Storage) ListMoves(ctx context.Context, id model.GameID) ([]*model.Move, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.games[id]; !ok {
		return nil, model.ErrGameNotFound
	}
	moves := make([]*model.Move, 0, len(s.moves[id]))
	for _, m := range s.moves[id] {
		c := *m
		moves = append(moves, &c)
	}
	return moves, nil
}
