package lobby

import (
	"context"
	"log/slog"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/dependencies/random"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/rules"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Controller handles game creation and seating: open games waiting for an
// opponent and the join transition into play
type Controller struct {
	storage storage.Storage
	engine  rules.Engine
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new lobby Controller
func NewController(
	storage storage.Storage,
	engine rules.Engine,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		engine:  engine,
		clock:   clock,
		random:  random,
		logger:  logger,
	}
}

// CreateGame opens a new game with owner playing white
func (c *Controller) CreateGame(ctx context.Context, owner string) (*model.Game, error) {
	// The token may outlive the account it was issued for
	if _, err := c.storage.GetUser(ctx, owner); err != nil {
		return nil, err
	}

	now := c.clock.Now()
	game := &model.Game{
		ID:        model.GameID(c.random.UUID()),
		White:     owner,
		FEN:       c.engine.StartingPosition(),
		Status:    model.GameStatusOpen,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := c.storage.CreateGame(ctx, game); err != nil {
		c.logger.Error("failed to save game",
			slog.String("game_id", string(game.ID)),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	c.logger.Info("game created",
		slog.String("game_id", string(game.ID)),
		slog.String("white", owner),
	)

	return game, nil
}

// ListOpenGames returns games awaiting an opponent, excluding the requester's own
func (c *Controller) ListOpenGames(ctx context.Context, requester string) ([]*model.Game, error) {
	games, err := c.storage.ListOpenGames(ctx)
	if err != nil {
		return nil, err
	}

	open := make([]*model.Game, 0, len(games))
	for _, g := range games {
		if g.White != requester {
			open = append(open, g)
		}
	}
	return open, nil
}

// JoinGame seats joiner as black and starts the game. Joining your own game
// is rejected whatever its status.
func (c *Controller) JoinGame(ctx context.Context, id model.GameID, joiner string) (*model.Game, error) {
	if _, err := c.storage.GetUser(ctx, joiner); err != nil {
		return nil, err
	}

	game, err := c.storage.UpdateGame(ctx, id, func(g *model.Game) (*model.Move, error) {
		if g.White == joiner {
			return nil, model.ErrOwnGame
		}
		if g.Status != model.GameStatusOpen {
			return nil, model.ErrGameNotOpen
		}
		g.Black = joiner
		g.Status = model.GameStatusInProgress
		g.UpdatedAt = c.clock.Now()
		return nil, nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Info("game joined",
		slog.String("game_id", string(id)),
		slog.String("white", game.White),
		slog.String("black", joiner),
	)

	return game, nil
}
