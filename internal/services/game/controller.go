package game

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mcoot/chessgame-go/internal/dependencies/clock"
	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/rules"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Controller runs games in play: board views, moves and history. Games are
// only visible to their participants; anyone else gets ErrGameNotFound.
type Controller struct {
	storage storage.Storage
	engine  rules.Engine
	clock   clock.Clock
	logger  *slog.Logger
	locks   *keyedMutex
}

// BoardView is a participant's view of a game's position
type BoardView struct {
	Game       *model.Game
	FEN        string
	Turn       model.Color
	LegalMoves []string
	IsOver     bool
	Result     *rules.Result // nil unless IsOver
}

// MoveResult reports whether a move was accepted. A rejected move is not an
// error: Success is false, Error says why and nothing was changed.
type MoveResult struct {
	Success bool
	Error   string
	Game    *model.Game
	Move    *model.Move
	Board   *rules.Board
}

// NewController creates a new game Controller
func NewController(
	storage storage.Storage,
	engine rules.Engine,
	clock clock.Clock,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		engine:  engine,
		clock:   clock,
		logger:  logger,
		locks:   newKeyedMutex(),
	}
}

// ListGames returns every game handle plays in, oldest first
func (c *Controller) ListGames(ctx context.Context, handle string) ([]*model.Game, error) {
	return c.storage.ListGamesForUser(ctx, handle)
}

// GetGame returns a game the viewer participates in
func (c *Controller) GetGame(ctx context.Context, id model.GameID, viewer string) (*model.Game, error) {
	game, err := c.storage.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	if !game.IsParticipant(viewer) {
		return nil, model.ErrGameNotFound
	}
	return game, nil
}

// GetBoard evaluates the current position for a participant
func (c *Controller) GetBoard(ctx context.Context, id model.GameID, viewer string) (*BoardView, error) {
	game, err := c.GetGame(ctx, id, viewer)
	if err != nil {
		return nil, err
	}

	board, err := c.engine.Evaluate(game.FEN)
	if err != nil {
		return nil, err
	}

	return &BoardView{
		Game:       game,
		FEN:        board.FEN,
		Turn:       board.Turn,
		LegalMoves: board.LegalMoves,
		IsOver:     board.Over,
		Result:     board.Result,
	}, nil
}

// GetMoves returns the accepted moves of a game in order
func (c *Controller) GetMoves(ctx context.Context, id model.GameID, viewer string) ([]*model.Move, error) {
	if _, err := c.GetGame(ctx, id, viewer); err != nil {
		return nil, err
	}
	return c.storage.ListMoves(ctx, id)
}

// MakeMove plays move for mover. Moves of one game are applied one at a time
// and always against the latest stored position.
func (c *Controller) MakeMove(ctx context.Context, id model.GameID, mover, move string) (*MoveResult, error) {
	unlock := c.locks.Lock(string(id))
	defer unlock()

	var (
		accepted *model.Move
		after    *rules.Board
	)

	game, err := c.storage.UpdateGame(ctx, id, func(g *model.Game) (*model.Move, error) {
		color, ok := g.ColorOf(mover)
		if !ok {
			return nil, model.ErrGameNotFound
		}
		if g.Status != model.GameStatusInProgress {
			return nil, model.ErrGameNotInProgress
		}

		before, err := c.engine.Evaluate(g.FEN)
		if err != nil {
			return nil, err
		}
		if before.Turn != color {
			return nil, model.ErrNotYourTurn
		}

		tr, err := c.engine.Apply(g.FEN, move)
		if err != nil {
			return nil, err
		}

		now := c.clock.Now()
		g.FEN = tr.After.FEN
		g.MoveCount++
		g.UpdatedAt = now
		if tr.After.Over {
			g.Status = model.GameStatusCompleted
			g.Result = tr.After.Result.Outcome
			g.Method = tr.After.Result.Method
			g.CompletedAt = &now
		}

		accepted = &model.Move{
			GameID:    g.ID,
			Number:    g.MoveCount,
			Player:    mover,
			Color:     color,
			UCI:       tr.UCI,
			SAN:       tr.SAN,
			FENAfter:  tr.After.FEN,
			CreatedAt: now,
		}
		after = tr.After
		return accepted, nil
	})
	if err != nil {
		if errors.Is(err, rules.ErrIllegalMove) {
			c.logger.Debug("move rejected",
				slog.String("game_id", string(id)),
				slog.String("handle", mover),
				slog.String("move", move),
			)
			return &MoveResult{Success: false, Error: err.Error()}, nil
		}
		return nil, err
	}

	c.logger.Info("move accepted",
		slog.String("game_id", string(id)),
		slog.String("handle", mover),
		slog.String("uci", accepted.UCI),
		slog.Int("ply", accepted.Number),
	)
	if game.Status == model.GameStatusCompleted {
		c.logger.Info("game completed",
			slog.String("game_id", string(id)),
			slog.String("result", game.Result),
			slog.String("method", game.Method),
		)
	}

	return &MoveResult{
		Success: true,
		Game:    game,
		Move:    accepted,
		Board:   after,
	}, nil
}
