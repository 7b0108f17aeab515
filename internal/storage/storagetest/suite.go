// Package storagetest holds the behaviour every storage backend must share.
// Backends embed Suite and set Storage in their own SetupTest.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

var baseTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// Suite is the shared storage behaviour suite
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) createUsers(handles ...string) {
	for _, h := range handles {
		err := s.Storage.CreateUser(s.Ctx, &model.User{Handle: h, PasswordHash: "hash-" + h, CreatedAt: baseTime})
		s.Require().NoError(err)
	}
}

func (s *Suite) createGame(id model.GameID, white string, offset time.Duration) *model.Game {
	game := &model.Game{
		ID:        id,
		White:     white,
		FEN:       startFEN,
		Status:    model.GameStatusOpen,
		CreatedAt: baseTime.Add(offset),
		UpdatedAt: baseTime.Add(offset),
	}
	s.Require().NoError(s.Storage.CreateGame(s.Ctx, game))
	return game
}

func (s *Suite) join(id model.GameID, black string) {
	_, err := s.Storage.UpdateGame(s.Ctx, id, func(g *model.Game) (*model.Move, error) {
		g.Black = black
		g.Status = model.GameStatusInProgress
		return nil, nil
	})
	s.Require().NoError(err)
}

func gameIDs(games []*model.Game) []model.GameID {
	ids := make([]model.GameID, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}

// User tests

func (s *Suite) TestCreateAndGetUser() {
	s.createUsers("alice")

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("alice", user.Handle)
	s.Equal("hash-alice", user.PasswordHash)
	s.True(baseTime.Equal(user.CreatedAt))
}

func (s *Suite) TestCreateUserDuplicateHandle() {
	s.createUsers("alice")

	err := s.Storage.CreateUser(s.Ctx, &model.User{Handle: "alice", PasswordHash: "other", CreatedAt: baseTime})
	s.ErrorIs(err, model.ErrHandleExists)

	user, err := s.Storage.GetUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal("hash-alice", user.PasswordHash)
}

func (s *Suite) TestGetUserNotFound() {
	_, err := s.Storage.GetUser(s.Ctx, "nobody")
	s.ErrorIs(err, model.ErrUserNotFound)
}

// Game tests

func (s *Suite) TestCreateAndGetGame() {
	s.createUsers("alice")
	s.createGame("game-1", "alice", 0)

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameID("game-1"), game.ID)
	s.Equal("alice", game.White)
	s.Empty(game.Black)
	s.Equal(startFEN, game.FEN)
	s.Equal(model.GameStatusOpen, game.Status)
	s.Empty(game.Result)
	s.Nil(game.CompletedAt)
	s.Equal(0, game.MoveCount)
	s.True(baseTime.Equal(game.CreatedAt))
}

func (s *Suite) TestGetGameNotFound() {
	_, err := s.Storage.GetGame(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestUpdateGamePersistsGameAndMove() {
	s.createUsers("alice", "bob")
	s.createGame("game-1", "alice", 0)
	s.join("game-1", "bob")

	after := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1"
	updated, err := s.Storage.UpdateGame(s.Ctx, "game-1", func(g *model.Game) (*model.Move, error) {
		g.FEN = after
		g.MoveCount++
		g.UpdatedAt = baseTime.Add(time.Minute)
		return &model.Move{
			GameID:    g.ID,
			Number:    g.MoveCount,
			Player:    "alice",
			Color:     model.ColorWhite,
			UCI:       "e2e4",
			SAN:       "e4",
			FENAfter:  after,
			CreatedAt: baseTime.Add(time.Minute),
		}, nil
	})
	s.Require().NoError(err)
	s.Equal(after, updated.FEN)

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(after, game.FEN)
	s.Equal(1, game.MoveCount)
	s.Equal("bob", game.Black)
	s.Equal(model.GameStatusInProgress, game.Status)

	moves, err := s.Storage.ListMoves(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(moves, 1)
	s.Equal(1, moves[0].Number)
	s.Equal("alice", moves[0].Player)
	s.Equal(model.ColorWhite, moves[0].Color)
	s.Equal("e2e4", moves[0].UCI)
	s.Equal("e4", moves[0].SAN)
	s.Equal(after, moves[0].FENAfter)
}

func (s *Suite) TestUpdateGameCompletion() {
	s.createUsers("alice", "bob")
	s.createGame("game-1", "alice", 0)
	s.join("game-1", "bob")

	completedAt := baseTime.Add(time.Hour)
	_, err := s.Storage.UpdateGame(s.Ctx, "game-1", func(g *model.Game) (*model.Move, error) {
		g.Status = model.GameStatusCompleted
		g.Result = "0-1"
		g.Method = "checkmate"
		g.CompletedAt = &completedAt
		return nil, nil
	})
	s.Require().NoError(err)

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(model.GameStatusCompleted, game.Status)
	s.Equal("0-1", game.Result)
	s.Equal("checkmate", game.Method)
	s.Require().NotNil(game.CompletedAt)
	s.True(completedAt.Equal(*game.CompletedAt))
}

func (s *Suite) TestUpdateGameErrorLeavesGameUntouched() {
	s.createUsers("alice")
	s.createGame("game-1", "alice", 0)

	rejected := errors.New("rejected")
	_, err := s.Storage.UpdateGame(s.Ctx, "game-1", func(g *model.Game) (*model.Move, error) {
		g.FEN = "8/8/8/8/8/8/8/8 w - - 0 1"
		g.Status = model.GameStatusCompleted
		return nil, rejected
	})
	s.ErrorIs(err, rejected)

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(startFEN, game.FEN)
	s.Equal(model.GameStatusOpen, game.Status)
}

func (s *Suite) TestUpdateGameNotFound() {
	called := false
	_, err := s.Storage.UpdateGame(s.Ctx, "missing", func(g *model.Game) (*model.Move, error) {
		called = true
		return nil, nil
	})
	s.ErrorIs(err, model.ErrGameNotFound)
	s.False(called)
}

func (s *Suite) TestConcurrentUpdatesAreSerialised() {
	s.createUsers("alice")
	s.createGame("game-1", "alice", 0)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Storage.UpdateGame(s.Ctx, "game-1", func(g *model.Game) (*model.Move, error) {
				g.MoveCount++
				return nil, nil
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		s.NoError(err)
	}

	game, err := s.Storage.GetGame(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Equal(writers, game.MoveCount)
}

func (s *Suite) TestListGamesForUser() {
	s.createUsers("alice", "bob", "carol")
	s.createGame("g1", "alice", 0)
	s.createGame("g2", "bob", time.Second)
	s.createGame("g3", "carol", 2*time.Second)
	s.createGame("g4", "alice", 3*time.Second)
	s.join("g2", "alice")
	s.join("g3", "bob")

	games, err := s.Storage.ListGamesForUser(s.Ctx, "alice")
	s.Require().NoError(err)
	s.Equal([]model.GameID{"g1", "g2", "g4"}, gameIDs(games))

	games, err = s.Storage.ListGamesForUser(s.Ctx, "bob")
	s.Require().NoError(err)
	s.Equal([]model.GameID{"g2", "g3"}, gameIDs(games))

	games, err = s.Storage.ListGamesForUser(s.Ctx, "nobody")
	s.Require().NoError(err)
	s.Empty(games)
}

func (s *Suite) TestListOpenGames() {
	s.createUsers("alice", "bob")
	for i := 0; i < 4; i++ {
		s.createGame(model.GameID(fmt.Sprintf("g%d", i)), "alice", time.Duration(i)*time.Second)
	}
	s.join("g1", "bob")

	games, err := s.Storage.ListOpenGames(s.Ctx)
	s.Require().NoError(err)
	s.Equal([]model.GameID{"g0", "g2", "g3"}, gameIDs(games))
	for _, g := range games {
		s.Equal(model.GameStatusOpen, g.Status)
	}
}

func (s *Suite) TestListMovesInOrder() {
	s.createUsers("alice", "bob")
	s.createGame("game-1", "alice", 0)
	s.join("game-1", "bob")

	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		color := model.ColorWhite
		if i%2 == 1 {
			color = model.ColorBlack
		}
		_, err := s.Storage.UpdateGame(s.Ctx, "game-1", func(g *model.Game) (*model.Move, error) {
			g.MoveCount++
			return &model.Move{GameID: g.ID, Number: g.MoveCount, Color: color, UCI: uci, CreatedAt: baseTime}, nil
		})
		s.Require().NoError(err)
	}

	moves, err := s.Storage.ListMoves(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Require().Len(moves, 3)
	for i, uci := range []string{"e2e4", "e7e5", "g1f3"} {
		s.Equal(i+1, moves[i].Number)
		s.Equal(uci, moves[i].UCI)
	}
}

func (s *Suite) TestListMovesEmptyAndMissing() {
	s.createUsers("alice")
	s.createGame("game-1", "alice", 0)

	moves, err := s.Storage.ListMoves(s.Ctx, "game-1")
	s.Require().NoError(err)
	s.Empty(moves)

	_, err = s.Storage.ListMoves(s.Ctx, "missing")
	s.ErrorIs(err, model.ErrGameNotFound)
}
