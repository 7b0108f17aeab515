package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// Storage is a SQL implementation of the storage interface backed by
// PostgreSQL or SQLite
type Storage struct {
	db     *sqlx.DB
	driver string
}

// New connects to the database named by cfg.URL and applies migrations
func New(ctx context.Context, cfg Config) (*Storage, error) {
	driver, dsn, err := ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	if err := Migrate(driver, dsn); err != nil {
		return nil, err
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if driver == DriverSQLite {
		// SQLite allows a single writer; one connection avoids SQLITE_BUSY
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxIdleConns)
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return NewWithDB(db), nil
}

// NewWithDB wraps an existing connection whose schema is already in place
func NewWithDB(db *sqlx.DB) *Storage {
	return &Storage{db: db, driver: db.DriverName()}
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO users (handle, password_hash, created_at) VALUES (?, ?, ?) ON CONFLICT (handle) DO NOTHING`),
		user.Handle, user.PasswordHash, toMillis(user.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if n == 0 {
		return model.ErrHandleExists
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, handle string) (*model.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(
		`SELECT handle, password_hash, created_at FROM users WHERE handle = ?`), handle)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return row.toModel(), nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(
		`INSERT INTO games (`+gameColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		string(game.ID), game.White, nullString(game.Black), game.FEN, string(game.Status),
		game.Result, game.Method, game.MoveCount,
		toMillis(game.CreatedAt), toMillis(game.UpdatedAt), nullMillis(game.CompletedAt))
	if err != nil {
		return fmt.Errorf("insert game: %w", err)
	}
	return nil
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	var row gameRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(`SELECT `+gameColumns+` FROM games WHERE id = ?`), string(id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("get game: %w", err)
	}
	return row.toModel(), nil
}

// UpdateGame locks the game row for the duration of a transaction. PostgreSQL
// takes a row lock; SQLite already serialises writers.
func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.GameUpdate) (*model.Game, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	query := `SELECT ` + gameColumns + ` FROM games WHERE id = ?`
	if s.driver == DriverPostgres {
		query += ` FOR UPDATE`
	}

	var row gameRow
	if err := tx.GetContext(ctx, &row, tx.Rebind(query), string(id)); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrGameNotFound
		}
		return nil, fmt.Errorf("load game: %w", err)
	}

	game := row.toModel()
	move, err := fn(game)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, tx.Rebind(
		`UPDATE games SET black = ?, fen = ?, status = ?, result = ?, method = ?, move_count = ?,
			updated_at = ?, completed_at = ? WHERE id = ?`),
		nullString(game.Black), game.FEN, string(game.Status), game.Result, game.Method, game.MoveCount,
		toMillis(game.UpdatedAt), nullMillis(game.CompletedAt), string(id))
	if err != nil {
		return nil, fmt.Errorf("update game: %w", err)
	}

	if move != nil {
		_, err = tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO moves (`+moveColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			string(id), move.Number, move.Player, string(move.Color), move.UCI, move.SAN,
			move.FENAfter, toMillis(move.CreatedAt))
		if err != nil {
			return nil, fmt.Errorf("insert move: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return game, nil
}

func (s *Storage) ListGamesForUser(ctx context.Context, handle string) ([]*model.Game, error) {
	return s.selectGames(ctx, `SELECT `+gameColumns+` FROM games WHERE white = ? OR black = ? ORDER BY seq`, handle, handle)
}

func (s *Storage) ListOpenGames(ctx context.Context) ([]*model.Game, error) {
	return s.selectGames(ctx, `SELECT `+gameColumns+` FROM games WHERE status = ? ORDER BY seq`, string(model.GameStatusOpen))
}

func (s *Storage) selectGames(ctx context.Context, query string, args ...any) ([]*model.Game, error) {
	var rows []gameRow
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	games := make([]*model.Game, 0, len(rows))
	for _, r := range rows {
		games = append(games, r.toModel())
	}
	return games, nil
}

// Move history

func (s *Storage) ListMoves(ctx context.Context, id model.GameID) ([]*model.Move, error) {
	if _, err := s.GetGame(ctx, id); err != nil {
		return nil, err
	}

	var rows []moveRow
	err := s.db.SelectContext(ctx, &rows, s.db.Rebind(
		`SELECT `+moveColumns+` FROM moves WHERE game_id = ? ORDER BY number`), string(id))
	if err != nil {
		return nil, fmt.Errorf("list moves: %w", err)
	}
	moves := make([]*model.Move, 0, len(rows))
	for _, r := range rows {
		moves = append(moves, r.toModel())
	}
	return moves, nil
}
