package sqldb

import (
	"database/sql"
	"time"

	"github.com/mcoot/chessgame-go/internal/model"
)

// Timestamps are stored as unix milliseconds

type userRow struct {
	Handle       string `db:"handle"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    int64  `db:"created_at"`
}

func (r userRow) toModel() *model.User {
	return &model.User{
		Handle:       r.Handle,
		PasswordHash: r.PasswordHash,
		CreatedAt:    fromMillis(r.CreatedAt),
	}
}

const gameColumns = "id, white, black, fen, status, result, method, move_count, created_at, updated_at, completed_at"

type gameRow struct {
	ID          string         `db:"id"`
	White       string         `db:"white"`
	Black       sql.NullString `db:"black"`
	FEN         string         `db:"fen"`
	Status      string         `db:"status"`
	Result      string         `db:"result"`
	Method      string         `db:"method"`
	MoveCount   int            `db:"move_count"`
	CreatedAt   int64          `db:"created_at"`
	UpdatedAt   int64          `db:"updated_at"`
	CompletedAt sql.NullInt64  `db:"completed_at"`
}

func (r gameRow) toModel() *model.Game {
	game := &model.Game{
		ID:        model.GameID(r.ID),
		White:     r.White,
		Black:     r.Black.String,
		FEN:       r.FEN,
		Status:    model.GameStatus(r.Status),
		Result:    r.Result,
		Method:    r.Method,
		MoveCount: r.MoveCount,
		CreatedAt: fromMillis(r.CreatedAt),
		UpdatedAt: fromMillis(r.UpdatedAt),
	}
	if r.CompletedAt.Valid {
		t := fromMillis(r.CompletedAt.Int64)
		game.CompletedAt = &t
	}
	return game
}

const moveColumns = "game_id, number, player, color, uci, san, fen_after, created_at"

type moveRow struct {
	GameID    string `db:"game_id"`
	Number    int    `db:"number"`
	Player    string `db:"player"`
	Color     string `db:"color"`
	UCI       string `db:"uci"`
	SAN       string `db:"san"`
	FENAfter  string `db:"fen_after"`
	CreatedAt int64  `db:"created_at"`
}

func (r moveRow) toModel() *model.Move {
	return &model.Move{
		GameID:    model.GameID(r.GameID),
		Number:    r.Number,
		Player:    r.Player,
		Color:     model.Color(r.Color),
		UCI:       r.UCI,
		SAN:       r.SAN,
		FENAfter:  r.FENAfter,
		CreatedAt: fromMillis(r.CreatedAt),
	}
}

func toMillis(t time.Time) int64 {
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: toMillis(*t), Valid: true}
}
