package model

import "time"

// GameID uniquely identifies a game
type GameID string

// GameStatus is the lifecycle phase of a game. Transitions only move forward.
type GameStatus string

const (
	GameStatusOpen       GameStatus = "open"        // Waiting for an opponent
	GameStatusInProgress GameStatus = "in_progress" // Both seats taken, moves accepted
	GameStatusCompleted  GameStatus = "completed"   // Terminal position reached
)

// Color is a side of the board
type Color string

const (
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// Opposite returns the other side
func (c Color) Opposite() Color {
	if c == ColorWhite {
		return ColorBlack
	}
	return ColorWhite
}

// Game is a single chess game between two users. The position is kept as a FEN
// string and only ever replaced by the rules engine after an accepted move.
type Game struct {
	ID     GameID
	White  string // owner handle
	Black  string // empty until joined
	FEN    string
	Status GameStatus

	// Set once the game completes
	Result      string // PGN result token: "1-0", "0-1" or "1/2-1/2"
	Method      string // e.g. "checkmate", "stalemate"
	CompletedAt *time.Time

	MoveCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsParticipant reports whether the handle holds either seat
func (g *Game) IsParticipant(handle string) bool {
	return handle != "" && (g.White == handle || g.Black == handle)
}

// ColorOf returns the side played by handle, or false if handle is not seated
func (g *Game) ColorOf(handle string) (Color, bool) {
	switch {
	case handle == "":
		return "", false
	case g.White == handle:
		return ColorWhite, true
	case g.Black == handle:
		return ColorBlack, true
	}
	return "", false
}

// Opponent returns the other participant's handle (empty while the game is open)
func (g *Game) Opponent(handle string) string {
	if g.White == handle {
		return g.Black
	}
	return g.White
}

// Clone returns a deep copy
func (g *Game) Clone() *Game {
	c := *g
	if g.CompletedAt != nil {
		t := *g.CompletedAt
		c.CompletedAt = &t
	}
	return &c
}
