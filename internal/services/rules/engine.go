// Package rules delegates everything chess-specific (legal moves, notation,
// check, mate and draws) to a rules engine working purely on FEN strings.
package rules

import (
	"errors"

	"github.com/mcoot/chessgame-go/internal/model"
)

var (
	// ErrIllegalMove is returned for malformed, ambiguous or illegal moves
	ErrIllegalMove = errors.New("illegal move")

	// ErrInvalidPosition is returned when a FEN string cannot be parsed
	ErrInvalidPosition = errors.New("invalid position")
)

// Engine evaluates positions and applies moves
type Engine interface {
	// StartingPosition returns the FEN of the standard initial position
	StartingPosition() string

	// Evaluate reports the legal moves and terminal state of a position
	Evaluate(fen string) (*Board, error)

	// Apply plays move (UCI or SAN) on the position
	Apply(fen, move string) (*Transition, error)
}

// Board describes a position
type Board struct {
	FEN        string
	Turn       model.Color
	LegalMoves []string // UCI, sorted
	Over       bool
	Result     *Result // nil unless Over
}

// Result describes how a finished game ended
type Result struct {
	Outcome string      // "1-0", "0-1" or "1/2-1/2"
	Winner  model.Color // empty for a draw
	Method  string      // e.g. "checkmate", "stalemate"
}

// Transition is the outcome of an accepted move
type Transition struct {
	UCI   string
	SAN   string
	Mover model.Color
	After *Board
}
