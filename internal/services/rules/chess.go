package rules

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/corentings/chess/v2"

	"github.com/mcoot/chessgame-go/internal/model"
)

var uciPattern = regexp.MustCompile(`^[a-h][1-8][a-h][1-8][qrbn]?$`)

// ChessEngine implements Engine with github.com/corentings/chess/v2
type ChessEngine struct {
	startFEN string
}

// Ensure ChessEngine implements Engine
var _ Engine = (*ChessEngine)(nil)

// NewChessEngine creates a new ChessEngine
func NewChessEngine() *ChessEngine {
	return &ChessEngine{startFEN: chess.NewGame().FEN()}
}

// StartingPosition returns the FEN of the standard initial position
func (e *ChessEngine) StartingPosition() string {
	return e.startFEN
}

// Evaluate reports the legal moves and terminal state of a position
func (e *ChessEngine) Evaluate(fen string) (*Board, error) {
	game, err := load(fen)
	if err != nil {
		return nil, err
	}
	return describe(game), nil
}

// Apply plays move on the position. UCI ("e2e4", "e7e8q") and SAN ("e4",
// "Nf3", "O-O", "exd8=Q+") are both accepted.
func (e *ChessEngine) Apply(fen, move string) (*Transition, error) {
	game, err := load(fen)
	if err != nil {
		return nil, err
	}
	if describe(game).Over {
		return nil, fmt.Errorf("%w: game is over", ErrIllegalMove)
	}

	pos := game.Position()
	mv, err := decode(game, strings.TrimSpace(move))
	if err != nil {
		return nil, err
	}

	uci := strings.ToLower(chess.UCINotation{}.Encode(pos, mv))
	san := chess.AlgebraicNotation{}.Encode(pos, mv)
	mover := colorOf(pos.Turn())

	if err := game.Move(mv, nil); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, move)
	}

	return &Transition{
		UCI:   uci,
		SAN:   san,
		Mover: mover,
		After: describe(game),
	}, nil
}

func load(fen string) (*chess.Game, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, err)
	}
	return chess.NewGame(opt), nil
}

// decode resolves text to one of the legal moves in the current position
func decode(game *chess.Game, text string) (*chess.Move, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	pos := game.Position()

	if lower := strings.ToLower(text); uciPattern.MatchString(lower) {
		mv, err := chess.UCINotation{}.Decode(pos, lower)
		if err != nil || !isLegal(game, lower) {
			return nil, fmt.Errorf("%w: %s", ErrIllegalMove, text)
		}
		return mv, nil
	}

	mv, err := chess.AlgebraicNotation{}.Decode(pos, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	if !isLegal(game, strings.ToLower(mv.String())) {
		return nil, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	return mv, nil
}

func isLegal(game *chess.Game, uci string) bool {
	for _, mv := range game.ValidMoves() {
		if mv.String() == uci {
			return true
		}
	}
	return false
}

func describe(game *chess.Game) *Board {
	pos := game.Position()
	valid := game.ValidMoves()

	legal := make([]string, 0, len(valid))
	for _, mv := range valid {
		legal = append(legal, mv.String())
	}
	sort.Strings(legal)

	board := &Board{
		FEN:        game.FEN(),
		Turn:       colorOf(pos.Turn()),
		LegalMoves: legal,
	}
	board.Result = resultOf(game, pos, len(valid) == 0)
	board.Over = board.Result != nil
	// The library still lists moves for drawn positions
	if board.Over {
		board.LegalMoves = []string{}
	}
	return board
}

// resultOf returns nil for a position that is still in play. Positions loaded
// straight from FEN may not carry an outcome yet, so a side with no legal
// moves is resolved from the position status.
func resultOf(game *chess.Game, pos *chess.Position, noMoves bool) *Result {
	switch game.Outcome() {
	case chess.WhiteWon:
		return &Result{Outcome: "1-0", Winner: model.ColorWhite, Method: methodName(game.Method())}
	case chess.BlackWon:
		return &Result{Outcome: "0-1", Winner: model.ColorBlack, Method: methodName(game.Method())}
	case chess.Draw:
		return &Result{Outcome: "1/2-1/2", Method: methodName(game.Method())}
	}

	if !noMoves {
		return nil
	}
	if pos.Status() == chess.Checkmate {
		winner := colorOf(pos.Turn()).Opposite()
		outcome := "1-0"
		if winner == model.ColorBlack {
			outcome = "0-1"
		}
		return &Result{Outcome: outcome, Winner: winner, Method: methodName(chess.Checkmate)}
	}
	return &Result{Outcome: "1/2-1/2", Method: methodName(chess.Stalemate)}
}

func colorOf(c chess.Color) model.Color {
	if c == chess.Black {
		return model.ColorBlack
	}
	return model.ColorWhite
}

// methodName turns "InsufficientMaterial" into "insufficient material"
func methodName(m chess.Method) string {
	var b strings.Builder
	for i, r := range m.String() {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte(' ')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
