package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/chessgame-go/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

type ChessEngineSuite struct {
	suite.Suite
	engine *ChessEngine
}

func TestChessEngineSuite(t *testing.T) {
	suite.Run(t, new(ChessEngineSuite))
}

func (s *ChessEngineSuite) SetupTest() {
	s.engine = NewChessEngine()
}

// placement returns the piece placement and side-to-move fields of a FEN
func placement(fen string) string {
	fields := strings.Fields(fen)
	return fields[0] + " " + fields[1]
}

func (s *ChessEngineSuite) play(moves ...string) *Transition {
	fen := s.engine.StartingPosition()
	var tr *Transition
	for _, mv := range moves {
		var err error
		tr, err = s.engine.Apply(fen, mv)
		s.Require().NoError(err, "move %s", mv)
		fen = tr.After.FEN
	}
	return tr
}

func (s *ChessEngineSuite) TestStartingPosition() {
	s.Equal(startFEN, s.engine.StartingPosition())

	board, err := s.engine.Evaluate(startFEN)
	s.Require().NoError(err)
	s.Len(board.LegalMoves, 20)
	s.Contains(board.LegalMoves, "e2e4")
	s.Contains(board.LegalMoves, "g1f3")
	s.Equal(model.ColorWhite, board.Turn)
	s.False(board.Over)
	s.Nil(board.Result)
}

func (s *ChessEngineSuite) TestLegalMovesAreSorted() {
	board, err := s.engine.Evaluate(startFEN)
	s.Require().NoError(err)
	s.IsIncreasing(board.LegalMoves)
}

func (s *ChessEngineSuite) TestApplyUCI() {
	tr, err := s.engine.Apply(startFEN, "e2e4")
	s.Require().NoError(err)
	s.Equal("e2e4", tr.UCI)
	s.Equal("e4", tr.SAN)
	s.Equal(model.ColorWhite, tr.Mover)
	s.Equal("rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b", placement(tr.After.FEN))
	s.Equal(model.ColorBlack, tr.After.Turn)
	s.False(tr.After.Over)
}

func (s *ChessEngineSuite) TestApplyUCIIsCaseInsensitive() {
	tr, err := s.engine.Apply(startFEN, "E2E4")
	s.Require().NoError(err)
	s.Equal("e2e4", tr.UCI)
}

func (s *ChessEngineSuite) TestApplySAN() {
	tr, err := s.engine.Apply(startFEN, "Nf3")
	s.Require().NoError(err)
	s.Equal("g1f3", tr.UCI)
	s.Equal("Nf3", tr.SAN)
	s.Equal("rnbqkbnr/pppppppp/8/8/8/5N2/PPPPPPPP/RNBQKB1R b", placement(tr.After.FEN))
}

func (s *ChessEngineSuite) TestApplyRejectsIllegalMoves() {
	tests := []struct {
		name string
		move string
	}{
		{name: "empty", move: ""},
		{name: "whitespace", move: "   "},
		{name: "garbage", move: "hello"},
		{name: "pawn too far", move: "e2e5"},
		{name: "wrong side", move: "e7e5"},
		{name: "illegal SAN", move: "Ke2"},
		{name: "empty square", move: "e3e4"},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.engine.Apply(startFEN, tt.move)
			s.ErrorIs(err, ErrIllegalMove)
		})
	}
}

func (s *ChessEngineSuite) TestInvalidPosition() {
	_, err := s.engine.Evaluate("not a fen")
	s.ErrorIs(err, ErrInvalidPosition)

	_, err = s.engine.Apply("not a fen", "e2e4")
	s.ErrorIs(err, ErrInvalidPosition)
}

func (s *ChessEngineSuite) TestCheckmate() {
	tr := s.play("f2f3", "e7e5", "g2g4", "d8h4")

	s.Equal(model.ColorBlack, tr.Mover)
	s.True(strings.HasPrefix(tr.SAN, "Qh4"))
	s.True(tr.After.Over)
	s.Empty(tr.After.LegalMoves)
	s.Require().NotNil(tr.After.Result)
	s.Equal("0-1", tr.After.Result.Outcome)
	s.Equal(model.ColorBlack, tr.After.Result.Winner)
	s.Equal("checkmate", tr.After.Result.Method)

	_, err := s.engine.Apply(tr.After.FEN, "e2e4")
	s.ErrorIs(err, ErrIllegalMove)
}

func (s *ChessEngineSuite) TestMixedNotationGame() {
	tr := s.play("e4", "e7e5", "Nf3", "b8c6", "Bb5")
	s.Equal("f1b5", tr.UCI)
	s.Equal("Bb5", tr.SAN)
}

func (s *ChessEngineSuite) TestStalemateFromPosition() {
	board, err := s.engine.Evaluate("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	s.Require().NoError(err)
	s.True(board.Over)
	s.Empty(board.LegalMoves)
	s.Require().NotNil(board.Result)
	s.Equal("1/2-1/2", board.Result.Outcome)
	s.Empty(board.Result.Winner)
	s.Equal("stalemate", board.Result.Method)
}

func (s *ChessEngineSuite) TestCheckmateFromPosition() {
	// Back-rank mate, black to move
	board, err := s.engine.Evaluate("R5k1/5ppp/8/8/8/8/8/6K1 b - - 0 1")
	s.Require().NoError(err)
	s.True(board.Over)
	s.Require().NotNil(board.Result)
	s.Equal("1-0", board.Result.Outcome)
	s.Equal(model.ColorWhite, board.Result.Winner)
	s.Equal("checkmate", board.Result.Method)
}

func (s *ChessEngineSuite) TestPromotion() {
	fen := "8/P6k/8/8/8/8/8/K7 w - - 0 1"

	tr, err := s.engine.Apply(fen, "a7a8q")
	s.Require().NoError(err)
	s.Equal("a7a8q", tr.UCI)
	s.True(strings.HasPrefix(tr.After.FEN, "Q7/"))

	tr, err = s.engine.Apply(fen, "a8=N")
	s.Require().NoError(err)
	s.Equal("a7a8n", tr.UCI)
	s.True(strings.HasPrefix(tr.After.FEN, "N7/"))
}

func (s *ChessEngineSuite) TestInsufficientMaterialAfterMove() {
	tr, err := s.engine.Apply("8/P6k/8/8/8/8/8/K7 w - - 0 1", "a8=N")
	s.Require().NoError(err)

	s.True(tr.After.Over)
	s.NotNil(tr.After.LegalMoves)
	s.Empty(tr.After.LegalMoves)
	s.Require().NotNil(tr.After.Result)
	s.Equal("1/2-1/2", tr.After.Result.Outcome)
	s.Equal("insufficient material", tr.After.Result.Method)

	_, err = s.engine.Apply(tr.After.FEN, "h7g6")
	s.ErrorIs(err, ErrIllegalMove)
}

func (s *ChessEngineSuite) TestBareKingsFromPosition() {
	board, err := s.engine.Evaluate("8/7k/8/8/8/8/8/K7 w - - 0 1")
	s.Require().NoError(err)
	s.True(board.Over)
	s.Empty(board.LegalMoves)
	s.Require().NotNil(board.Result)
	s.Equal("1/2-1/2", board.Result.Outcome)
}

func (s *ChessEngineSuite) TestSeventyFiveMoveRuleFromPosition() {
	board, err := s.engine.Evaluate("4k3/8/8/8/8/8/8/R3K3 w - - 150 120")
	s.Require().NoError(err)
	s.True(board.Over)
	s.Empty(board.LegalMoves)
	s.Require().NotNil(board.Result)
	s.Equal("1/2-1/2", board.Result.Outcome)
	s.Equal("seventy five move rule", board.Result.Method)
}
