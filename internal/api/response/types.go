package response

import (
	"time"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/services/game"
	"github.com/mcoot/chessgame-go/internal/services/rules"
)

// Message is a plain acknowledgement
type Message struct {
	Message string `json:"message"`
}

// LoginResponse carries a session token
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MeResponse describes the authenticated user
type MeResponse struct {
	Handle    string    `json:"handle"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GameCreated is the response to /new_game
type GameCreated struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

// OpenGame is an entry of /open_games
type OpenGame struct {
	GameID    string    `json:"gameId"`
	White     string    `json:"white"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenGamesFromModel converts open games
func OpenGamesFromModel(games []*model.Game) []OpenGame {
	out := make([]OpenGame, len(games))
	for i, g := range games {
		out[i] = OpenGame{GameID: string(g.ID), White: g.White, CreatedAt: g.CreatedAt}
	}
	return out
}

// GameSummary is an entry of /get_games
type GameSummary struct {
	GameID    string    `json:"gameId"`
	White     string    `json:"white"`
	Black     *string   `json:"black"`
	Status    string    `json:"status"`
	Color     string    `json:"color"`
	Opponent  *string   `json:"opponent"`
	Result    string    `json:"result,omitempty"`
	MoveCount int       `json:"moveCount"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// GameSummariesFromModel converts viewer's games; opponent is null while a
// game is still open
func GameSummariesFromModel(viewer string, games []*model.Game) []GameSummary {
	out := make([]GameSummary, len(games))
	for i, g := range games {
		var black *string
		if g.Black != "" {
			b := g.Black
			black = &b
		}
		var opponent *string
		if o := g.Opponent(viewer); o != "" {
			opponent = &o
		}
		color, _ := g.ColorOf(viewer)
		out[i] = GameSummary{
			GameID:    string(g.ID),
			White:     g.White,
			Black:     black,
			Status:    string(g.Status),
			Color:     string(color),
			Opponent:  opponent,
			Result:    g.Result,
			MoveCount: g.MoveCount,
			UpdatedAt: g.UpdatedAt,
		}
	}
	return out
}

// Result describes how a finished game ended
type Result struct {
	Outcome string `json:"outcome"`
	Winner  string `json:"winner,omitempty"`
	Method  string `json:"method"`
}

// ResultFromRules converts a rules result; nil stays nil
func ResultFromRules(r *rules.Result) *Result {
	if r == nil {
		return nil
	}
	return &Result{Outcome: r.Outcome, Winner: string(r.Winner), Method: r.Method}
}

// Board is the response to /get_board
type Board struct {
	GameID     string   `json:"gameId"`
	Position   string   `json:"position"`
	LegalMoves []string `json:"legalMoves"`
	IsOver     bool     `json:"isOver"`
	Result     *Result  `json:"result"`
	Status     string   `json:"status"`
	Turn       string   `json:"turn"`
	White      string   `json:"white"`
	Black      *string  `json:"black"`
	MoveCount  int      `json:"moveCount"`
}

// BoardFromView converts a participant's board view
func BoardFromView(v *game.BoardView) Board {
	var black *string
	if v.Game.Black != "" {
		b := v.Game.Black
		black = &b
	}
	legal := v.LegalMoves
	if legal == nil {
		legal = []string{}
	}
	return Board{
		GameID:     string(v.Game.ID),
		Position:   v.FEN,
		LegalMoves: legal,
		IsOver:     v.IsOver,
		Result:     ResultFromRules(v.Result),
		Status:     string(v.Game.Status),
		Turn:       string(v.Turn),
		White:      v.Game.White,
		Black:      black,
		MoveCount:  v.Game.MoveCount,
	}
}

// MoveResponse is the response to /make_move
type MoveResponse struct {
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
	Position string  `json:"position,omitempty"`
	Status   string  `json:"status,omitempty"`
	UCI      string  `json:"uci,omitempty"`
	SAN      string  `json:"san,omitempty"`
	IsOver   bool    `json:"isOver,omitempty"`
	Result   *Result `json:"result,omitempty"`
}

// MoveResponseFromResult converts a move result
func MoveResponseFromResult(r *game.MoveResult) MoveResponse {
	if !r.Success {
		return MoveResponse{Success: false, Error: r.Error}
	}
	return MoveResponse{
		Success:  true,
		Position: r.Game.FEN,
		Status:   string(r.Game.Status),
		UCI:      r.Move.UCI,
		SAN:      r.Move.SAN,
		IsOver:   r.Board.Over,
		Result:   ResultFromRules(r.Board.Result),
	}
}

// Move is an entry of /moves/{gameId}
type Move struct {
	Number    int       `json:"number"`
	Player    string    `json:"player"`
	Color     string    `json:"color"`
	UCI       string    `json:"uci"`
	SAN       string    `json:"san"`
	FENAfter  string    `json:"fenAfter"`
	CreatedAt time.Time `json:"createdAt"`
}

// MovesFromModel converts a move history
func MovesFromModel(moves []*model.Move) []Move {
	out := make([]Move, len(moves))
	for i, m := range moves {
		out[i] = Move{
			Number:    m.Number,
			Player:    m.Player,
			Color:     string(m.Color),
			UCI:       m.UCI,
			SAN:       m.SAN,
			FENAfter:  m.FENAfter,
			CreatedAt: m.CreatedAt,
		}
	}
	return out
}
