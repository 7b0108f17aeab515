package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	w      io.Writer
	format string
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(w io.Writer, format string) *Output {
	return &Output{w: w, format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case MessageResult:
		o.printf("%s\n", v.Message)
	case LoginResult:
		o.printf("Logged in. Token expires %s\n", v.ExpiresAt.Local().Format(time.RFC1123))
	case MeResult:
		o.printf("Handle: %s\nToken expires: %s\n", v.Handle, v.ExpiresAt.Local().Format(time.RFC1123))
	case GameCreated:
		o.printf("%s\nGame: %s\n", v.Message, v.GameID)
	case OpenGames:
		o.printOpenGames(v)
	case GameSummaries:
		o.printGameSummaries(v)
	case Board:
		o.printBoard(v)
	case MoveResult:
		o.printMoveResult(v)
	case Moves:
		o.printMoves(v)
	case HealthResult:
		o.printf("Status: %s\n", v.Status)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// MessageResult is a plain acknowledgement
type MessageResult struct {
	Message string `json:"message"`
}

// LoginResult response type
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// MeResult response type
type MeResult struct {
	Handle    string    `json:"handle"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// GameCreated response type
type GameCreated struct {
	GameID  string `json:"gameId"`
	Message string `json:"message"`
}

// OpenGame response type
type OpenGame struct {
	GameID    string    `json:"gameId"`
	White     string    `json:"white"`
	CreatedAt time.Time `json:"createdAt"`
}

// OpenGames is the /open_games listing
type OpenGames []OpenGame

// GameSummary response type
type GameSummary struct {
	GameID    string  `json:"gameId"`
	White     string  `json:"white"`
	Black     *string `json:"black"`
	Status    string  `json:"status"`
	Color     string  `json:"color"`
	Opponent  *string `json:"opponent"`
	Result    string  `json:"result,omitempty"`
	MoveCount int     `json:"moveCount"`
}

// GameSummaries is the /get_games listing
type GameSummaries []GameSummary

// Result describes how a finished game ended
type Result struct {
	Outcome string `json:"outcome"`
	Winner  string `json:"winner,omitempty"`
	Method  string `json:"method"`
}

// Board response type
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

// MoveResult response type
type MoveResult struct {
	Success  bool    `json:"success"`
	Error    string  `json:"error,omitempty"`
	Position string  `json:"position,omitempty"`
	Status   string  `json:"status,omitempty"`
	UCI      string  `json:"uci,omitempty"`
	SAN      string  `json:"san,omitempty"`
	IsOver   bool    `json:"isOver,omitempty"`
	Result   *Result `json:"result,omitempty"`
}

// Move response type
type Move struct {
	Number   int    `json:"number"`
	Player   string `json:"player"`
	Color    string `json:"color"`
	UCI      string `json:"uci"`
	SAN      string `json:"san"`
	FENAfter string `json:"fenAfter"`
}

// Moves is the /moves history
type Moves []Move

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
}

func orWaiting(s *string) string {
	if s == nil {
		return "(waiting)"
	}
	return *s
}

func (o *Output) printOpenGames(games OpenGames) {
	if len(games) == 0 {
		o.printf("No open games\n")
		return
	}
	for _, g := range games {
		o.printf("%s  white: %s\n", g.GameID, g.White)
	}
}

func (o *Output) printGameSummaries(games GameSummaries) {
	if len(games) == 0 {
		o.printf("No games\n")
		return
	}
	for _, g := range games {
		line := fmt.Sprintf("%s  %s vs %s  %s  moves: %d  you: %s", g.GameID, g.White, orWaiting(g.Black), g.Status, g.MoveCount, g.Color)
		if g.Result != "" {
			line += "  result: " + g.Result
		}
		o.printf("%s\n", line)
	}
}

func (o *Output) printResult(r *Result) {
	if r == nil {
		return
	}
	if r.Winner != "" {
		o.printf("Result: %s (%s wins by %s)\n", r.Outcome, r.Winner, r.Method)
		return
	}
	o.printf("Result: %s (%s)\n", r.Outcome, r.Method)
}

func (o *Output) printBoard(b Board) {
	o.printf("Game: %s\n", b.GameID)
	o.printf("White: %s  Black: %s\n", b.White, orWaiting(b.Black))
	o.printf("%s", RenderPosition(b.Position))
	o.printf("Status: %s\n", b.Status)
	if b.IsOver {
		o.printResult(b.Result)
		return
	}
	o.printf("Turn: %s\n", b.Turn)
	o.printf("Legal moves: %s\n", strings.Join(b.LegalMoves, " "))
}

func (o *Output) printMoveResult(m MoveResult) {
	if !m.Success {
		o.printf("Move rejected: %s\n", m.Error)
		return
	}
	o.printf("Played %s (%s)\n", m.SAN, m.UCI)
	o.printf("%s", RenderPosition(m.Position))
	o.printf("Status: %s\n", m.Status)
	if m.IsOver {
		o.printResult(m.Result)
	}
}

func (o *Output) printMoves(moves Moves) {
	if len(moves) == 0 {
		o.printf("No moves yet\n")
		return
	}
	for i := 0; i < len(moves); i += 2 {
		line := fmt.Sprintf("%d. %s", i/2+1, moves[i].SAN)
		if i+1 < len(moves) {
			line += " " + moves[i+1].SAN
		}
		o.printf("%s\n", line)
	}
}

// RenderPosition draws the piece placement of a FEN as an 8x8 grid, rank 8
// first. Uppercase is white, lowercase black, "." an empty square.
func RenderPosition(fen string) string {
	placement, _, _ := strings.Cut(fen, " ")
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return fen + "\n"
	}

	var sb strings.Builder
	for i, rank := range ranks {
		fmt.Fprintf(&sb, "%d ", 8-i)
		for _, ch := range rank {
			if ch >= '1' && ch <= '8' {
				for range int(ch - '0') {
					sb.WriteString(" .")
				}
				continue
			}
			sb.WriteByte(' ')
			sb.WriteRune(ch)
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("   a b c d e f g h\n")
	return sb.String()
}
