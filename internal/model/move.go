package model

import "time"

// Move is an accepted move in a game's history
type Move struct {
	GameID    GameID
	Number    int // 1-based ply
	Player    string
	Color     Color
	UCI       string
	SAN       string
	FENAfter  string
	CreatedAt time.Time
}
