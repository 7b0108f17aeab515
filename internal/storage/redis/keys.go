package redis

import (
	"fmt"

	"github.com/mcoot/chessgame-go/internal/model"
)

// Key prefix for all chess data
const keyPrefix = "chess"

// userKey returns the Redis key for a User
func userKey(handle string) string {
	return fmt.Sprintf("%s:user:%s", keyPrefix, handle)
}

// gameKey returns the Redis key for a Game record
func gameKey(id model.GameID) string {
	return fmt.Sprintf("%s:game:%s", keyPrefix, id)
}

// movesKey returns the Redis key for the LIST of moves in a game
func movesKey(id model.GameID) string {
	return fmt.Sprintf("%s:moves:%s", keyPrefix, id)
}

// gameSeqKey returns the Redis key for the game insertion counter
func gameSeqKey() string {
	return fmt.Sprintf("%s:seq:games", keyPrefix)
}

// userGamesIndexKey returns the Redis key for the ZSET of games a user plays in,
// scored by insertion sequence
func userGamesIndexKey(handle string) string {
	return fmt.Sprintf("%s:idx:user_games:%s", keyPrefix, handle)
}

// openGamesIndexKey returns the Redis key for the ZSET of open games,
// scored by insertion sequence
func openGamesIndexKey() string {
	return fmt.Sprintf("%s:idx:open_games", keyPrefix)
}
