package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/chessgame-go/internal/model"
	"github.com/mcoot/chessgame-go/internal/storage"
)

// ErrTxRetriesExhausted is returned when UpdateGame keeps losing the optimistic race
var ErrTxRetriesExhausted = errors.New("redis: game update retries exhausted")

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// stringGetter is satisfied by both the client and a WATCH transaction
type stringGetter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// gameRecord is the stored form of a game; Seq orders games by insertion
type gameRecord struct {
	Seq  int64       `json:"seq"`
	Game *model.Game `json:"game"`
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// User operations

func (s *Storage) CreateUser(ctx context.Context, user *model.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	created, err := s.client.SetNX(ctx, userKey(user.Handle), data, 0).Result()
	if err != nil {
		return err
	}
	if !created {
		return model.ErrHandleExists
	}
	return nil
}

func (s *Storage) GetUser(ctx context.Context, handle string) (*model.User, error) {
	data, err := s.client.Get(ctx, userKey(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrUserNotFound
		}
		return nil, err
	}

	var user model.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Game operations

func (s *Storage) CreateGame(ctx context.Context, game *model.Game) error {
	seq, err := s.client.Incr(ctx, gameSeqKey()).Result()
	if err != nil {
		return err
	}

	data, err := json.Marshal(gameRecord{Seq: seq, Game: game})
	if err != nil {
		return err
	}

	member := redis.Z{Score: float64(seq), Member: string(game.ID)}

	// Use a transaction so the game and its index entries appear together
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, gameKey(game.ID), data, 0)
		pipe.ZAdd(ctx, userGamesIndexKey(game.White), member)
		if game.Black != "" {
			pipe.ZAdd(ctx, userGamesIndexKey(game.Black), member)
		}
		if game.Status == model.GameStatusOpen {
			pipe.ZAdd(ctx, openGamesIndexKey(), member)
		}
		return nil
	})
	return err
}

func (s *Storage) GetGame(ctx context.Context, id model.GameID) (*model.Game, error) {
	rec, err := s.getRecord(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	return rec.Game, nil
}

func (s *Storage) getRecord(ctx context.Context, c stringGetter, id model.GameID) (*gameRecord, error) {
	data, err := c.Get(ctx, gameKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}

	var rec gameRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	if rec.Game == nil {
		return nil, fmt.Errorf("redis: corrupt game record %s", id)
	}
	return &rec, nil
}

// UpdateGame runs fn inside a WATCH/MULTI transaction on the game key and
// retries when another writer commits first.
func (s *Storage) UpdateGame(ctx context.Context, id model.GameID, fn storage.GameUpdate) (*model.Game, error) {
	key := gameKey(id)
	var updated *model.Game

	txf := func(tx *redis.Tx) error {
		rec, err := s.getRecord(ctx, tx, id)
		if err != nil {
			return err
		}

		before := rec.Game.Clone()
		move, err := fn(rec.Game)
		if err != nil {
			return err
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		var moveData []byte
		if move != nil {
			if moveData, err = json.Marshal(move); err != nil {
				return err
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			if before.Status == model.GameStatusOpen && rec.Game.Status != model.GameStatusOpen {
				pipe.ZRem(ctx, openGamesIndexKey(), string(id))
			}
			if before.Black == "" && rec.Game.Black != "" {
				pipe.ZAdd(ctx, userGamesIndexKey(rec.Game.Black), redis.Z{Score: float64(rec.Seq), Member: string(id)})
			}
			if moveData != nil {
				pipe.RPush(ctx, movesKey(id), moveData)
			}
			return nil
		})
		if err != nil {
			return err
		}
		updated = rec.Game
		return nil
	}

	for i := 0; i < s.cfg.MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return updated, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, err
	}
	return nil, ErrTxRetriesExhausted
}

func (s *Storage) ListGamesForUser(ctx context.Context, handle string) ([]*model.Game, error) {
	return s.gamesFromIndex(ctx, userGamesIndexKey(handle), nil)
}

func (s *Storage) ListOpenGames(ctx context.Context) ([]*model.Game, error) {
	return s.gamesFromIndex(ctx, openGamesIndexKey(), func(g *model.Game) bool {
		return g.Status == model.GameStatusOpen
	})
}

// gamesFromIndex loads the games referenced by a ZSET index in score order
func (s *Storage) gamesFromIndex(ctx context.Context, indexKey string, keep func(*model.Game) bool) ([]*model.Game, error) {
	ids, err := s.client.ZRange(ctx, indexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	games := []*model.Game{}
	if len(ids) == 0 {
		return games, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = gameKey(model.GameID(id))
	}

	// Fetch all games in one round trip using MGET
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	for _, val := range values {
		str, ok := val.(string)
		if !ok {
			continue // Index entry without a game
		}
		var rec gameRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, err
		}
		if rec.Game == nil || (keep != nil && !keep(rec.Game)) {
			continue
		}
		games = append(games, rec.Game)
	}
	return games, nil
}

// Move history

func (s *Storage) ListMoves(ctx context.Context, id model.GameID) ([]*model.Move, error) {
	exists, err := s.client.Exists(ctx, gameKey(id)).Result()
	if err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, model.ErrGameNotFound
	}

	values, err := s.client.LRange(ctx, movesKey(id), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	moves := make([]*model.Move, 0, len(values))
	for _, val := range values {
		var move model.Move
		if err := json.Unmarshal([]byte(val), &move); err != nil {
			return nil, err
		}
		moves = append(moves, &move)
	}
	return moves, nil
}
