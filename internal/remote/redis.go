package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vovakirdan/flagquest/internal/progress"
)

const (
	redisPrefix     = "flagquest:"
	maxWatchRetries = 5
)

// RedisOptions configures the redis backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// RedisStore keeps each record as a JSON document and each level's board
// as a sorted set of best scores plus a hash of play counts.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

// OpenRedis connects and pings the server.
func OpenRedis(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.PoolSize <= 0 {
		opts.PoolSize = 10
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("remote: cannot connect to redis at %s: %w", opts.Addr, err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func recordKey(userID string) string {
	return redisPrefix + "record:" + userID
}

func boardKey(levelID int) string {
	return redisPrefix + "board:" + strconv.Itoa(levelID)
}

func playsKey(levelID int) string {
	return redisPrefix + "plays:" + strconv.Itoa(levelID)
}

func updatedKey(levelID int) string {
	return redisPrefix + "updated:" + strconv.Itoa(levelID)
}

// Ensure implements Store.
func (s *RedisStore) Ensure(ctx context.Context, userID string) error {
	data, err := json.Marshal(emptyRecord(userID))
	if err != nil {
		return fmt.Errorf("remote: cannot encode record: %w", err)
	}
	if err := s.client.SetNX(ctx, recordKey(userID), data, 0).Err(); err != nil {
		return fmt.Errorf("remote: cannot ensure record for %s: %w", userID, err)
	}
	return nil
}

// Read implements Store.
func (s *RedisStore) Read(ctx context.Context, userID string) (Record, error) {
	data, err := s.client.Get(ctx, recordKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("remote: cannot read record for %s: %w", userID, err)
	}
	return decodeRecord(userID, data)
}

func decodeRecord(userID string, data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("remote: corrupt record for %s: %w", userID, err)
	}
	rec.UserID = userID
	if rec.Progress == nil {
		rec.Progress = map[string]progress.Record{}
	}
	return rec, nil
}

// Patch implements Store.
func (s *RedisStore) Patch(ctx context.Context, userID string, p Patch) error {
	return s.update(ctx, userID, func(r *Record) {
		p.apply(r)
	})
}

// ReplaceProgress implements Store.
func (s *RedisStore) ReplaceProgress(ctx context.Context, userID string, prog map[string]progress.Record) error {
	return s.update(ctx, userID, func(r *Record) {
		r.Progress = prog
	})
}

// update applies fn under WATCH so concurrent writers retry instead of
// overwriting each other.
func (s *RedisStore) update(ctx context.Context, userID string, fn func(*Record)) error {
	key := recordKey(userID)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		rec, err := decodeRecord(userID, data)
		if err != nil {
			return err
		}
		fn(&rec)
		out, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		return err
	}

	for range maxWatchRetries {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("remote: cannot update record for %s: %w", userID, err)
		}
		return err
	}
	return fmt.Errorf("remote: too many concurrent updates for %s", userID)
}

// SubmitResult implements Store.
func (s *RedisStore) SubmitResult(ctx context.Context, userID string, levelID, score int) error {
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZAddArgs(ctx, boardKey(levelID), redis.ZAddArgs{
			GT:      true,
			Members: []redis.Z{{Score: float64(max(score, 0)), Member: userID}},
		})
		pipe.HIncrBy(ctx, playsKey(levelID), userID, 1)
		pipe.HSet(ctx, updatedKey(levelID), userID, s.now().UTC().Format(time.RFC3339Nano))
		return nil
	})
	if err != nil {
		return fmt.Errorf("remote: cannot submit result: %w", err)
	}
	return nil
}

// TopResults implements Store.
func (s *RedisStore) TopResults(ctx context.Context, levelID, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	board, err := s.client.ZRevRangeWithScores(ctx, boardKey(levelID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("remote: cannot query results: %w", err)
	}
	if len(board) == 0 {
		return nil, nil
	}

	users := make([]string, len(board))
	for i, z := range board {
		users[i], _ = z.Member.(string)
	}
	plays, err := s.client.HMGet(ctx, playsKey(levelID), users...).Result()
	if err != nil {
		return nil, fmt.Errorf("remote: cannot query play counts: %w", err)
	}
	updated, err := s.client.HMGet(ctx, updatedKey(levelID), users...).Result()
	if err != nil {
		return nil, fmt.Errorf("remote: cannot query result times: %w", err)
	}

	results := make([]Result, len(board))
	for i, z := range board {
		results[i] = Result{
			UserID:    users[i],
			LevelID:   levelID,
			BestScore: int(z.Score),
		}
		if v, ok := plays[i].(string); ok {
			results[i].PlaysCount, _ = strconv.Atoi(v)
		}
		if v, ok := updated[i].(string); ok {
			results[i].UpdatedAt, _ = time.Parse(time.RFC3339Nano, v)
		}
	}
	return results, nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
