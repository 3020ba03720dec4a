package repository

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/reelrank/internal/domain/types"
	"github.com/okian/reelrank/pkg/metrics"
)

// DefaultRedisKey is the sorted set used when no key is configured.
const DefaultRedisKey = "reelrank:ranking"

// RedisOptions holds connection settings for NewRedisClient.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a Redis client from options.
func NewRedisClient(o RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
}

// RedisStore keeps the ranking in one sorted set.
//
// Members are stored with the negated total so that ascending order is total
// DESC and ties fall back to Redis' lexicographic member order, matching the
// treap's userID ASC.
type RedisStore struct {
	rdb *redis.Client
	key string
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore wraps rdb. An empty key selects DefaultRedisKey.
func NewRedisStore(rdb *redis.Client, key string) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: rdb, key: key}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Add implements Store.Add with ZINCRBY.
func (s *RedisStore) Add(ctx context.Context, userID string, delta float64) (float64, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	neg, err := s.rdb.ZIncrBy(ctx, s.key, -delta, userID).Result()
	if err != nil {
		metrics.RecordErrorByComponent("repository", "redis")
		return 0, err
	}
	return -neg, nil
}

// Rank implements Store.Rank with ZRANK and ZSCORE.
func (s *RedisStore) Rank(ctx context.Context, userID string) (types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	pipe := s.rdb.TxPipeline()
	rankCmd := pipe.ZRank(ctx, s.key, userID)
	scoreCmd := pipe.ZScore(ctx, s.key, userID)
	if _, err := pipe.Exec(ctx); err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.RecordErrorByComponent("repository", "not_found")
			return types.Entry{}, ErrNotFound
		}
		metrics.RecordErrorByComponent("repository", "redis")
		return types.Entry{}, err
	}
	return types.Entry{
		Rank:   int(rankCmd.Val()) + 1,
		UserID: userID,
		Score:  -scoreCmd.Val(),
	}, nil
}

// Range implements Store.Range with ZRANGE ... WITHSCORES.
func (s *RedisStore) Range(ctx context.Context, offset, limit int) ([]types.Entry, error) {
	start := time.Now()
	defer func() {
		metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000.0)
	}()

	if limit < 1 {
		return nil, ErrInvalidLimit
	}
	if offset < 0 {
		return nil, ErrInvalidOffset
	}

	zs, err := s.rdb.ZRangeWithScores(ctx, s.key, int64(offset), int64(offset+limit-1)).Result()
	if err != nil {
		metrics.RecordErrorByComponent("repository", "redis")
		return nil, err
	}
	out := make([]types.Entry, 0, len(zs))
	for i, z := range zs {
		id, _ := z.Member.(string)
		out = append(out, types.Entry{Rank: offset + i + 1, UserID: id, Score: -z.Score})
	}
	return out, nil
}

// TopN returns the first n entries.
func (s *RedisStore) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return s.Range(ctx, 0, n)
}

// Count returns ZCARD, or 0 when Redis is unreachable.
func (s *RedisStore) Count(ctx context.Context) int {
	n, err := s.rdb.ZCard(ctx, s.key).Result()
	if err != nil {
		metrics.RecordErrorByComponent("repository", "redis")
		return 0
	}
	return int(n)
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}
