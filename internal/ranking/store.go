// Package ranking tracks search-keyword popularity as a time-weighted
// sorted set and serves ranked lists with per-keyword movement deltas.
package ranking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keys. The prev set is a point-in-time snapshot of the live set's
// order, used to compute movement deltas.
const (
	keyRank          = "search:rank"
	keyRankPrev      = "search:rank:prev"
	keyRankPrevStamp = "search:rank:prev:timestamp"
	keyRankCache     = "search:rank:cache"
)

// Store is the persistence surface the ranking service needs. Implemented
// by RedisStore; tests use an in-memory fake.
type Store interface {
	// IncrementScore adds delta to member's score in the sorted set at key.
	IncrementScore(ctx context.Context, key, member string, delta float64) error
	// TopMembers returns up to count members of the sorted set at key in
	// descending score order. count < 0 returns the whole set.
	TopMembers(ctx context.Context, key string, count int64) ([]string, error)
	// ReplaceRanks replaces the sorted set at key with members scored by
	// position (first member highest).
	ReplaceRanks(ctx context.Context, key string, members []string) error
	// GetValue returns the string at key, or "" if the key is absent.
	GetValue(ctx context.Context, key string) (string, error)
	// SetValue stores value at key with the given TTL (0 = no expiry).
	SetValue(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore is the go-redis backed Store.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore over an already-connected client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) IncrementScore(ctx context.Context, key, member string, delta float64) error {
	if err := s.client.ZIncrBy(ctx, key, delta, member).Err(); err != nil {
		return fmt.Errorf("zincrby %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) TopMembers(ctx context.Context, key string, count int64) ([]string, error) {
	stop := count - 1
	if count < 0 {
		stop = -1
	}
	members, err := s.client.ZRevRange(ctx, key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("zrevrange %s: %w", key, err)
	}
	return members, nil
}

func (s *RedisStore) ReplaceRanks(ctx context.Context, key string, members []string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		entries := make([]redis.Z, len(members))
		for i, member := range members {
			entries[i] = redis.Z{Score: float64(len(members) - i), Member: member}
		}
		pipe.ZAdd(ctx, key, entries...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) GetValue(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

func (s *RedisStore) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}
