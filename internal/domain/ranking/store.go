// internal/domain/ranking/store.go
package ranking

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// Entry is one product's cumulative units sold
type Entry struct {
	ProductID uint    `json:"product_id"`
	Score     float64 `json:"score"`
}

// Store is the sales ranking store
type Store interface {
	IncrementScore(ctx context.Context, productID uint, delta float64) error
	// IncrementScores applies every entry's score as a delta, all or none.
	IncrementScores(ctx context.Context, entries []Entry) error
	// TopK returns up to k entries, highest score first.
	TopK(ctx context.Context, k int) ([]Entry, error)
}

// RedisStore keeps the ranking in a Redis sorted set
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore creates a ranking store on the given sorted set key
func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

// IncrementScore adds delta to the product's score
func (s *RedisStore) IncrementScore(ctx context.Context, productID uint, delta float64) error {
	member := strconv.FormatUint(uint64(productID), 10)
	if err := s.client.ZIncrBy(ctx, s.key, delta, member).Err(); err != nil {
		return fmt.Errorf("failed to increment ranking for product %d: %w", productID, err)
	}
	return nil
}

// IncrementScores adds each entry's score in one MULTI/EXEC so a failed
// call leaves the ranking untouched
func (s *RedisStore) IncrementScores(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, e := range entries {
			pipe.ZIncrBy(ctx, s.key, e.Score, strconv.FormatUint(uint64(e.ProductID), 10))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to increment ranking for %d products: %w", len(entries), err)
	}
	return nil
}

// TopK returns the k best selling products
func (s *RedisStore) TopK(ctx context.Context, k int) ([]Entry, error) {
	if k <= 0 {
		return []Entry{}, nil
	}

	members, err := s.client.ZRevRangeWithScores(ctx, s.key, 0, int64(k-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read ranking: %w", err)
	}

	entries := make([]Entry, 0, len(members))
	for _, m := range members {
		raw, ok := m.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			// foreign members in the set are skipped
			continue
		}
		entries = append(entries, Entry{ProductID: uint(id), Score: m.Score})
	}
	return entries, nil
}
