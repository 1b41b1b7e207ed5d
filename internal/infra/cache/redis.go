package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// civicUrgencyKey is set by the platform when civic events are active.
const civicUrgencyKey = "civic:urgency"

// RedisStore implements domain.SessionStore and domain.Cache over Redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedis creates the store.
func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func seenKey(userID, generation string) string {
	return fmt.Sprintf("feed:seen:%s:%s", userID, generation)
}

// DeliveredIDs returns the content IDs already delivered in this generation.
func (s *RedisStore) DeliveredIDs(ctx context.Context, userID, generation string) ([]string, error) {
	return s.client.SMembers(ctx, seenKey(userID, generation)).Result()
}

// MarkDelivered records content IDs as delivered and refreshes the set TTL.
func (s *RedisStore) MarkDelivered(ctx context.Context, userID, generation string, contentIDs []string, ttl time.Duration) error {
	if len(contentIDs) == 0 {
		return nil
	}
	members := make([]any, 0, len(contentIDs))
	for _, id := range contentIDs {
		members = append(members, id)
	}
	key := seenKey(userID, generation)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, members...)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// CivicUrgencyActive reads the platform's civic-urgency flag. A missing key
// means no urgency.
func (s *RedisStore) CivicUrgencyActive(ctx context.Context) (bool, error) {
	val, err := s.client.Get(ctx, civicUrgencyKey).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return val == "1" || val == "true", nil
}

// Once runs fn only if the key has not been set yet.
func (s *RedisStore) Once(ctx context.Context, key string, ttl time.Duration, fn func() error) error {
	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := fn(); err != nil {
		_ = s.client.Del(ctx, key).Err()
		return err
	}
	return nil
}
