package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisStore struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r *RedisStore) Get(ctx context.Context, sessionID string) (*Cart, error) {
	key := cartKey(sessionID)

	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCartNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var c Cart
	if e2 := json.Unmarshal(data, &c); e2 != nil {
		return nil, fmt.Errorf("unmarshal cart failed: %w", e2)
	}

	return &c, nil
}

func (r *RedisStore) Set(ctx context.Context, sessionID string, c *Cart) error {
	key := cartKey(sessionID)
	jsonCart, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	ttl := r.baseTTL + jitter
	if e2 := r.client.Set(ctx, key, jsonCart, ttl).Err(); e2 != nil {
		return fmt.Errorf("redis set failed: %w", e2)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	key := cartKey(sessionID)
	if err := r.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}

	return nil
}

func cartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}
