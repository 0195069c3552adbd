package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "portal:session:"

// ErrTokenExpired is returned when saving a session whose token already expired
var ErrTokenExpired = errors.New("token already expired")

// RedisPersister stores browser sessions in Redis.
// Entries live until the token's exp claim, or DefaultTTL for opaque tokens.
type RedisPersister struct {
	client     redis.Cmdable
	DefaultTTL time.Duration
}

func NewRedisPersister(client redis.Cmdable, defaultTTL time.Duration) *RedisPersister {
	return &RedisPersister{client: client, DefaultTTL: defaultTTL}
}

func (r *RedisPersister) Load(ctx context.Context, key string) (*Record, error) {
	data, err := r.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &record, nil
}

func (r *RedisPersister) Save(ctx context.Context, key string, record *Record) error {
	ttl := r.DefaultTTL
	if exp, ok := TokenExpiry(record.Token); ok {
		ttl = time.Until(exp)
		if ttl <= 0 {
			return ErrTokenExpired
		}
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := r.client.Set(ctx, redisKeyPrefix+key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (r *RedisPersister) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
