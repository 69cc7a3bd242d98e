package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHolder keeps the single login slot in Redis under one key, so the
// slot survives process restarts. Still one slot for the whole deployment;
// the backend changes where the slot lives, not its semantics.
type RedisHolder struct {
	client *redis.Client
	key    string
}

// NewRedisHolder connects to the Redis at redisURL and verifies the
// connection before returning.
func NewRedisHolder(redisURL string) (*RedisHolder, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisHolder{client: client, key: "autorentool:session"}, nil
}

// NewRedisHolderWithClient wraps an existing client, mainly for tests.
func NewRedisHolderWithClient(client *redis.Client) *RedisHolder {
	return &RedisHolder{client: client, key: "autorentool:session"}
}

func (h *RedisHolder) Current(ctx context.Context) (string, bool) {
	user, err := h.client.Get(ctx, h.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil || user == "" {
		return "", false
	}
	return user, true
}

func (h *RedisHolder) Set(ctx context.Context, user string) error {
	if err := h.client.Set(ctx, h.key, user, 0).Err(); err != nil {
		return fmt.Errorf("set session slot: %w", err)
	}
	return nil
}

func (h *RedisHolder) Clear(ctx context.Context) error {
	if err := h.client.Del(ctx, h.key).Err(); err != nil {
		return fmt.Errorf("clear session slot: %w", err)
	}
	return nil
}

// Close closes the Redis connection.
func (h *RedisHolder) Close() error {
	return h.client.Close()
}

// Ping checks if Redis is reachable.
func (h *RedisHolder) Ping(ctx context.Context) error {
	return h.client.Ping(ctx).Err()
}
