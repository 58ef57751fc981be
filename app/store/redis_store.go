package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// NewRedisClient connects to addr and verifies the connection.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps the JSON state document under a single key.
type RedisStore struct {
	client redisClient
	key    string
}

func NewRedisStore(client redisClient, key string) *RedisStore {
	return &RedisStore{client: client, key: key}
}

func (r *RedisStore) Load(ctx context.Context) *SeenState {
	val, err := r.client.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		slog.Info("No seen-link state found, starting empty", "key", r.key)
		return NewSeenState()
	}
	if err != nil {
		slog.Warn("Failed to read seen-link state, starting empty", "key", r.key, "error", err)
		return NewSeenState()
	}

	var raw map[string][]string
	if err := json.Unmarshal([]byte(val), &raw); err != nil {
		slog.Warn("Seen-link state is corrupt, starting empty", "key", r.key, "error", err)
		backup := r.key + ":corrupt"
		if err := r.client.Set(ctx, backup, val, 0).Err(); err != nil {
			slog.Warn("Failed to set corrupt state aside", "key", r.key, "error", err)
		}
		return NewSeenState()
	}

	state := SeenStateFrom(raw)
	slog.Info("Seen-link state loaded", "key", r.key, "feeds", len(raw), "links", state.Count())
	return state
}

func (r *RedisStore) Save(ctx context.Context, state *SeenState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode seen-link state: %w", err)
	}

	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to set key %s: %w", r.key, err)
	}
	return nil
}
