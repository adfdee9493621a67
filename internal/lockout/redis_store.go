package lockout

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"

	"socguard/pkg/models"
)

// RedisConfig configures Redis access for lock-state persistence.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore keeps the lock state under a single key. SETNX gives atomic,
// idempotent engagement under concurrent callers.
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore constructs a Redis-backed lock store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	prefix := strings.TrimSpace(cfg.KeyPrefix)
	if prefix == "" {
		prefix = "socguard"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis lock store: %w", err)
	}

	return &RedisStore{client: client, key: prefix + ":lock"}, nil
}

// Get returns the current lock state.
func (s *RedisStore) Get(ctx context.Context) (models.LockState, error) {
	raw, err := s.client.Get(ctx, s.key).Result()
	if err == redis.Nil {
		return models.LockState{}, nil
	}
	if err != nil {
		return models.LockState{}, fmt.Errorf("read lock state: %w", err)
	}

	var state models.LockState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return models.LockState{}, fmt.Errorf("decode lock state: %w", err)
	}
	return state, nil
}

// Engage persists the lock if absent.
func (s *RedisStore) Engage(ctx context.Context, state models.LockState) (bool, error) {
	payload, err := json.Marshal(state)
	if err != nil {
		return false, fmt.Errorf("marshal lock state: %w", err)
	}
	created, err := s.client.SetNX(ctx, s.key, payload, 0).Result()
	if err != nil {
		return false, fmt.Errorf("persist lock state: %w", err)
	}
	return created, nil
}

// Clear removes the lock.
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear lock state: %w", err)
	}
	return nil
}

// Close closes Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
