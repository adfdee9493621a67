package hunt

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"socguard/pkg/models"
)

// RedisConfig configures the Redis hunt queue consumer.
type RedisConfig struct {
	Addr         string
	Password     string
	DB           int
	Key          string
	BlockTimeout time.Duration
}

// RedisSource pops hunt results from a Redis list. The hunt engine
// RPUSHes one JSON result per entry; we BLPOP so results are governed
// in arrival order.
type RedisSource struct {
	client       *redis.Client
	key          string
	blockTimeout time.Duration
}

// NewRedisSource creates a Redis-backed hunt source.
func NewRedisSource(cfg RedisConfig) (*RedisSource, error) {
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if cfg.Key == "" {
		return nil, fmt.Errorf("redis hunt key is required")
	}
	if cfg.BlockTimeout == 0 {
		cfg.BlockTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisSource{
		client:       client,
		key:          cfg.Key,
		blockTimeout: cfg.BlockTimeout,
	}, nil
}

// Next pops one hunt result, returning (nil, nil) when the block
// timeout elapses with an empty queue.
func (s *RedisSource) Next(ctx context.Context) (*models.HuntResult, error) {
	res, err := s.client.BLPop(ctx, s.blockTimeout, s.key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop hunt result: %w", err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	return decode([]byte(res[1]))
}

// Close closes the Redis connection.
func (s *RedisSource) Close() error {
	return s.client.Close()
}
