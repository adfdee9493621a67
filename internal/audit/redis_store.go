package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"

	"socguard/pkg/models"
)

// RedisConfig configures Redis access for the audit store.
type RedisConfig struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// RedisStore persists isolation events and audit records in Redis. Events
// land on an append-only list; successful isolations are additionally
// indexed in per-actor sorted sets scored by timestamp so window counts
// are a single ZCOUNT.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a Redis-backed audit store.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if strings.TrimSpace(cfg.Addr) == "" {
		cfg.Addr = "127.0.0.1:6379"
	}
	if strings.TrimSpace(cfg.KeyPrefix) == "" {
		cfg.KeyPrefix = "socguard:audit"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis audit store: %w", err)
	}

	return &RedisStore{client: client, prefix: strings.TrimSpace(cfg.KeyPrefix)}, nil
}

// AppendEvent appends one isolation event and indexes it for counting.
func (s *RedisStore) AppendEvent(ctx context.Context, event *models.IsolationEvent) (string, error) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal isolation event: %w", err)
	}

	score := float64(event.Timestamp.UnixMilli())

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, s.eventsKey(), payload)
	pipe.HIncrBy(ctx, s.statsKey(), string(event.ActionResult), 1)
	if event.ActionResult == models.ResultSuccess {
		pipe.ZAdd(ctx, s.successKey(""), redis.Z{Score: score, Member: event.ID})
		if event.Actor != "" {
			pipe.ZAdd(ctx, s.successKey(event.Actor), redis.Z{Score: score, Member: event.ID})
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return "", fmt.Errorf("append isolation event: %w", err)
	}

	return event.ID, nil
}

// CountSuccessfulSince counts successful isolations since cutoff.
func (s *RedisStore) CountSuccessfulSince(ctx context.Context, cutoff time.Time, actor string) (int, error) {
	min := strconv.FormatInt(cutoff.UnixMilli(), 10)
	n, err := s.client.ZCount(ctx, s.successKey(actor), min, "+inf").Result()
	if err != nil {
		return 0, fmt.Errorf("count successful isolations: %w", err)
	}
	return int(n), nil
}

// AppendRecord appends one audit record.
func (s *RedisStore) AppendRecord(ctx context.Context, record *models.AuditRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("marshal audit record: %w", err)
	}
	if err := s.client.RPush(ctx, s.recordsKey(), payload).Err(); err != nil {
		return "", fmt.Errorf("append audit record: %w", err)
	}

	return record.ID, nil
}

// Stats reports event totals.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	out := Stats{ByResult: make(map[string]int)}

	events, err := s.client.LLen(ctx, s.eventsKey()).Result()
	if err != nil {
		return out, fmt.Errorf("read event count: %w", err)
	}
	records, err := s.client.LLen(ctx, s.recordsKey()).Result()
	if err != nil {
		return out, fmt.Errorf("read record count: %w", err)
	}
	byResult, err := s.client.HGetAll(ctx, s.statsKey()).Result()
	if err != nil {
		return out, fmt.Errorf("read result totals: %w", err)
	}

	out.TotalEvents = int(events)
	out.TotalRecords = int(records)
	for result, raw := range byResult {
		n, _ := strconv.Atoi(raw)
		out.ByResult[result] = n
	}
	return out, nil
}

// Close closes Redis resources.
func (s *RedisStore) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}

func (s *RedisStore) eventsKey() string {
	return s.prefix + ":events"
}

func (s *RedisStore) recordsKey() string {
	return s.prefix + ":records"
}

func (s *RedisStore) statsKey() string {
	return s.prefix + ":stats"
}

func (s *RedisStore) successKey(actor string) string {
	if actor == "" {
		return s.prefix + ":success"
	}
	return s.prefix + ":success:" + actor
}
