package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slotcal/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisSlotCache stores computed slot lists keyed by event type and date.
// Entries expire on their own; writes to the schedule invalidate them early.
type RedisSlotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a Redis client from configuration.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisSlotCache(client *redis.Client, ttl time.Duration) *RedisSlotCache {
	return &RedisSlotCache{
		client: client,
		ttl:    ttl,
	}
}

func slotKey(eventTypeID int64, date string) string {
	return fmt.Sprintf("slots:%d:%s", eventTypeID, date)
}

func (r *RedisSlotCache) GetSlots(ctx context.Context, eventTypeID int64, date string) ([]int, bool, error) {
	if r.client == nil {
		return nil, false, fmt.Errorf("redis client is nil")
	}
	val, err := r.client.Get(ctx, slotKey(eventTypeID, date)).Result()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get slots from redis: %w", err)
	}

	var slots []int
	if err := json.Unmarshal([]byte(val), &slots); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal slots: %w", err)
	}

	return slots, true, nil
}

func (r *RedisSlotCache) SetSlots(ctx context.Context, eventTypeID int64, date string, slots []int) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(slots)
	if err != nil {
		return fmt.Errorf("failed to marshal slots: %w", err)
	}

	if err := r.client.Set(ctx, slotKey(eventTypeID, date), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set slots in redis: %w", err)
	}

	return nil
}

// InvalidateDate drops cached lists for every event type on the date.
func (r *RedisSlotCache) InvalidateDate(ctx context.Context, date string) error {
	return r.deletePattern(ctx, fmt.Sprintf("slots:*:%s", date))
}

// InvalidateAll drops every cached slot list. Used when the weekly schedule
// or the event type catalog changes.
func (r *RedisSlotCache) InvalidateAll(ctx context.Context) error {
	return r.deletePattern(ctx, "slots:*")
}

func (r *RedisSlotCache) deletePattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	keys, err := r.client.Keys(ctx, pattern).Result()
	if err != nil {
		return fmt.Errorf("failed to scan slot keys: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to delete slot keys: %w", err)
	}
	return nil
}
