package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey prefixes the key holding the latest snapshot. Each process
// appends its own id, so a restarted process never reads a predecessor's entry.
const DefaultRedisKey = "realized_bands:latest"

// RedisStore keeps the latest snapshot in Redis with an expiry.
type RedisStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisStore connects to addr and verifies the connection.
func NewRedisStore(addr, password string, db int, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return newRedisStore(client, ttl), nil
}

func newRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		key:    DefaultRedisKey + ":" + uuid.NewString(),
		ttl:    ttl,
	}
}

func (r *RedisStore) Save(ctx context.Context, snap *Snapshot) error {
	if snap == nil || snap.Response == nil {
		return errors.New("empty snapshot")
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, data, r.ttl).Err()
}

func (r *RedisStore) Latest(ctx context.Context, maxAge time.Duration) (*Snapshot, error) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if time.Since(snap.CreatedAt) > maxAge {
		return nil, nil
	}
	return &snap, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
