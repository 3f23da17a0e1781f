package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisOptions configures the redis-backed store.
type RedisOptions struct {
	Address  string
	Password string
	DB       int
	TTL      time.Duration
}

// RedisStore is a Store shared between dashboard instances through redis.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisStore creates a store backed by a new redis client.
func NewRedisStore(opts RedisOptions) *RedisStore {
	rdb := redis.NewClient(&redis.Options{
		Addr:         opts.Address,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return NewRedisStoreWithClient(rdb, opts.TTL)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisStore{client: client, ttl: ttl, now: time.Now}
}

// Ping tests the redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Get loads the entry under key. Unreadable entries are removed and reported
// as missing, the same as expired ones.
func (s *RedisStore) Get(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, &Error{Key: key, Message: "redis get failed", Cause: err}
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil || entry.Expired(s.now(), s.ttl) {
		if delErr := s.client.Del(ctx, key).Err(); delErr != nil {
			return nil, &Error{Key: key, Message: "redis del failed", Cause: delErr}
		}
		return nil, nil
	}
	return &entry, nil
}

// Set writes entry under key with the store's TTL as redis expiration.
func (s *RedisStore) Set(ctx context.Context, key string, entry *Entry) error {
	if entry == nil {
		return &Error{Key: key, Message: "nil entry"}
	}
	data, err := json.Marshal(entry)
	if err != nil {
		return &Error{Key: key, Message: "failed to encode entry", Cause: err}
	}
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return &Error{Key: key, Message: "redis set failed", Cause: err}
	}
	return nil
}

// Delete removes key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return &Error{Key: key, Message: "redis del failed", Cause: err}
	}
	return nil
}
