package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/go-redis/redis/v8"
	"weatherbot.app/errors"
)

// RedisCache stores payloads under "kind:key" with Redis-managed expiry
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	ctx    context.Context
}

type RedisCacheConfig struct {
	Addr         string
	Password     string
	DB           int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

func NewRedisCache(config *RedisCacheConfig, ttl time.Duration) (*RedisCache, error) {
	ctx := context.Background()

	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	slog.Info("Redis cache connected successfully", "addr", config.Addr)

	return &RedisCache{
		client: client,
		ttl:    ttl,
		ctx:    ctx,
	}, nil
}

func (r *RedisCache) Lookup(kind Kind, key Key) (json.RawMessage, bool) {
	val, err := r.client.Get(r.ctx, flatKey(kind, key)).Bytes()
	if err != nil {
		if err != redis.Nil {
			slog.Error("Redis get error", "error", err, "kind", kind, "key", key.String())
		}
		return nil, false
	}

	return val, true
}

func (r *RedisCache) Upsert(kind Kind, key Key, payload json.RawMessage) error {
	if payload == nil {
		return nil
	}

	if err := r.client.Set(r.ctx, flatKey(kind, key), []byte(payload), r.ttl).Err(); err != nil {
		return errors.NewPersistenceError("redis set", err)
	}
	return nil
}

// Close releases the underlying Redis connection
func (r *RedisCache) Close() error {
	return r.client.Close()
}
