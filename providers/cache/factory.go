package cache

import (
	"fmt"
	"time"

	"weatherbot.app/config"
)

// Backend identifiers accepted in configuration
const (
	TypeFile   = "file"
	TypeMemory = "memory"
	TypeRedis  = "redis"
)

// New builds the cache backend selected by configuration. The file backend
// is the default: it survives restarts and keeps the store human-readable.
func New(cfg *config.CacheConfig) (Cache, error) {
	switch cfg.Type {
	case TypeFile:
		return NewFileCache(cfg.FilePath, cfg.TTL()), nil
	case TypeMemory:
		return NewMemoryCache(cfg.TTL()), nil
	case TypeRedis:
		return NewRedisCache(&RedisCacheConfig{
			Addr:         cfg.RedisAddr,
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  time.Duration(cfg.RedisDialTimeoutSeconds) * time.Second,
			ReadTimeout:  time.Duration(cfg.RedisReadTimeoutSeconds) * time.Second,
			WriteTimeout: time.Duration(cfg.RedisWriteTimeoutSeconds) * time.Second,
		}, cfg.TTL())
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}
