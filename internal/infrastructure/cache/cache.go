// Package cache implementa reporting.Cache sobre Redis, con fallback en memoria
// cuando Redis no está configurado o no responde al arrancar.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/jhoicas/hub-inventory/internal/application/reporting"
	"github.com/jhoicas/hub-inventory/pkg/config"
	"github.com/jhoicas/hub-inventory/pkg/logger"
)

var (
	_ reporting.Cache = (*RedisCache)(nil)
	_ reporting.Cache = (*InMemoryCache)(nil)
)

// New devuelve RedisCache si REDIS_ADDR está configurado y responde; si no, InMemoryCache.
func New(cfg config.RedisConfig, log *logger.Logger) reporting.Cache {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.Addr == "" {
		log.Info().Msg("REDIS_ADDR vacío, caché en memoria")
		return NewInMemoryCache()
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis no responde, caché en memoria")
		_ = rdb.Close()
		return NewInMemoryCache()
	}

	log.Info().Str("addr", cfg.Addr).Int("db", cfg.DB).Msg("caché Redis inicializada")
	return NewRedisCache(rdb, log)
}

// RedisCache implementa reporting.Cache con go-redis.
type RedisCache struct {
	client *redis.Client
	log    *logger.Logger
}

// NewRedisCache envuelve un cliente existente.
func NewRedisCache(client *redis.Client, log *logger.Logger) *RedisCache {
	if log == nil {
		log = logger.Nop()
	}
	return &RedisCache{client: client, log: log.Named("redis")}
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return val, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := c.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// DeleteByPrefix recorre las claves con SCAN (no bloquea Redis como KEYS) y las borra.
func (c *RedisCache) DeleteByPrefix(ctx context.Context, prefix string) error {
	iter := c.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	c.log.Debug().Str("prefix", prefix).Int("count", len(keys)).Msg("claves invalidadas")
	return nil
}

// Close cierra el cliente.
func (c *RedisCache) Close() error { return c.client.Close() }

// InMemoryCache caché de proceso con expiración perezosa.
type InMemoryCache struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

type entry struct {
	value     []byte
	expiresAt time.Time // cero = sin expiración
}

// NewInMemoryCache crea una caché vacía.
func NewInMemoryCache() *InMemoryCache {
	return &InMemoryCache{data: make(map[string]entry), now: time.Now}
}

func (c *InMemoryCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.data[key]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && c.now().After(e.expiresAt) {
		delete(c.data, key)
		return nil, false, nil
	}
	return e.value, true, nil
}

func (c *InMemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = c.now().Add(ttl)
	}
	c.data[key] = e
	return nil
}

func (c *InMemoryCache) DeleteByPrefix(_ context.Context, prefix string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for k := range c.data {
		if strings.HasPrefix(k, prefix) {
			delete(c.data, k)
		}
	}
	return nil
}
