// Package cache keeps aggregation results in Redis and hands out per
// startup locks. A nil *Cache is valid and behaves as an always-empty cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrLocked is returned by WithLock when another holder owns the lock.
var ErrLocked = errors.New("lock is held elsewhere")

type Cache struct {
	rdb    *redis.Client
	locker *redislock.Client
	ttl    time.Duration
}

// New wraps an existing client.
func New(rdb *redis.Client, ttl time.Duration) *Cache {
	return &Cache{rdb: rdb, locker: redislock.New(rdb), ttl: ttl}
}

// Connect dials Redis, retrying a few times before giving up.
func Connect(ctx context.Context, addr, password string, ttl time.Duration) (*Cache, error) {
	var lastErr error
	for attempt := 1; attempt <= 5; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: password,
			DB:       0,
			PoolSize: 50,
		})
		if err := rdb.Ping(ctx).Err(); err == nil {
			logrus.WithFields(logrus.Fields{"addr": addr, "attempt": attempt}).Info("Connected to redis")
			return New(rdb, ttl), nil
		} else {
			lastErr = err
			_ = rdb.Close()
		}
		sleep := time.Second * time.Duration(1<<attempt)
		logrus.WithFields(logrus.Fields{"addr": addr, "attempt": attempt}).Warnf("Failed to connect redis, retrying in %s: %v", sleep, lastErr)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("connect redis at %s: %w", addr, lastErr)
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.rdb.Close()
}

func setKey(startupID uint) string {
	return fmt.Sprintf("financials:%d:keys", startupID)
}

func versionKey(startupID uint) string {
	return fmt.Sprintf("financials:%d:version", startupID)
}

func entryKey(startupID uint, key string) string {
	return fmt.Sprintf("financials:%d:%s", startupID, key)
}

// GetJSON loads a cached value into dest. The bool is false on a miss.
func (c *Cache) GetJSON(ctx context.Context, startupID uint, key string, dest interface{}) (bool, error) {
	if c == nil {
		return false, nil
	}
	val, err := c.rdb.Get(ctx, entryKey(startupID, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(val, dest); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON stores value and remembers the key in the startup's key set so
// Invalidate can find it.
func (c *Cache) SetJSON(ctx context.Context, startupID uint, key string, value interface{}) error {
	if c == nil {
		return nil
	}
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	full := entryKey(startupID, key)
	_, err = c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, full, b, c.ttl)
		p.SAdd(ctx, setKey(startupID), full)
		p.Expire(ctx, setKey(startupID), c.ttl)
		return nil
	})
	return err
}

// Version returns the startup's cache version. Invalidate bumps it, so a
// value computed before an invalidation and stored under the old version is
// never read again.
func (c *Cache) Version(ctx context.Context, startupID uint) (int64, error) {
	if c == nil {
		return 0, nil
	}
	v, err := c.rdb.Get(ctx, versionKey(startupID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Invalidate bumps the startup's version and drops every cached value.
func (c *Cache) Invalidate(ctx context.Context, startupID uint) error {
	if c == nil {
		return nil
	}
	if err := c.rdb.Incr(ctx, versionKey(startupID)).Err(); err != nil {
		return err
	}
	keys, err := c.rdb.SMembers(ctx, setKey(startupID)).Result()
	if err != nil {
		return err
	}
	keys = append(keys, setKey(startupID))
	return c.rdb.Del(ctx, keys...).Err()
}

// WithLock runs fn while holding the named per-startup lock. Without Redis
// fn runs unguarded.
func (c *Cache) WithLock(ctx context.Context, name string, startupID uint, ttl time.Duration, fn func(context.Context) error) error {
	if c == nil {
		return fn(ctx)
	}
	lock, err := c.locker.Obtain(ctx, fmt.Sprintf("lock:%s:%d", name, startupID), ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return ErrLocked
	}
	if err != nil {
		return err
	}
	defer func() {
		_ = lock.Release(context.Background())
	}()
	return fn(ctx)
}
