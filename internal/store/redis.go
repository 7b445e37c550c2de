package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// Redis is the Redis backend. Each slot is a plain string key under prefix.
type Redis struct {
	rdb    *redis.Client
	prefix string
}

var _ Backend = (*Redis)(nil)

// NewRedis parses url, checks the connection and returns a backend whose keys
// all start with prefix.
func NewRedis(ctx context.Context, url, prefix string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	rdb := redis.NewClient(opt)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected", "addr", opt.Addr, "db", opt.DB)
	return NewRedisWithClient(rdb, prefix), nil
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(rdb *redis.Client, prefix string) *Redis {
	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) importsKey() string {
	return r.prefix + "imported_files"
}

// Slot returns the named slot stored at prefix+name.
func (r *Redis) Slot(name string) Slot {
	return &redisSlot{rdb: r.rdb, key: r.prefix + name}
}

// ImportedHash returns the sha256 recorded for a seed file path.
func (r *Redis) ImportedHash(ctx context.Context, path string) (string, error) {
	hash, err := r.rdb.HGet(ctx, r.importsKey(), path).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return hash, err
}

// SetImportedHash records the sha256 of an imported seed file.
func (r *Redis) SetImportedHash(ctx context.Context, path, hash string) error {
	return r.rdb.HSet(ctx, r.importsKey(), path, hash).Err()
}

type redisSlot struct {
	rdb *redis.Client
	key string
}

func (s *redisSlot) Load(ctx context.Context) ([]byte, error) {
	value, err := s.rdb.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load slot %s: %w", s.key, err)
	}
	return value, nil
}

func (s *redisSlot) Save(ctx context.Context, value []byte) error {
	if err := s.rdb.Set(ctx, s.key, value, 0).Err(); err != nil {
		return fmt.Errorf("save slot %s: %w", s.key, err)
	}
	return nil
}
