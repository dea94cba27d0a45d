package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"canvasroom/internal/config"
)

// RedisStore implements Store on a single Redis connection.
type RedisStore struct {
	db *redis.Client
}

func NewRedisConnection(cfg *config.RedisConfig) *redis.Client {
	if cfg.Host == "" {
		return nil
	}
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func NewRedisStore(db *redis.Client) *RedisStore {
	return &RedisStore{db: db}
}

func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.db.Set(ctx, key, value, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.db.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrKeyNotFound
	}
	return val, err
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.db.Del(ctx, keys...).Err()
}

func (s *RedisStore) ListAppend(ctx context.Context, key string, values ...string) error {
	args := make([]any, 0, len(values))
	for _, v := range values {
		args = append(args, v)
	}
	return s.db.RPush(ctx, key, args...).Err()
}

func (s *RedisStore) ListRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	return s.db.LRange(ctx, key, start, stop).Result()
}

func (s *RedisStore) ListPopLast(ctx context.Context, key string) (string, error) {
	val, err := s.db.RPop(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrEmptyList
	}
	return val, err
}

func (s *RedisStore) ListTrim(ctx context.Context, key string, start, stop int64) error {
	return s.db.LTrim(ctx, key, start, stop).Err()
}

func (s *RedisStore) SetAdd(ctx context.Context, key string, members ...string) error {
	args := make([]any, 0, len(members))
	for _, m := range members {
		args = append(args, m)
	}
	return s.db.SAdd(ctx, key, args...).Err()
}

func (s *RedisStore) SetReplaceAll(ctx context.Context, key string, members []string) error {
	pipe := s.db.Pipeline()
	pipe.Del(ctx, key)
	if len(members) > 0 {
		args := make([]any, 0, len(members))
		for _, m := range members {
			args = append(args, m)
		}
		pipe.SAdd(ctx, key, args...)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) SetMembers(ctx context.Context, key string) ([]string, error) {
	return s.db.SMembers(ctx, key).Result()
}

func (s *RedisStore) SetCard(ctx context.Context, key string) (int64, error) {
	return s.db.SCard(ctx, key).Result()
}

func (s *RedisStore) Keys(ctx context.Context, pattern string) ([]string, error) {
	var (
		cursor uint64
		keys   []string
	)
	for {
		batch, next, err := s.db.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
		if next == 0 {
			return keys, nil
		}
		cursor = next
	}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.db.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.db.Close()
}
