// Package redisrepo keeps the session slot in Redis, for terminals that share
// one login across machines.
package redisrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	apperrors "github.com/jrsteele09/book-inventory-client/internal/errors"
	"github.com/jrsteele09/book-inventory-client/storage"
)

var _ storage.Repo = (*RedisRepo)(nil)

type RedisRepo struct {
	client redis.Cmdable
	prefix string
}

type Option func(*RedisRepo)

// WithPrefix namespaces every key, e.g. "inventory:".
func WithPrefix(prefix string) Option {
	return func(r *RedisRepo) { r.prefix = prefix }
}

func New(client redis.Cmdable, opts ...Option) *RedisRepo {
	r := &RedisRepo{client: client}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dial connects and pings the server before returning.
func Dial(ctx context.Context, addr, password string, db int, opts ...Option) (*RedisRepo, *redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("[redisrepo Dial] ping %s: %w", addr, err)
	}
	return New(client, opts...), client, nil
}

func (r *RedisRepo) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		log.Err(err).Str("key", key).Msg("Failed to read session slot from redis")
		return nil, fmt.Errorf("[redisrepo Get] %s: %w", key, err)
	}
	return data, nil
}

// Set stores the value without a TTL; expiry is decided by the token, not the medium.
func (r *RedisRepo) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		log.Err(err).Str("key", key).Msg("Failed to write session slot to redis")
		return apperrors.Wrapf(err, "[redisrepo Set] %s", key)
	}
	return nil
}

