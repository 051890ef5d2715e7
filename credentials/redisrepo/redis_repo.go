package redisrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-kyc-client/credentials"
	"github.com/redis/go-redis/v9"
)

var _ credentials.Repo = (*RedisRepo)(nil)

const (
	DefaultPrefix = "kyc:session:"

	dialTimeout  = 3 * time.Second
	readTimeout  = 2 * time.Second
	writeTimeout = 2 * time.Second
	pingTimeout  = 2 * time.Second
)

// RedisRepo keeps the session keys in Redis under a namespace, so several clients on one
// host can each hold their own credentials.
type RedisRepo struct {
	client *redis.Client
	prefix string
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string) *RedisRepo {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisRepo{client: client, prefix: prefix}
}

// NewClient parses a Redis URL and returns a client that has answered a ping.
func NewClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("[redisrepo NewClient] invalid URL: %w", err)
	}
	options.DialTimeout = dialTimeout
	options.ReadTimeout = readTimeout
	options.WriteTimeout = writeTimeout

	client := redis.NewClient(options)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("[redisrepo NewClient] ping %s: %w", options.Addr, err)
	}
	return client, nil
}

func (rr *RedisRepo) key(k credentials.Key) string {
	return rr.prefix + string(k)
}

func (rr *RedisRepo) Get(ctx context.Context, key credentials.Key) (string, error) {
	v, err := rr.client.Get(ctx, rr.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", credentials.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("[RedisRepo Get] %s: %w", key, err)
	}
	return v, nil
}

func (rr *RedisRepo) Set(ctx context.Context, key credentials.Key, value string) error {
	if err := rr.client.Set(ctx, rr.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("[RedisRepo Set] %s: %w", key, err)
	}
	return nil
}

func (rr *RedisRepo) Delete(ctx context.Context, keys ...credentials.Key) error {
	if len(keys) == 0 {
		return nil
	}
	names := make([]string, 0, len(keys))
	for _, k := range keys {
		names = append(names, rr.key(k))
	}
	if err := rr.client.Del(ctx, names...).Err(); err != nil {
		return fmt.Errorf("[RedisRepo Delete]: %w", err)
	}
	return nil
}
