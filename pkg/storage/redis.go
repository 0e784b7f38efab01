package storage

import (
	"context"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deckforge/deckforge/pkg/errors"
)

// RedisStore keeps archives as redis string values, optionally with a
// TTL so scratch copies expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// resolveRedis interprets redis://host:port/db/key... URIs. The first
// path segment selects the database when numeric; everything after it
// is the key.
func resolveRedis(u *url.URL, cfg Config) (Store, string, error) {
	segs := splitPath(u.Path)
	db := 0
	if len(segs) > 0 && isDigits(segs[0]) {
		db, _ = strconv.Atoi(segs[0])
		segs = segs[1:]
	}
	if len(segs) == 0 {
		return nil, "", errors.New(errors.ErrCodeInvalidInput, "redis uri needs a key: %s", u.String())
	}
	key := strings.Join(segs, "/")

	opts := &redis.Options{Addr: u.Host, DB: db}
	if u.User != nil {
		opts.Username = u.User.Username()
		if password, ok := u.User.Password(); ok {
			opts.Password = password
		}
	}
	return NewRedisStore(redis.NewClient(opts), cfg.RedisTTL), key, nil
}

func (s *RedisStore) ReadBytes(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, errors.New(errors.ErrCodeNotFound, "no such key: %s", key)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "redis get %s", key)
	}
	return data, nil
}

func (s *RedisStore) WriteBytes(ctx context.Context, key string, data []byte) error {
	if err := s.client.Set(ctx, key, data, s.ttl).Err(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "redis set %s", key)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
