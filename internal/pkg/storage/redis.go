package storage

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/redis/go-redis/v9"
)

var _ Backend = (*RedisStore)(nil)

// RedisStore keeps registry records in Redis under a per-service namespace.
// Sequences use INCR, so several registry processes may share one instance.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

func NewRedisStore(addr, namespace string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr}), namespace)
}

func NewRedisStoreFromClient(client *redis.Client, namespace string) *RedisStore {
	return &RedisStore{client: client, namespace: namespace}
}

func (r *RedisStore) GenerateKey(key string) string {
	return fmt.Sprintf("%s:%s", r.namespace, key)
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := r.client.Get(ctx, r.GenerateKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, nil
}

func (r *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.GenerateKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Scan(ctx context.Context, prefix string, fn func(key string, value []byte) error) error {
	nsPrefix := r.GenerateKey(prefix)
	var keys []string
	iter := r.client.Scan(ctx, 0, nsPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %q: %w", prefix, err)
	}
	slices.Sort(keys)

	for _, k := range keys {
		v, err := r.client.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redis get %q: %w", k, err)
		}
		if err := fn(strings.TrimPrefix(k, r.namespace+":"), v); err != nil {
			return err
		}
	}
	return nil
}

func (r *RedisStore) Close() error { return r.client.Close() }

func (r *RedisStore) Sequence(name string, first int64) (Sequence, error) {
	return &redisSequence{client: r.client, key: r.GenerateKey("seq:" + name), first: first}, nil
}

type redisSequence struct {
	client *redis.Client
	key    string
	first  int64
}

// Next relies on INCR being atomic on the server; the first INCR returns 1.
func (s *redisSequence) Next(ctx context.Context) (int64, error) {
	n, err := s.client.Incr(ctx, s.key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %q: %w", s.key, err)
	}
	return s.first + n - 1, nil
}
