package prefs

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore implements Store using go-redis/v9. Useful when several operator
// machines should share one sign-in.
type RedisStore struct {
	client    *redis.Client
	namespace string
}

// NewRedisStore creates a new RedisStore from a Redis URL. Keys are written
// under the given namespace ("keyconsole" when empty).
func NewRedisStore(redisURL, namespace string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return &RedisStore{client: redis.NewClient(opts), namespace: namespace}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, NamespacedKey(s.namespace, key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

// Set stores the value without expiry; the server decides when a token dies.
func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, NamespacedKey(s.namespace, key), value, 0).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, NamespacedKey(s.namespace, key)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

var _ Store = (*RedisStore)(nil)
