package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/stay-client/internal/repository"
	"github.com/redis/go-redis/v9"
)

type kvStore struct {
	client *redis.Client
	prefix string
}

// NewKeyValueStore stores credentials as plain redis strings without TTL;
// the session lives until it is explicitly cleared.
func NewKeyValueStore(client *redis.Client, keyPrefix string) repository.KeyValueStore {
	return &kvStore{client: client, prefix: keyPrefix}
}

func (s *kvStore) key(k string) string {
	return s.prefix + k
}

func (s *kvStore) Get(ctx context.Context, key string) (string, error) {
	val, err := s.client.Get(ctx, s.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", repository.ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: redis get %s: %v", repository.ErrStorageUnavailable, key, err)
	}
	return val, nil
}

func (s *kvStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: redis set %s: %v", repository.ErrStorageUnavailable, key, err)
	}
	return nil
}

func (s *kvStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	if err := s.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("%w: redis del %v: %v", repository.ErrStorageUnavailable, keys, err)
	}
	return nil
}
