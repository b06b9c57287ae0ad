package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const resetKeyPrefix = "reset-token:"

// RedisTokenStore keeps reset tokens in Redis so any server in the pool can
// consume a token minted by another.
type RedisTokenStore struct {
	client *redis.Client
}

func NewRedisTokenStore(addr string) *RedisTokenStore {
	return &RedisTokenStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// NewRedisTokenStoreWithClient wraps an existing client (shared with the hub).
func NewRedisTokenStoreWithClient(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{client: client}
}

func (s *RedisTokenStore) Put(ctx context.Context, token, userId string, ttl time.Duration) error {
	return s.client.Set(ctx, resetKeyPrefix+token, userId, ttl).Err()
}

func (s *RedisTokenStore) Consume(ctx context.Context, token string) (string, error) {
	// GETDEL makes consumption atomic across servers.
	userId, err := s.client.GetDel(ctx, resetKeyPrefix+token).Result()
	if err == redis.Nil {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", err
	}
	return userId, nil
}

func (s *RedisTokenStore) Close() error {
	return s.client.Close()
}
