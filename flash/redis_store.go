package flash

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "flash:"

type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Add(ctx context.Context, token, key, msg string) error {
	k := redisKey(token, key)

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, k, msg)
		pipe.Expire(ctx, k, messageTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis.RPush: %w", err)
	}

	return nil
}

func (s *RedisStore) Pop(ctx context.Context, token, key string) ([]string, error) {
	k := redisKey(token, key)

	var messages *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		messages = pipe.LRange(ctx, k, 0, -1)
		pipe.Del(ctx, k)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("redis.LRange: %w", err)
	}

	return messages.Val(), nil
}

func redisKey(token, key string) string {
	return keyPrefix + token + ":" + key
}
