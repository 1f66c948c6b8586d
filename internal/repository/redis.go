package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "geo:"

// RedisRepository keeps encoded envelopes under geo:<ip> with a TTL.
type RedisRepository struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisRepository(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisRepository {
	return &RedisRepository{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func cacheKey(ip string) string {
	return keyPrefix + ip
}

func (r *RedisRepository) Set(ctx context.Context, ip string, data []byte) error {
	err := r.client.Set(ctx, cacheKey(ip), data, r.ttl).Err()
	if err != nil {
		r.logger.Error("failed to set envelope in cache",
			zap.String("ip", ip),
			zap.Error(err))
	}
	return err
}

// Get returns nil data and no error on a miss.
func (r *RedisRepository) Get(ctx context.Context, ip string) ([]byte, error) {
	data, err := r.client.Get(ctx, cacheKey(ip)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("failed to get envelope from cache",
			zap.String("ip", ip),
			zap.Error(err))
		return nil, err
	}
	return data, nil
}

func (r *RedisRepository) Delete(ctx context.Context, ip string) error {
	return r.client.Del(ctx, cacheKey(ip)).Err()
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}
