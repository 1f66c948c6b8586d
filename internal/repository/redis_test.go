package repository

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "geo:8.8.8.8", cacheKey("8.8.8.8"))
}

func TestRedisRepository_Unreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	repo := NewRedisRepository(client, time.Hour, zap.NewNop())
	defer repo.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	data, err := repo.Get(ctx, "8.8.8.8")
	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Error(t, repo.Set(ctx, "8.8.8.8", []byte(`{}`)))
}
