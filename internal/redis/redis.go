package redis

import (
	"context"
	"sync"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"github.com/fakhrymubarak/weather-advisor/internal/config"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient returns the shared client for the rate limiter backend.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = redisv9.NewClient(&redisv9.Options{
			Addr:        config.GetRedisAddr(),
			DialTimeout: 2 * time.Second,
			ReadTimeout: time.Second,
		})
	})
	return client
}

// Ping checks that the server at the configured address answers.
func Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return GetClient().Ping(ctx).Err()
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	if client != nil {
		_ = client.Close()
	}
	once = sync.Once{}
	client = nil
}
