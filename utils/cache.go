// File: utils/cache.go
package utils

import (
	"context"
	"fmt"
	"time"

	"fieldservice/config"

	"github.com/go-redis/redis/v8"
)

// LockClient backs the cross-instance booking lock. Nil when REDIS_ADDR is unset.
var LockClient *redis.Client

// InitLockCache connects the booking-lock Redis client. An empty address leaves
// LockClient nil so callers fall back to in-process locking.
func InitLockCache() error {
	if config.AppConfig.RedisAddr == "" {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("connect to Redis (lock): %w", err)
	}
	LockClient = client
	return nil
}
