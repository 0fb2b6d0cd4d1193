package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/nsvirk/bhavapi/internal/config"
	"github.com/nsvirk/bhavapi/pkg/utils/zaplogger"
	"github.com/redis/go-redis/v9"
)

// ConnectRedis connects to Redis and checks the connection
func ConnectRedis(cfg *config.Config) (*redis.Client, error) {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
		Password: cfg.RedisPassword,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	zaplogger.Info("  * redis connected", zaplogger.Fields{"addr": redisClient.Options().Addr})
	return redisClient, nil
}
