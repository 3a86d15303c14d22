package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/eapache/go-resiliency/retrier"
	"github.com/redis/go-redis/v9"

	"github.com/Pesokrava/point_of_sale/internal/config"
)

const pingTimeout = 5 * time.Second

// Dial creates a Redis client and checks it with PING
func Dial(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}

// WaitForRedis keeps dialing until Redis answers or retries run out
func WaitForRedis(cfg *config.Config, maxRetries int, retryDelay time.Duration) (*redis.Client, error) {
	var client *redis.Client
	r := retrier.New(retrier.ConstantBackoff(maxRetries, retryDelay), nil)
	err := r.RunCtx(context.Background(), func(ctx context.Context) error {
		var dialErr error
		client, dialErr = Dial(ctx, cfg)
		return dialErr
	})
	if err != nil {
		return nil, fmt.Errorf("redis %s unavailable: %w", cfg.GetRedisAddr(), err)
	}
	return client, nil
}
