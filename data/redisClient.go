package data

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KotFed0t/netbuy_report_bot/config"
	"github.com/redis/go-redis/v9"
)

// NewRedisClient connects the redis instance that holds the KIS token slot.
func NewRedisClient(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("Redis connected", slog.String("addr", rdb.Options().Addr))

	return rdb, nil
}
