package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	cfgpkg "github.com/fatflowers/sponsorship/pkg/config"
)

// NewRedis returns a client for redis.addr, or nil when Redis is not configured.
func NewRedis(lc fx.Lifecycle, l *zap.SugaredLogger, cfg *cfgpkg.Config) *redis.Client {
	if cfg.Redis.Addr == "" {
		l.Infow("redis not configured; processed-event guard disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			// the guard is best effort, so an unreachable Redis only warns
			if err := client.Ping(pingCtx).Err(); err != nil {
				l.Warnw("redis ping failed", "addr", cfg.Redis.Addr, "err", err)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

var Module = fx.Options(
	fx.Provide(NewRedis),
)
