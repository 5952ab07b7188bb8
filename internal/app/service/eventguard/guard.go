// Package eventguard remembers provider events that were fully processed so
// redeliveries can be acknowledged without touching the stores. It is an
// optimization only: every handler stays idempotent without it.
package eventguard

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/pkg/config"
	"github.com/fatflowers/sponsorship/pkg/logctx"
)

const keyPrefix = "sponsorship:webhook:event:"

type Guard interface {
	// Seen reports whether eventID was already processed successfully.
	Seen(ctx context.Context, eventID string) bool
	// MarkDone records eventID as processed.
	MarkDone(ctx context.Context, eventID string)
}

// New returns a Redis-backed guard, or a no-op guard when client is nil.
func New(client *redis.Client, cfg *config.Config, log *zap.SugaredLogger) Guard {
	if client == nil {
		return Nop{}
	}
	ttl := cfg.Redis.EventTTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisGuard{client: client, ttl: ttl, log: log}
}

// RedisGuard stores processed event ids with a TTL. Redis errors are logged
// and treated as "not seen".
type RedisGuard struct {
	client *redis.Client
	ttl    time.Duration
	log    *zap.SugaredLogger
}

func (g *RedisGuard) Seen(ctx context.Context, eventID string) bool {
	if eventID == "" {
		return false
	}
	err := g.client.Get(ctx, keyPrefix+eventID).Err()
	if err == nil {
		return true
	}
	if !errors.Is(err, redis.Nil) {
		logctx.FromCtx(ctx, g.log).Warnw("event_guard_lookup_failed", "event_id", eventID, "err", err)
	}
	return false
}

func (g *RedisGuard) MarkDone(ctx context.Context, eventID string) {
	if eventID == "" {
		return
	}
	if err := g.client.Set(ctx, keyPrefix+eventID, "done", g.ttl).Err(); err != nil {
		logctx.FromCtx(ctx, g.log).Warnw("event_guard_mark_failed", "event_id", eventID, "err", err)
	}
}

// Nop never reports an event as seen.
type Nop struct{}

func (Nop) Seen(context.Context, string) bool { return false }

func (Nop) MarkDone(context.Context, string) {}

var Module = fx.Options(
	fx.Provide(New),
)
