package eventguard

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/sponsorship/pkg/config"
)

func TestNew_NilClientIsNop(t *testing.T) {
	g := New(nil, &config.Config{}, zap.NewNop().Sugar())
	require.IsType(t, Nop{}, g)
	g.MarkDone(context.Background(), "evt_1")
	require.False(t, g.Seen(context.Background(), "evt_1"))
}

func TestRedisGuard_UnreachableRedisIsNotSeen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	g := New(client, &config.Config{}, zap.NewNop().Sugar())
	rg, ok := g.(*RedisGuard)
	require.True(t, ok)
	require.Equal(t, 72*time.Hour, rg.ttl)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NotPanics(t, func() { g.MarkDone(ctx, "evt_1") })
	require.False(t, g.Seen(ctx, "evt_1"))
	require.False(t, g.Seen(ctx, ""))
}
