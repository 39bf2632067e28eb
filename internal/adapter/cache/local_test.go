package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/evmarket/checkout-client/internal/ports"
)

func TestLocalCache_SetGetDelete(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "session:a", "token", 0))
	val, err := c.Get(ctx, "session:a")
	require.NoError(t, err)
	assert.Equal(t, "token", val)

	require.NoError(t, c.Delete(ctx, "session:a"))
	_, err = c.Get(ctx, "session:a")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocalCache_MarshalsStructs(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"n": 1}, 0))
	val, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1}`, val)
}

func TestLocalCache_Expiry(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "short", "v", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestLocalCache_CloseTwice(t *testing.T) {
	c := NewLocalCache(time.Minute, zap.NewNop())
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
