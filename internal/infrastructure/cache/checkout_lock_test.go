package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"go.uber.org/zap"
)

func newTestLock(t *testing.T) (*RedisCheckoutLock, *miniredis.Miniredis) {
	t.Helper()
	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisCheckoutLock(client, time.Minute, zap.NewNop()), server
}

func TestRedisCheckoutLock_Exclusive(t *testing.T) {
	lock, server := newTestLock(t)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, "tok_1")
	require.NoError(t, err)
	assert.True(t, server.Exists("checkout:tok_1"))

	_, err = lock.Acquire(ctx, "tok_1")
	assert.ErrorIs(t, err, customErr.ErrCheckoutInProgress)

	other, err := lock.Acquire(ctx, "tok_2")
	require.NoError(t, err)
	other()

	release()
	assert.False(t, server.Exists("checkout:tok_1"))

	again, err := lock.Acquire(ctx, "tok_1")
	require.NoError(t, err)
	again()
}

func TestRedisCheckoutLock_Expires(t *testing.T) {
	lock, server := newTestLock(t)
	ctx := context.Background()

	stale, err := lock.Acquire(ctx, "tok_1")
	require.NoError(t, err)

	server.FastForward(2 * time.Minute)

	fresh, err := lock.Acquire(ctx, "tok_1")
	require.NoError(t, err)

	// Releasing the expired lock must not drop the new owner's lock.
	stale()
	assert.True(t, server.Exists("checkout:tok_1"))
	fresh()
	assert.False(t, server.Exists("checkout:tok_1"))
}
