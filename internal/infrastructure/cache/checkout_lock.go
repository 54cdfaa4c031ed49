package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	customErr "github.com/wekeepgrowing/ticket-payment/internal/domain/errors"
	"go.uber.org/zap"
)

const checkoutLockPrefix = "checkout:"

// releaseScript deletes the lock only if it still holds our owner id.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisCheckoutLock keeps concurrent checkouts of the same payment token from
// racing across service instances. The processor idempotency key still
// guarantees a single charge; the lock only avoids wasted calls.
type RedisCheckoutLock struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCheckoutLock(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCheckoutLock {
	return &RedisCheckoutLock{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Acquire takes the lock for paymentToken until release is called or the TTL
// passes.
func (l *RedisCheckoutLock) Acquire(ctx context.Context, paymentToken string) (func(), error) {
	key := checkoutLockPrefix + paymentToken
	owner := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, owner, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return nil, customErr.ErrCheckoutInProgress
	}

	return func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, l.client, []string{key}, owner).Err(); err != nil && err != redis.Nil {
			l.logger.Warn("Failed to release checkout lock",
				zap.String("payment_token", paymentToken),
				zap.Error(err))
		}
	}, nil
}
