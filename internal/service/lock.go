package service

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/skyreach/outreach-server-go/internal/config"
	"github.com/skyreach/outreach-server-go/internal/redis"
)

// AccountLock serializes dispatch work per account across processes. The lock
// is a Redis SET NX key with a TTL so a crashed holder cannot wedge the
// account for longer than the TTL.
type AccountLock struct {
	redis *redis.Client
	ttl   time.Duration
	poll  time.Duration
}

func NewAccountLock(client *redis.Client, ttl time.Duration) *AccountLock {
	if ttl <= 0 {
		ttl = config.AccountLockTTL
	}
	return &AccountLock{
		redis: client,
		ttl:   ttl,
		poll:  config.AccountLockPollInterval,
	}
}

// WithLock runs fn while holding the account's lock, polling until the lock
// is free or ctx is done. The lock is released on return; if fn outlives the
// TTL the key expires and another holder may proceed, which is accepted over
// holding accounts hostage to a dead process.
func (l *AccountLock) WithLock(ctx context.Context, accountID string, fn func(ctx context.Context) error) error {
	key := redis.AccountLockKey(accountID)

	for {
		acquired, err := l.redis.SetNX(ctx, key, "1", l.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire account lock: %w", err)
		}
		if acquired {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.poll):
		}
	}

	log.Debug().Str("accountId", accountID).Msg("account lock acquired")

	defer func() {
		// Release outside the caller's context so cancellation cannot leave
		// the key pinned until TTL expiry.
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := l.redis.Del(releaseCtx, key).Err(); err != nil && err != goredis.Nil {
			log.Warn().Err(err).Str("accountId", accountID).Msg("failed to release account lock")
		}
	}()

	return fn(ctx)
}
