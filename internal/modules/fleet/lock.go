// README: Reseed serialisation, in process or across instances via Redis.
package fleet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Locker serialises fleet reseeds. Unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context) (unlock func(), err error)
}

// LocalLocker is a context-aware mutex for single-instance deployments.
type LocalLocker struct {
	sem chan struct{}
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{sem: make(chan struct{}, 1)}
}

func (l *LocalLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

const (
	reseedLockKey   = "fleet:reseed:lock"
	lockPollDelay   = 50 * time.Millisecond
	lockReleaseWait = 2 * time.Second
)

// releaseScript deletes the lock only if it still holds our token, so an
// expired lock re-acquired by another instance is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker is a SET NX PX lease shared by every API instance.
type RedisLocker struct {
	redis *redis.Client
	ttl   time.Duration
}

func NewRedisLocker(redis *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{redis: redis, ttl: ttl}
}

func (l *RedisLocker) Lock(ctx context.Context) (func(), error) {
	token := uuid.NewString()
	for {
		ok, err := l.redis.SetNX(ctx, reseedLockKey, token, l.ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, lockWaitErr(ctx)
			}
			return nil, err
		}
		if ok {
			return func() { l.release(token) }, nil
		}
		select {
		case <-ctx.Done():
			return nil, lockWaitErr(ctx)
		case <-time.After(lockPollDelay):
		}
	}
}

// lockWaitErr reports a timed-out wait as ErrLockBusy and passes cancellation through.
func lockWaitErr(ctx context.Context) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return ErrLockBusy
	}
	return ctx.Err()
}

func (l *RedisLocker) release(token string) {
	ctx, cancel := context.WithTimeout(context.Background(), lockReleaseWait)
	defer cancel()
	_ = releaseScript.Run(ctx, l.redis, []string{reseedLockKey}, token).Err()
}
