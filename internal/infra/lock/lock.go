package lock

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrLockTimeout блокировку не удалось получить за отведённое время
	ErrLockTimeout = errors.New("lock: wait timeout")
)

// Locker неблокирующая попытка взять блокировку с TTL.
// token идентифицирует владельца и нужен для снятия.
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	Unlock(ctx context.Context, key, token string) error
}

// Guard ждёт блокировку, опрашивая Locker, не дольше wait
type Guard struct {
	locker Locker
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

// NewGuard ttl - время жизни блокировки, wait - сколько ждать освобождения
func NewGuard(locker Locker, ttl, wait time.Duration) *Guard {
	return &Guard{
		locker: locker,
		ttl:    ttl,
		wait:   wait,
		retry:  10 * time.Millisecond,
	}
}

// Acquire берёт блокировку ключа и возвращает функцию её снятия
func (g *Guard) Acquire(ctx context.Context, key string) (func(), error) {
	const op = "lock.Guard.Acquire"

	deadline := time.Now().Add(g.wait)
	for {
		token, ok, err := g.locker.Lock(ctx, key, g.ttl)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if ok {
			return func() {
				// снимаем даже если исходный контекст уже отменён
				unlockCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
				defer cancel()
				_ = g.locker.Unlock(unlockCtx, key, token)
			}, nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%s: key=%s: %w", op, key, ErrLockTimeout)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(g.retry):
		}
	}
}
