package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisLock(t *testing.T) (*RedisLock, *miniredis.Miniredis) {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLockFromClient(client), srv
}

func TestRedisLock_LockUnlock(t *testing.T) {
	ctx := context.Background()
	l, srv := newRedisLock(t)

	token, ok, err := l.Lock(ctx, "slot:a", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, srv.Exists("lock:slot:a"))

	_, ok, err = l.Lock(ctx, "slot:a", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second owner must not get the lock")

	require.NoError(t, l.Unlock(ctx, "slot:a", "someone-else"))
	assert.True(t, srv.Exists("lock:slot:a"), "foreign token must not release the lock")

	require.NoError(t, l.Unlock(ctx, "slot:a", token))
	assert.False(t, srv.Exists("lock:slot:a"))

	_, ok, err = l.Lock(ctx, "slot:a", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_Expires(t *testing.T) {
	ctx := context.Background()
	l, srv := newRedisLock(t)

	_, ok, err := l.Lock(ctx, "slot:b", 5*time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	srv.FastForward(6 * time.Second)

	_, ok, err = l.Lock(ctx, "slot:b", 5*time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLock_ServerDown(t *testing.T) {
	l, srv := newRedisLock(t)
	srv.Close()

	_, _, err := l.Lock(context.Background(), "slot:c", time.Second)
	assert.Error(t, err)
}

func TestLocalLock_Expires(t *testing.T) {
	ctx := context.Background()
	l := NewLocalLock()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	_, ok, _ := l.Lock(ctx, "k", time.Second)
	require.True(t, ok)
	_, ok, _ = l.Lock(ctx, "k", time.Second)
	require.False(t, ok)

	now = now.Add(2 * time.Second)
	_, ok, _ = l.Lock(ctx, "k", time.Second)
	assert.True(t, ok)
}

func TestGuard_MutualExclusion(t *testing.T) {
	lockers := map[string]Locker{"local": NewLocalLock()}
	redisLock, _ := newRedisLock(t)
	lockers["redis"] = redisLock

	for name, locker := range lockers {
		t.Run(name, func(t *testing.T) {
			g := NewGuard(locker, 5*time.Second, 5*time.Second)

			var inside, maxInside int32
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					release, err := g.Acquire(context.Background(), "slot:x")
					if !assert.NoError(t, err) {
						return
					}
					n := atomic.AddInt32(&inside, 1)
					for {
						m := atomic.LoadInt32(&maxInside)
						if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
							break
						}
					}
					time.Sleep(2 * time.Millisecond)
					atomic.AddInt32(&inside, -1)
					release()
				}()
			}
			wg.Wait()

			assert.Equal(t, int32(1), maxInside)
		})
	}
}

func TestGuard_Timeout(t *testing.T) {
	l := NewLocalLock()
	_, ok, _ := l.Lock(context.Background(), "busy", time.Minute)
	require.True(t, ok)

	g := NewGuard(l, time.Minute, 30*time.Millisecond)
	_, err := g.Acquire(context.Background(), "busy")

	assert.ErrorIs(t, err, ErrLockTimeout)
}
