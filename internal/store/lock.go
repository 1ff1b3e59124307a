package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrLockTimeout 在等待时间内未拿到家族写锁
var ErrLockTimeout = errors.New("family lock timeout")

const lockPollInterval = 50 * time.Millisecond

// FamilyLocker 同一家族的关系写入串行化
// Lock 返回的 unlock 必须调用（可重复调用）
type FamilyLocker interface {
	Lock(ctx context.Context, familyID string) (unlock func(), err error)
}

// RedisFamilyLocker: SET NX PX + token，释放时比对 token，避免误删他人持有的锁
type RedisFamilyLocker struct {
	c    *redis.Client
	ttl  time.Duration
	wait time.Duration
}

func NewRedisFamilyLocker(c *redis.Client, ttl, wait time.Duration) *RedisFamilyLocker {
	return &RedisFamilyLocker{c: c, ttl: ttl, wait: wait}
}

var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

func familyLockKey(familyID string) string {
	return "familytree:lock:family:" + familyID
}

func (l *RedisFamilyLocker) Lock(ctx context.Context, familyID string) (func(), error) {
	key := familyLockKey(familyID)
	token := uuid.NewString()

	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.c.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			break
		}
		if time.Now().After(deadline) {
			return nil, ErrLockTimeout
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			// 请求 ctx 可能已取消，释放用独立 ctx
			relCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			releaseScript.Run(relCtx, l.c, []string{key}, token)
		})
	}, nil
}

// MutexFamilyLocker 单进程实现（Redis 未启用时）
type MutexFamilyLocker struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func NewMutexFamilyLocker() *MutexFamilyLocker {
	return &MutexFamilyLocker{locks: map[string]chan struct{}{}}
}

func (l *MutexFamilyLocker) Lock(ctx context.Context, familyID string) (func(), error) {
	l.mu.Lock()
	ch, ok := l.locks[familyID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.locks[familyID] = ch
	}
	l.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}
