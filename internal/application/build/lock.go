package build

import (
	"context"
	"sync"
	"time"

	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/database/redis"
	"github.com/turtacn/MetaNetX-Resolver/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/MetaNetX-Resolver/pkg/errors"
)

// LockMode decides what a build does when another build holds the target.
type LockMode string

const (
	// LockFail returns BuildInProgress immediately.
	LockFail LockMode = "fail"
	// LockWait blocks until the lock is free or the context is done.
	LockWait LockMode = "wait"
)

// ParseLockMode accepts "fail" and "wait"; anything else is an error.
func ParseLockMode(s string) (LockMode, error) {
	switch LockMode(s) {
	case LockFail, LockWait:
		return LockMode(s), nil
	}
	return "", errors.InvalidParam("lock mode must be fail or wait").WithDetail(s)
}

// Lock serializes builds per target.  The returned release func must be
// called exactly once and never fails the caller.
type Lock interface {
	Acquire(ctx context.Context, target string) (release func(), err error)
}

// LocalLock serializes builds inside one process.
type LocalLock struct {
	mode LockMode

	mu    sync.Mutex
	slots map[string]chan struct{}
}

func NewLocalLock(mode LockMode) *LocalLock {
	return &LocalLock{mode: mode, slots: make(map[string]chan struct{})}
}

func (l *LocalLock) slot(target string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[target]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[target] = ch
	}
	return ch
}

func (l *LocalLock) Acquire(ctx context.Context, target string) (func(), error) {
	ch := l.slot(target)
	if l.mode == LockWait {
		select {
		case ch <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	} else {
		select {
		case ch <- struct{}{}:
		default:
			return nil, errors.BuildInProgress(target)
		}
	}
	var once sync.Once
	return func() { once.Do(func() { <-ch }) }, nil
}

// RedisLock serializes builds across processes with a Redis lease.  The
// lease is kept alive by a watchdog while the build runs.
type RedisLock struct {
	factory    redis.LockFactory
	mode       LockMode
	ttl        time.Duration
	retryDelay time.Duration
	logger     logging.Logger
}

func NewRedisLock(factory redis.LockFactory, mode LockMode, ttl, retryDelay time.Duration, logger logging.Logger) *RedisLock {
	return &RedisLock{
		factory:    factory,
		mode:       mode,
		ttl:        ttl,
		retryDelay: retryDelay,
		logger:     logging.OrDefault(logger).Named("build-lock"),
	}
}

func (l *RedisLock) Acquire(ctx context.Context, target string) (func(), error) {
	retries := 1
	if l.mode == LockWait {
		retries = -1
	}
	opts := []redis.LockOption{
		redis.WithRetryCount(retries),
		redis.WithWatchdog(true),
	}
	if l.ttl > 0 {
		opts = append(opts, redis.WithLockTTL(l.ttl))
	}
	if l.retryDelay > 0 {
		opts = append(opts, redis.WithRetryDelay(l.retryDelay))
	}
	mu := l.factory.NewMutex("build:"+target, opts...)

	if err := mu.Lock(ctx); err != nil {
		if err == redis.ErrLockNotAcquired {
			return nil, errors.BuildInProgress(target)
		}
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mu.Unlock(ctx); err != nil {
				l.logger.Warn("Build lock release failed", logging.String("target", target), logging.Err(err))
			}
		})
	}, nil
}

//Personal.AI order the ending
