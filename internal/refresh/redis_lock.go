package refresh

import (
	"context"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	"go.uber.org/zap"

	"github.com/selivandex/situation-monitor/pkg/logger"
)

const refreshLockName = "situation_monitor:refresh:lock"

// RedisLock is a distributed refresh guard using the Redlock algorithm,
// for deployments running more than one instance against shared storage
type RedisLock struct {
	lockManager *redlock.RedLock
	ttl         time.Duration
	locked      bool
}

// NewRedisLock creates new Redis-backed refresh lock. The TTL bounds how
// long a crashed instance can block refreshes for everyone else.
func NewRedisLock(lockManager *redlock.RedLock, ttl time.Duration) *RedisLock {
	return &RedisLock{
		lockManager: lockManager,
		ttl:         ttl,
	}
}

// TryAcquire attempts to acquire the refresh lock
func (l *RedisLock) TryAcquire(ctx context.Context) (bool, error) {
	expiry, err := l.lockManager.Lock(ctx, refreshLockName, l.ttl)
	if err != nil {
		// Lock not acquired - another instance is refreshing
		logger.Debug("refresh lock held by another instance",
			zap.String("lock_name", refreshLockName))
		return false, nil
	}
	if expiry <= 0 {
		return false, fmt.Errorf("failed to acquire refresh lock: invalid expiry %v", expiry)
	}

	l.locked = true
	logger.Debug("refresh lock acquired",
		zap.String("lock_name", refreshLockName),
		zap.Duration("ttl", l.ttl))
	return true, nil
}

// Release releases the refresh lock
func (l *RedisLock) Release(ctx context.Context) error {
	if !l.locked {
		return nil
	}

	if err := l.lockManager.UnLock(ctx, refreshLockName); err != nil {
		// Lock may have already expired naturally
		logger.Warn("failed to release refresh lock",
			zap.String("lock_name", refreshLockName),
			zap.Error(err))
	}

	l.locked = false
	return nil
}
