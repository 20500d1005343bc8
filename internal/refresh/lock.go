package refresh

import (
	"context"
	"sync"
)

// Lock guards a refresh pass so concurrent triggers coalesce into a
// single in-flight refresh. Implementations may be process-local or
// distributed across instances.
type Lock interface {
	// TryAcquire attempts to acquire the refresh lock.
	// Returns true if acquired, false if a refresh is already in flight.
	TryAcquire(ctx context.Context) (bool, error)

	// Release releases the lock
	Release(ctx context.Context) error
}

// LocalLock is a process-local refresh guard
type LocalLock struct {
	mu   sync.Mutex
	held bool
}

// NewLocalLock creates new process-local lock
func NewLocalLock() *LocalLock {
	return &LocalLock{}
}

// TryAcquire acquires the lock unless it is already held
func (l *LocalLock) TryAcquire(_ context.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.held {
		return false, nil
	}
	l.held = true
	return true, nil
}

// Release releases the lock
func (l *LocalLock) Release(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.held = false
	return nil
}
