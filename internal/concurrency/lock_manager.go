package concurrency

import (
	"sync"
)

// LockManager handles named locks. The merchant purchase path uses it to
// serialize same-player purchases in-process (FIFO per player) before the
// database row lock provides the authoritative guard.
type LockManager struct {
	locks sync.Map
}

// NewLockManager creates a new LockManager
func NewLockManager() *LockManager {
	return &LockManager{}
}

// GetLock returns a mutex for the given key
func (lm *LockManager) GetLock(key string) *sync.Mutex {
	lock, _ := lm.locks.LoadOrStore(key, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
