package ingest

import "sync"

// keyedLocks provides per-datasource mutual exclusion. A single global lock
// would serialize unrelated tenants, so each key owns its own mutex.
// Entries are retained for the process lifetime; the key space is bounded
// by the number of datasources.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*sync.Mutex)}
}

// tryAcquire attempts to take the lock for key without blocking. On success
// the returned release function must be called on every exit path.
func (k *keyedLocks) tryAcquire(key string) (func(), bool) {
	k.mu.Lock()
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	if !lock.TryLock() {
		return nil, false
	}
	return lock.Unlock, true
}
