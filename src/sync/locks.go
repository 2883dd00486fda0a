package sync

import "sync"

// itemLocks serializes sync runs per item. Two concurrent syncs for the
// same item would read the same starting cursor and double-apply pages,
// so callers take the item's lock before entering the pagination loop.
type itemLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newItemLocks() *itemLocks {
	return &itemLocks{locks: make(map[int64]*sync.Mutex)}
}

func (l *itemLocks) acquire(itemDBID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[itemDBID]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[itemDBID] = lock
	}
	return lock
}
