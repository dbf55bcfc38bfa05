package conversation

import "sync"

// userLocks serializes turns per user. Telegram can deliver two updates
// for the same chat concurrently, and interleaved session writes would
// let one turn clobber the other.
type userLocks struct {
	mu    sync.Mutex
	users map[int64]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{users: make(map[int64]*sync.Mutex)}
}

func (l *userLocks) forUser(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.users[userID]
	if !ok {
		lock = &sync.Mutex{}
		l.users[userID] = lock
	}
	return lock
}
