package registration

import (
	"sync"

	"github.com/mcoot/tourneybot/internal/model"
)

// userLocks serializes events per user; entries are dropped once unused
type userLocks struct {
	mu    sync.Mutex
	locks map[model.UserID]*userLock
}

type userLock struct {
	mu   sync.Mutex
	refs int
}

func newUserLocks() *userLocks {
	return &userLocks{locks: make(map[model.UserID]*userLock)}
}

func (l *userLocks) lock(id model.UserID) func() {
	l.mu.Lock()
	ul, ok := l.locks[id]
	if !ok {
		ul = &userLock{}
		l.locks[id] = ul
	}
	ul.refs++
	l.mu.Unlock()

	ul.mu.Lock()

	return func() {
		ul.mu.Unlock()

		l.mu.Lock()
		ul.refs--
		if ul.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
