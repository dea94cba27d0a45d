package room

import "sync"

// LockTable hands out one mutex per room id. The store only gives us
// single-key atomicity, so every multi-key sequence (membership
// rewrite, stroke commit, undo/redo pop-then-push) runs under the
// room's lock. Locks are never held across calls into the hub.
type LockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewLockTable() *LockTable {
	return &LockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *LockTable) For(roomID string) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[roomID]
	if !ok {
		l = &sync.Mutex{}
		t.locks[roomID] = l
	}
	return l
}

// Forget drops a room's mutex after the room is deleted.
func (t *LockTable) Forget(roomID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.locks, roomID)
}
