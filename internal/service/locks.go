package service

import (
	"context"
	"sync"
	"time"
)

// roomLocks hands out one exclusive slot per room ID so the
// read-validate-write booking sequence for a room runs alone. Slots are
// buffered channels of capacity one, which lets acquisition wait with a
// deadline instead of blocking indefinitely.
type roomLocks struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

func newRoomLocks() *roomLocks {
	return &roomLocks{slots: make(map[string]chan struct{})}
}

func (l *roomLocks) slot(roomID string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[roomID]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[roomID] = s
	}
	return s
}

// acquire takes the room's slot, waiting at most wait. It returns a
// release func on success and false if the slot stayed held past the
// deadline or the context was cancelled. Different rooms never contend.
func (l *roomLocks) acquire(ctx context.Context, roomID string, wait time.Duration) (func(), bool) {
	s := l.slot(roomID)
	select {
	case s <- struct{}{}:
		return func() { <-s }, true
	default:
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case s <- struct{}{}:
		return func() { <-s }, true
	case <-timer.C:
		return nil, false
	case <-ctx.Done():
		return nil, false
	}
}
