// x/syncx/timedmutex.go
package syncx

import "time"

// TimedMutex is an exclusive lock whose acquisition can be bounded by a
// timeout. Periodic tasks use it so a busy peer costs them one cycle,
// never a deadlock.
type TimedMutex struct {
	ch chan struct{}
}

func NewTimedMutex() *TimedMutex {
	m := &TimedMutex{ch: make(chan struct{}, 1)}
	m.ch <- struct{}{}
	return m
}

// Lock blocks until the mutex is held.
func (m *TimedMutex) Lock() { <-m.ch }

// TryLock attempts to take the mutex, waiting at most d. Reports whether the
// lock was acquired.
func (m *TimedMutex) TryLock(d time.Duration) bool {
	select {
	case <-m.ch:
		return true
	default:
	}
	if d <= 0 {
		return false
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-m.ch:
		return true
	case <-t.C:
		return false
	}
}

// Unlock releases the mutex. Unlocking an unheld mutex panics.
func (m *TimedMutex) Unlock() {
	select {
	case m.ch <- struct{}{}:
	default:
		panic("syncx: unlock of unlocked TimedMutex")
	}
}
