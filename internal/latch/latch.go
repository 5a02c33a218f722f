// Package latch provides a one-shot countdown latch.
package latch

import "sync"

// CountDownLatch lets goroutines wait until a count reaches zero.
// It cannot be reset; once open it stays open.
type CountDownLatch struct {
	mu    sync.Mutex
	cond  *sync.Cond
	count int
}

// New creates a latch that opens after count calls to CountDown.
func New(count int) *CountDownLatch {
	l := &CountDownLatch{count: count}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Wait blocks until the count reaches zero.
func (l *CountDownLatch) Wait() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for l.count > 0 {
		l.cond.Wait()
	}
}

// CountDown decrements the count, releasing all waiters when it reaches
// zero. Calls past zero are ignored.
func (l *CountDownLatch) CountDown() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.count == 0 {
		return
	}
	l.count--
	if l.count == 0 {
		l.cond.Broadcast()
	}
}

// Count returns the current count.
func (l *CountDownLatch) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}
