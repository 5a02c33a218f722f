package latch

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	l := New(1)
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
}

func TestCountDownLatch_WaitBlocksUntilZero(t *testing.T) {
	l := New(1)
	var released atomic.Bool

	done := make(chan struct{})
	go func() {
		l.Wait()
		released.Store(true)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	if released.Load() {
		t.Fatal("Wait returned before CountDown")
	}

	l.CountDown()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after CountDown")
	}
}

func TestCountDownLatch_ReleasesAllWaiters(t *testing.T) {
	l := New(2)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Wait()
		}()
	}

	l.CountDown()
	if l.Count() != 1 {
		t.Errorf("Count() = %d, want 1", l.Count())
	}
	l.CountDown()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("waiters were not released")
	}
}

func TestCountDownLatch_StaysOpen(t *testing.T) {
	l := New(1)
	l.CountDown()
	l.CountDown()

	if l.Count() != 0 {
		t.Errorf("Count() = %d, want 0", l.Count())
	}

	done := make(chan struct{})
	go func() {
		l.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait blocked on an open latch")
	}
}
