package httputil

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSemaphoreTryAcquire(t *testing.T) {
	sem := NewSemaphore(2)

	if !sem.TryAcquire() {
		t.Error("first TryAcquire should succeed")
	}
	if !sem.TryAcquire() {
		t.Error("second TryAcquire should succeed")
	}
	if sem.TryAcquire() {
		t.Error("third TryAcquire should fail at capacity")
	}
	if sem.Dropped() != 1 {
		t.Errorf("Dropped = %d, want 1", sem.Dropped())
	}

	sem.Release()
	if !sem.TryAcquire() {
		t.Error("TryAcquire should succeed after Release")
	}
}

func TestSemaphoreConcurrent(t *testing.T) {
	sem := NewSemaphore(10)
	var acquired atomic.Int32
	var wg sync.WaitGroup

	for range 100 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if sem.TryAcquire() {
				acquired.Add(1)
				time.Sleep(5 * time.Millisecond)
				sem.Release()
			}
		}()
	}
	wg.Wait()

	if sem.InUse() != 0 {
		t.Errorf("InUse = %d after completion, want 0", sem.InUse())
	}
	if acquired.Load() == 0 {
		t.Error("expected at least one successful acquire")
	}
}

func TestNewSemaphoreDefaultCapacity(t *testing.T) {
	for _, bad := range []int{0, -5} {
		sem := NewSemaphore(bad)
		if cap(sem.sem) != 100 {
			t.Errorf("NewSemaphore(%d) capacity = %d, want 100", bad, cap(sem.sem))
		}
	}
}
