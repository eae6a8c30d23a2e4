package httputil

import (
	"sync/atomic"
)

// Semaphore bounds the number of in-flight fire-and-forget audit dispatches.
// When the gateway is saturated, new dispatches are dropped and counted
// rather than queued; the decision itself has already been returned to the
// caller and is never delayed by sink pressure.
type Semaphore struct {
	sem     chan struct{}
	dropped atomic.Int64
}

// NewSemaphore creates a semaphore with the given capacity (minimum 1).
func NewSemaphore(capacity int) *Semaphore {
	if capacity <= 0 {
		capacity = 100
	}
	return &Semaphore{sem: make(chan struct{}, capacity)}
}

// TryAcquire takes a slot without blocking. A false return means the
// dispatch was dropped; the drop is recorded for the stats endpoint.
func (s *Semaphore) TryAcquire() bool {
	select {
	case s.sem <- struct{}{}:
		return true
	default:
		s.dropped.Add(1)
		return false
	}
}

// Release returns a slot. Call only after a successful TryAcquire.
func (s *Semaphore) Release() {
	select {
	case <-s.sem:
	default:
	}
}

// InUse returns the number of dispatches currently in flight.
func (s *Semaphore) InUse() int { return len(s.sem) }

// Dropped returns the number of dispatches dropped at capacity.
func (s *Semaphore) Dropped() int64 { return s.dropped.Load() }
