// Package telemetry keeps in-process counters for the stats endpoint. These
// are operational metrics only; nothing here feeds back into decisions.
package telemetry

import (
	"sync/atomic"
	"time"

	"github.com/wardenlabs/warden/pkg/engine"
)

// Counters tracks evaluation volume per decision plus cache behavior.
// All methods are safe for concurrent use.
type Counters struct {
	started time.Time

	approved  atomic.Int64
	reviewed  atomic.Int64
	escalated atomic.Int64
	blocked   atomic.Int64
	faulted   atomic.Int64

	cacheHits   atomic.Int64
	cacheMisses atomic.Int64
}

// NewCounters returns zeroed counters stamped with the start time.
func NewCounters() *Counters {
	return &Counters{started: time.Now()}
}

// RecordDecision bumps the counter for one finished evaluation.
func (c *Counters) RecordDecision(d engine.Decision, reason engine.Reason) {
	switch d {
	case engine.Approve:
		c.approved.Add(1)
	case engine.Review:
		c.reviewed.Add(1)
	case engine.Escalate:
		c.escalated.Add(1)
	case engine.Block:
		c.blocked.Add(1)
	}
	if reason == engine.ReasonPipelineFault {
		c.faulted.Add(1)
	}
}

// RecordCacheHit bumps the cache hit counter.
func (c *Counters) RecordCacheHit() { c.cacheHits.Add(1) }

// RecordCacheMiss bumps the cache miss counter.
func (c *Counters) RecordCacheMiss() { c.cacheMisses.Add(1) }

// Snapshot is a point-in-time view for the stats endpoint.
type Snapshot struct {
	UptimeSeconds float64          `json:"uptime_seconds"`
	Total         int64            `json:"total"`
	Decisions     map[string]int64 `json:"decisions"`
	PipelineFault int64            `json:"pipeline_faults"`
	CacheHits     int64            `json:"cache_hits"`
	CacheMisses   int64            `json:"cache_misses"`
}

// Snapshot captures current counter values.
func (c *Counters) Snapshot() Snapshot {
	approved := c.approved.Load()
	reviewed := c.reviewed.Load()
	escalated := c.escalated.Load()
	blocked := c.blocked.Load()

	return Snapshot{
		UptimeSeconds: time.Since(c.started).Seconds(),
		Total:         approved + reviewed + escalated + blocked,
		Decisions: map[string]int64{
			engine.Approve.String():  approved,
			engine.Review.String():   reviewed,
			engine.Escalate.String(): escalated,
			engine.Block.String():    blocked,
		},
		PipelineFault: c.faulted.Load(),
		CacheHits:     c.cacheHits.Load(),
		CacheMisses:   c.cacheMisses.Load(),
	}
}
