// Package cache stores finished evaluations by content fingerprint so that
// identical (query, response, domain) triples skip the pipeline. Entries are
// the redacted audit trails; a cache hit replays the stored decision
// verbatim, which is sound because evaluation is deterministic.
package cache

import (
	"context"

	"github.com/wardenlabs/warden/pkg/engine"
)

// ResultCache is a fingerprint-keyed decision store. A miss is (nil, false,
// nil); errors are reserved for backend failures.
type ResultCache interface {
	Get(ctx context.Context, fingerprint string) (*engine.AuditTrail, bool, error)
	Set(ctx context.Context, trail *engine.AuditTrail) error
	Close() error
}

// Nop caches nothing. Used when no Redis is configured.
type Nop struct{}

func (Nop) Get(context.Context, string) (*engine.AuditTrail, bool, error) { return nil, false, nil }
func (Nop) Set(context.Context, *engine.AuditTrail) error                 { return nil }
func (Nop) Close() error                                                  { return nil }
