package alert

import (
	"context"
	"sync"
	"time"
)

// Gate decides whether an alert key may be sent now. ShouldSend records the
// send time and returns true when the key has no live entry; it returns false
// without touching the entry when the key was sent within ttl. Implementations
// must make the check-and-record atomic per key: two concurrent callers for
// the same key must not both receive true.
//
// When the check itself fails, implementations must return true alongside the
// error: the dispatcher fails open, and a gate that reports false on error
// would silently drop alerts whenever its backend is down.
type Gate interface {
	ShouldSend(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// MemoryGate is the in-process Gate: a mutex-guarded map from dedupe key to
// last-sent wall-clock time. Entries are never deleted; staleness is decided
// by comparison at read time.
type MemoryGate struct {
	mu       sync.Mutex
	lastSent map[string]time.Time
	now      func() time.Time // injectable for deterministic tests
}

// NewMemoryGate creates an empty MemoryGate.
func NewMemoryGate() *MemoryGate {
	return NewMemoryGateWithClock(time.Now)
}

// NewMemoryGateWithClock creates a MemoryGate that reads the wall clock from
// now instead of time.Now.
func NewMemoryGateWithClock(now func() time.Time) *MemoryGate {
	return &MemoryGate{
		lastSent: make(map[string]time.Time),
		now:      now,
	}
}

// ShouldSend permits the send when key has never been sent, or when strictly
// more than ttl has elapsed since the last permitted send. A permitted send
// refreshes the entry; a suppressed one leaves it untouched, so the recorded
// timestamp never regresses.
func (g *MemoryGate) ShouldSend(_ context.Context, key string, ttl time.Duration) (bool, error) {
	now := g.now()

	g.mu.Lock()
	defer g.mu.Unlock()

	last, ok := g.lastSent[key]
	if ok && now.Sub(last) <= ttl {
		return false, nil
	}
	g.lastSent[key] = now
	return true, nil
}
