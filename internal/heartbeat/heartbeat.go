package heartbeat

import (
	"context"
	"sync"
	"time"
)

// Provider supplies the gateway id → last-heartbeat mapping consumed by the
// power-failure check.
type Provider interface {
	Heartbeats(ctx context.Context) (map[string]time.Time, error)
}

// Static is a settable in-memory Provider, used in tests and in deployments
// without a heartbeat bus.
type Static struct {
	mu    sync.RWMutex
	beats map[string]time.Time
}

// NewStatic creates a Static provider seeded with beats (may be nil).
func NewStatic(beats map[string]time.Time) *Static {
	s := &Static{beats: make(map[string]time.Time)}
	for gw, t := range beats {
		s.beats[gw] = t
	}
	return s
}

// Set records a heartbeat for gateway gw.
func (s *Static) Set(gw string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beats[gw] = at
}

// Heartbeats returns a copy of the current mapping.
func (s *Static) Heartbeats(_ context.Context) (map[string]time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]time.Time, len(s.beats))
	for gw, t := range s.beats {
		out[gw] = t
	}
	return out, nil
}
