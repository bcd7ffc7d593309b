package alert

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestMemoryGate_FirstSendPermitted(t *testing.T) {
	g := NewMemoryGate()
	ok, err := g.ShouldSend(context.Background(), "k", time.Hour)
	if err != nil {
		t.Fatalf("ShouldSend: %v", err)
	}
	if !ok {
		t.Fatal("first send: got suppressed, want permitted")
	}
}

func TestMemoryGate_RepeatSuppressedThenPermittedAfterTTL(t *testing.T) {
	base := time.Now()
	g := NewMemoryGate()
	g.now = fixedClock(base)

	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); !ok {
		t.Fatal("first send: want permitted")
	}
	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); ok {
		t.Fatal("immediate repeat: want suppressed")
	}

	// Exactly at the TTL boundary is still suppressed (strict >).
	g.now = fixedClock(base.Add(time.Hour))
	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); ok {
		t.Fatal("at TTL boundary: want suppressed")
	}

	g.now = fixedClock(base.Add(time.Hour + time.Second))
	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); !ok {
		t.Fatal("past TTL: want permitted")
	}
}

func TestMemoryGate_SuppressDoesNotRefreshEntry(t *testing.T) {
	base := time.Now()
	g := NewMemoryGate()
	g.now = fixedClock(base)
	g.ShouldSend(context.Background(), "k", time.Hour) //nolint:errcheck

	// A suppressed call half-way through must not push the window out.
	g.now = fixedClock(base.Add(30 * time.Minute))
	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); ok {
		t.Fatal("half-way repeat: want suppressed")
	}

	// Measured from the ORIGINAL send, the TTL has now elapsed.
	g.now = fixedClock(base.Add(time.Hour + time.Minute))
	if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); !ok {
		t.Fatal("TTL from original send elapsed: want permitted")
	}
}

func TestMemoryGate_KeysAreIndependent(t *testing.T) {
	g := NewMemoryGate()
	g.ShouldSend(context.Background(), "a", time.Hour) //nolint:errcheck
	if ok, _ := g.ShouldSend(context.Background(), "b", time.Hour); !ok {
		t.Fatal("different key: want permitted")
	}
}

func TestMemoryGate_ConcurrentCallersSingleWinner(t *testing.T) {
	g := NewMemoryGate()
	const callers = 50

	var wg sync.WaitGroup
	permitted := make(chan struct{}, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := g.ShouldSend(context.Background(), "k", time.Hour); ok {
				permitted <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(permitted)

	if got := len(permitted); got != 1 {
		t.Fatalf("concurrent callers: got %d permits, want exactly 1", got)
	}
}
