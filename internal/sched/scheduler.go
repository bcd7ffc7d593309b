package sched

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coldwatch/coldwatch/internal/metrics"
)

// Task is one bounded unit of scheduled work: fetch snapshot, evaluate,
// dispatch. A non-nil error marks the tick failed; it is logged and the job
// waits for its next interval.
type Task func(ctx context.Context) error

// tickTimeout bounds a single tick. It also caps how long a draining tick can
// hold up shutdown.
const tickTimeout = time.Minute

type job struct {
	name     string
	interval time.Duration
	run      Task
}

// Scheduler owns a set of (name, interval, task) registrations and runs each
// on its own fixed interval, independently of the others. Jobs never retry
// within a tick and never terminate on a tick failure.
type Scheduler struct {
	mu   sync.Mutex
	jobs []job
}

// New creates an empty Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Register adds a job. Must be called before Run.
func (s *Scheduler) Register(name string, interval time.Duration, run Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs = append(s.jobs, job{name: name, interval: interval, run: run})
}

// Run starts one ticker goroutine per registered job and blocks until ctx is
// cancelled. Shutdown is graceful: tickers stop, in-flight ticks finish, then
// Run returns.
func (s *Scheduler) Run(ctx context.Context) {
	s.mu.Lock()
	jobs := make([]job, len(s.jobs))
	copy(jobs, s.jobs)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			s.loop(ctx, j)
		}(j)
	}

	slog.Info("scheduler started", "jobs", len(jobs))
	wg.Wait()
	slog.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, j job) {
	t := time.NewTicker(j.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.tick(ctx, j)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context, j job) {
	// Detach from the run context so cancellation stops future ticks without
	// aborting store calls already in flight; the timeout keeps a wedged job
	// from blocking the drain.
	tctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), tickTimeout)
	defer cancel()

	metrics.RuleTicks.WithLabelValues(j.name).Inc()
	start := time.Now()
	if err := j.run(tctx); err != nil {
		metrics.RuleTickErrors.WithLabelValues(j.name).Inc()
		slog.Error("scheduler: tick failed",
			"job", j.name, "elapsed", time.Since(start), "err", err)
		return
	}
	slog.Debug("scheduler: tick done", "job", j.name, "elapsed", time.Since(start))
}
