package rules

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/coldwatch/coldwatch/internal/alert"
	"github.com/coldwatch/coldwatch/internal/model"
)

// SnapshotSource supplies the domain state a tick evaluates over, read as of
// call time.
type SnapshotSource interface {
	Sensors(ctx context.Context) ([]model.Sensor, error)
	StaleDoorReadings(ctx context.Context, cutoff time.Time) ([]model.SensorReading, error)
	Items(ctx context.Context) ([]model.Item, error)
}

// HeartbeatProvider supplies the gateway id → last-heartbeat mapping used by
// the power-failure check.
type HeartbeatProvider interface {
	Heartbeats(ctx context.Context) (map[string]time.Time, error)
}

// Dispatcher is the downstream for rule candidates.
type Dispatcher interface {
	Dispatch(ctx context.Context, c alert.Candidate) (*model.Alert, error)
}

// Options carries the tunable windows for the four checks.
type Options struct {
	OfflineWindow    time.Duration
	PowerTimeout     time.Duration
	DoorOpenValue    float64
	DoorMaxOpen      time.Duration
	ExpiryDaysBefore int
}

// Jobs binds the snapshot source, heartbeat provider, and dispatcher into the
// four scheduler tasks. Each task is also callable on demand.
type Jobs struct {
	src   SnapshotSource
	beats HeartbeatProvider
	disp  Dispatcher
	now   func() time.Time

	mu   sync.RWMutex
	opts Options
}

// NewJobs wires the four checks.
func NewJobs(src SnapshotSource, beats HeartbeatProvider, disp Dispatcher, opts Options) *Jobs {
	return &Jobs{src: src, beats: beats, disp: disp, opts: opts, now: time.Now}
}

// SetOptions swaps the check windows, e.g. on a config reload. Schedule
// intervals are owned by the scheduler and unaffected.
func (j *Jobs) SetOptions(opts Options) {
	j.mu.Lock()
	j.opts = opts
	j.mu.Unlock()
}

func (j *Jobs) options() Options {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.opts
}

// CheckSensorOffline evaluates the liveness rule over all sensors.
func (j *Jobs) CheckSensorOffline(ctx context.Context) error {
	sensors, err := j.src.Sensors(ctx)
	if err != nil {
		return fmt.Errorf("fetch sensors: %w", err)
	}
	return j.dispatchAll(ctx, SensorOffline(sensors, j.options().OfflineWindow, j.now()))
}

// CheckPowerFailure evaluates gateway heartbeats.
func (j *Jobs) CheckPowerFailure(ctx context.Context) error {
	beats, err := j.beats.Heartbeats(ctx)
	if err != nil {
		return fmt.Errorf("fetch heartbeats: %w", err)
	}
	return j.dispatchAll(ctx, PowerFailure(beats, j.options().PowerTimeout, j.now()))
}

// CheckDoorAjar evaluates stale door readings.
func (j *Jobs) CheckDoorAjar(ctx context.Context) error {
	now := j.now()
	opts := j.options()
	readings, err := j.src.StaleDoorReadings(ctx, now.Add(-opts.DoorMaxOpen))
	if err != nil {
		return fmt.Errorf("fetch door readings: %w", err)
	}
	return j.dispatchAll(ctx, DoorAjar(readings, opts.DoorOpenValue, opts.DoorMaxOpen, now))
}

// CheckItemExpiry evaluates item expiry dates.
func (j *Jobs) CheckItemExpiry(ctx context.Context) error {
	items, err := j.src.Items(ctx)
	if err != nil {
		return fmt.Errorf("fetch items: %w", err)
	}
	return j.dispatchAll(ctx, ItemExpiry(items, j.options().ExpiryDaysBefore, j.now()))
}

// dispatchAll routes candidates in snapshot order. Failures are isolated per
// candidate: a bad one is logged and the rest still dispatch. The returned
// error only summarizes the tick for the scheduler's log.
func (j *Jobs) dispatchAll(ctx context.Context, cands []alert.Candidate) error {
	failed := 0
	for _, c := range cands {
		if _, err := j.disp.Dispatch(ctx, c); err != nil {
			failed++
			slog.Error("rules: dispatch failed",
				"category", c.Category, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d candidates failed", failed, len(cands))
	}
	return nil
}
