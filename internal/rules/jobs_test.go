package rules

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coldwatch/coldwatch/internal/alert"
	"github.com/coldwatch/coldwatch/internal/model"
)

type stubSource struct {
	sensors []model.Sensor
	err     error
}

func (s *stubSource) Sensors(context.Context) ([]model.Sensor, error) { return s.sensors, s.err }
func (s *stubSource) StaleDoorReadings(context.Context, time.Time) ([]model.SensorReading, error) {
	return nil, nil
}
func (s *stubSource) Items(context.Context) ([]model.Item, error) { return nil, nil }

type stubBeats struct{}

func (stubBeats) Heartbeats(context.Context) (map[string]time.Time, error) {
	return nil, nil
}

// failNth fails dispatch for exactly one candidate index.
type failNth struct {
	n     int
	calls int
}

func (f *failNth) Dispatch(_ context.Context, _ alert.Candidate) (*model.Alert, error) {
	idx := f.calls
	f.calls++
	if idx == f.n {
		return nil, errors.New("db down")
	}
	return &model.Alert{}, nil
}

func TestJobs_BadCandidateDoesNotAbortTick(t *testing.T) {
	src := &stubSource{sensors: []model.Sensor{{ID: 1}, {ID: 2}, {ID: 3}}} // all offline (never pinged)
	disp := &failNth{n: 0}
	j := NewJobs(src, stubBeats{}, disp, Options{OfflineWindow: 10 * time.Minute})

	err := j.CheckSensorOffline(context.Background())
	if err == nil {
		t.Fatal("tick with a failed candidate should report an error")
	}
	if disp.calls != 3 {
		t.Fatalf("dispatch calls: got %d, want 3 (remaining candidates still dispatch)", disp.calls)
	}
}

func TestJobs_SnapshotErrorFailsTick(t *testing.T) {
	src := &stubSource{err: errors.New("db down")}
	j := NewJobs(src, stubBeats{}, &failNth{n: -1}, Options{OfflineWindow: time.Minute})

	if err := j.CheckSensorOffline(context.Background()); err == nil {
		t.Fatal("snapshot fetch failure should fail the tick")
	}
}

func TestJobs_CleanTickReturnsNil(t *testing.T) {
	src := &stubSource{sensors: []model.Sensor{{ID: 1}}}
	j := NewJobs(src, stubBeats{}, &failNth{n: -1}, Options{OfflineWindow: time.Minute})

	if err := j.CheckSensorOffline(context.Background()); err != nil {
		t.Fatalf("clean tick: %v", err)
	}
}
