package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/coldwatch/coldwatch/internal/alert"
	"github.com/coldwatch/coldwatch/internal/model"
	"github.com/coldwatch/coldwatch/internal/store"
)

// ErrSensorNotFound is returned when a reading references an unknown sensor.
var ErrSensorNotFound = errors.New("sensor not found")

// Store is the persistence surface ingestion needs.
type Store interface {
	SensorByID(ctx context.Context, id uint) (*model.Sensor, error)
	SaveReading(ctx context.Context, r *model.SensorReading) error
	UpdateSensorPing(ctx context.Context, id uint, at time.Time) error
}

// Dispatcher routes threshold-breach candidates.
type Dispatcher interface {
	Dispatch(ctx context.Context, c alert.Candidate) (*model.Alert, error)
}

// Service persists incoming sensor readings, refreshes sensor liveness, and
// raises threshold alerts on strict breaches. Both the HTTP route and the
// MQTT consumer funnel through here.
type Service struct {
	store Store
	disp  Dispatcher
	now   func() time.Time
}

// NewService wires an ingestion Service.
func NewService(st Store, disp Dispatcher) *Service {
	return &Service{store: st, disp: disp, now: time.Now}
}

// Ingest stores one reading for sensorID. The sensor's last ping is refreshed
// to the ingestion time, not the reading timestamp. A value strictly below
// threshold_min raises below_threshold; otherwise a value strictly above
// threshold_max raises above_threshold. Dispatch failures are logged but do
// not fail the ingestion: the reading is already persisted.
func (s *Service) Ingest(ctx context.Context, sensorID uint, ts time.Time, value float64) (*model.SensorReading, error) {
	sensor, err := s.store.SensorByID(ctx, sensorID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("%w: id %d", ErrSensorNotFound, sensorID)
		}
		return nil, fmt.Errorf("load sensor %d: %w", sensorID, err)
	}

	reading := &model.SensorReading{
		SensorID:  sensorID,
		Timestamp: ts,
		Value:     value,
	}
	if err := s.store.SaveReading(ctx, reading); err != nil {
		return nil, fmt.Errorf("save reading: %w", err)
	}
	if err := s.store.UpdateSensorPing(ctx, sensorID, s.now().UTC()); err != nil {
		slog.Warn("ingest: last_ping update failed", "sensor_id", sensorID, "err", err)
	}

	s.checkThresholds(ctx, sensor, value)
	return reading, nil
}

func (s *Service) checkThresholds(ctx context.Context, sensor *model.Sensor, value float64) {
	var cand *alert.Candidate
	id := sensor.ID

	switch {
	case sensor.ThresholdMin != nil && value < *sensor.ThresholdMin:
		cand = &alert.Candidate{
			Category: alert.CategoryBelowThreshold,
			Message: fmt.Sprintf("Sensor '%s' (ID %d) reading %.2f below threshold %.2f",
				sensor.Name, sensor.ID, value, *sensor.ThresholdMin),
			SensorID: &id,
		}
	case sensor.ThresholdMax != nil && value > *sensor.ThresholdMax:
		cand = &alert.Candidate{
			Category: alert.CategoryAboveThreshold,
			Message: fmt.Sprintf("Sensor '%s' (ID %d) reading %.2f above threshold %.2f",
				sensor.Name, sensor.ID, value, *sensor.ThresholdMax),
			SensorID: &id,
		}
	default:
		return
	}

	if _, err := s.disp.Dispatch(ctx, *cand); err != nil {
		slog.Error("ingest: threshold dispatch failed",
			"sensor_id", sensor.ID, "category", cand.Category, "err", err)
	}
}
