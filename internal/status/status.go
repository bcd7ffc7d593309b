package status

import (
	"time"

	"github.com/coldwatch/coldwatch/internal/model"
)

// Dashboard status values, in priority order.
const (
	StatusOffline = "offline"
	StatusDanger  = "danger"
	StatusWarning = "warning"
	StatusOK      = "ok"
)

// OfflineWindow is how long without a ping marks a sensor offline on the
// dashboard.
const OfflineWindow = 10 * time.Minute

// warningMargin is the inner fraction of the threshold band that reports
// "warning" before an outright breach.
const warningMargin = 0.1

// View is the read-only projection of a sensor plus its newest reading served
// to the dashboard. Never persisted.
type View struct {
	SensorID     uint       `json:"sensor_id"`
	Name         string     `json:"name"`
	Type         string     `json:"type"`
	LastPing     *time.Time `json:"last_ping"`
	Value        *float64   `json:"value"`
	ThresholdMin *float64   `json:"threshold_min"`
	ThresholdMax *float64   `json:"threshold_max"`
	Status       string     `json:"status"`
}

// Compute derives the dashboard status for sensor from its newest reading.
// latest may be nil when the sensor has no readings. Priority, first match
// wins:
//
//  1. offline: no ping, or last ping strictly older than OfflineWindow.
//     Offline overrides threshold state even when a breaching value exists.
//  2. danger: value strictly below min or strictly above max.
//  3. warning: value inside the inner 10% margin of either threshold.
//     Needs both thresholds and a value; an inverted or zero-width band
//     yields no margin.
//  4. ok: otherwise.
//
// Compute has no side effects and emits no alerts.
func Compute(sensor model.Sensor, latest *model.SensorReading, now time.Time) View {
	var value *float64
	if latest != nil {
		v := latest.Value
		value = &v
	}

	return View{
		SensorID:     sensor.ID,
		Name:         sensor.Name,
		Type:         sensor.Type,
		LastPing:     sensor.LastPing,
		Value:        value,
		ThresholdMin: sensor.ThresholdMin,
		ThresholdMax: sensor.ThresholdMax,
		Status:       derive(sensor, value, now),
	}
}

func derive(s model.Sensor, value *float64, now time.Time) string {
	if s.LastPing == nil || now.Sub(*s.LastPing) > OfflineWindow {
		return StatusOffline
	}

	if value != nil {
		if s.ThresholdMin != nil && *value < *s.ThresholdMin {
			return StatusDanger
		}
		if s.ThresholdMax != nil && *value > *s.ThresholdMax {
			return StatusDanger
		}
	}

	if value != nil && s.ThresholdMin != nil && s.ThresholdMax != nil {
		band := *s.ThresholdMax - *s.ThresholdMin
		if band > 0 {
			if *value < *s.ThresholdMin+band*warningMargin {
				return StatusWarning
			}
			if *value > *s.ThresholdMax-band*warningMargin {
				return StatusWarning
			}
		}
	}

	return StatusOK
}
