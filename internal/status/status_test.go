package status

import (
	"testing"
	"time"

	"github.com/coldwatch/coldwatch/internal/model"
)

var now = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func ptrF(v float64) *float64     { return &v }
func ptrT(t time.Time) *time.Time { return &t }

func reading(v float64) *model.SensorReading {
	return &model.SensorReading{Value: v, Timestamp: now}
}

// alive returns a sensor that pinged recently with the given thresholds.
func alive(min, max *float64) model.Sensor {
	return model.Sensor{
		ID: 1, Name: "Freezer 1", Type: "temperature",
		ThresholdMin: min, ThresholdMax: max,
		LastPing: ptrT(now.Add(-time.Minute)),
	}
}

func TestCompute_Statuses(t *testing.T) {
	tests := []struct {
		name   string
		sensor model.Sensor
		latest *model.SensorReading
		want   string
	}{
		{"never pinged", model.Sensor{ID: 1}, nil, StatusOffline},
		{"stale ping", model.Sensor{ID: 1, LastPing: ptrT(now.Add(-11 * time.Minute))}, nil, StatusOffline},
		{"ping at boundary is alive", model.Sensor{ID: 1, LastPing: ptrT(now.Add(-OfflineWindow))}, nil, StatusOK},

		{"below min is danger", alive(ptrF(10), ptrF(30)), reading(5), StatusDanger},
		{"above max is danger", alive(ptrF(10), ptrF(30)), reading(35), StatusDanger},
		{"at min is not a breach", alive(ptrF(10), ptrF(30)), reading(10), StatusWarning},
		{"at max is not a breach", alive(ptrF(10), ptrF(30)), reading(30), StatusWarning},

		// Band 10..30, margin 2: warning inside (10,12) and (28,30).
		{"near min is warning", alive(ptrF(10), ptrF(30)), reading(11), StatusWarning},
		{"near max is warning", alive(ptrF(10), ptrF(30)), reading(29), StatusWarning},
		{"mid band is ok", alive(ptrF(10), ptrF(30)), reading(20), StatusOK},
		{"margin boundary is ok", alive(ptrF(10), ptrF(30)), reading(12), StatusOK},

		{"no reading is ok when alive", alive(ptrF(10), ptrF(30)), nil, StatusOK},
		{"no thresholds is ok", alive(nil, nil), reading(99), StatusOK},
		{"only min set, breach", alive(ptrF(10), nil), reading(5), StatusDanger},
		{"only min set, no margin check", alive(ptrF(10), nil), reading(10.5), StatusOK},
		{"only max set, breach", alive(nil, ptrF(30)), reading(35), StatusDanger},

		// Inverted or zero-width bands produce no warning margin.
		{"inverted thresholds, in-range value", alive(ptrF(30), ptrF(10)), reading(20), StatusDanger},
		{"equal thresholds, exact value", alive(ptrF(20), ptrF(20)), reading(20), StatusOK},
	}

	for _, tt := range tests {
		got := Compute(tt.sensor, tt.latest, now).Status
		if got != tt.want {
			t.Errorf("%s: got %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestCompute_OfflineOverridesBreach(t *testing.T) {
	s := model.Sensor{
		ID: 1, ThresholdMin: ptrF(10), ThresholdMax: ptrF(30),
		LastPing: nil, // never pinged
	}
	v := Compute(s, reading(35), now)
	if v.Status != StatusOffline {
		t.Fatalf("offline sensor with breaching value: got %q, want offline", v.Status)
	}
}

func TestCompute_ProjectsSensorFields(t *testing.T) {
	s := alive(ptrF(10), ptrF(30))
	v := Compute(s, reading(20), now)

	if v.SensorID != s.ID || v.Name != s.Name || v.Type != s.Type {
		t.Errorf("view identity fields: got %+v", v)
	}
	if v.Value == nil || *v.Value != 20 {
		t.Errorf("value: got %v, want 20", v.Value)
	}
	if v.ThresholdMin == nil || *v.ThresholdMin != 10 {
		t.Errorf("threshold_min: got %v, want 10", v.ThresholdMin)
	}
}
