package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/coldwatch/coldwatch/internal/model"
)

var ctx = context.Background()

func TestMemory_SaveAlertAssignsID(t *testing.T) {
	m := NewMemory()
	a := &model.Alert{Category: "power_failure", Timestamp: time.Now()}
	if err := m.SaveAlert(ctx, a); err != nil {
		t.Fatalf("SaveAlert: %v", err)
	}
	if a.ID == 0 {
		t.Fatal("SaveAlert must assign an ID")
	}
}

func TestMemory_AlertsFilterAndOrder(t *testing.T) {
	m := NewMemory()
	base := time.Now()
	m.SaveAlert(ctx, &model.Alert{Category: "a", Timestamp: base.Add(-time.Hour)})   //nolint:errcheck
	m.SaveAlert(ctx, &model.Alert{Category: "b", Timestamp: base})                   //nolint:errcheck
	m.SaveAlert(ctx, &model.Alert{Category: "c", Timestamp: base, Resolved: true})   //nolint:errcheck

	all, err := m.Alerts(ctx, nil)
	if err != nil {
		t.Fatalf("Alerts: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("all alerts: got %d, want 3", len(all))
	}
	if all[len(all)-1].Category != "a" {
		t.Errorf("order: oldest should come last, got %q", all[len(all)-1].Category)
	}

	unresolved := false
	open, _ := m.Alerts(ctx, &unresolved)
	if len(open) != 2 {
		t.Fatalf("unresolved alerts: got %d, want 2", len(open))
	}
}

func TestMemory_ResolveAlert(t *testing.T) {
	m := NewMemory()
	a := &model.Alert{Category: "door_left_ajar", Timestamp: time.Now()}
	m.SaveAlert(ctx, a) //nolint:errcheck

	at := time.Now()
	if err := m.ResolveAlert(ctx, a.ID, at); err != nil {
		t.Fatalf("ResolveAlert: %v", err)
	}

	resolved := true
	got, _ := m.Alerts(ctx, &resolved)
	if len(got) != 1 {
		t.Fatalf("resolved alerts: got %d, want 1", len(got))
	}
	if got[0].ResolvedAt == nil || !got[0].ResolvedAt.Equal(at) {
		t.Errorf("resolved_at: got %v, want %v", got[0].ResolvedAt, at)
	}

	if err := m.ResolveAlert(ctx, 999, at); !errors.Is(err, ErrNotFound) {
		t.Fatalf("resolve missing alert: got %v, want ErrNotFound", err)
	}
}

func TestMemory_SensorPing(t *testing.T) {
	m := NewMemory()
	s := &model.Sensor{Name: "Freezer 1", Type: "temperature"}
	m.SaveSensor(ctx, s) //nolint:errcheck

	at := time.Now()
	if err := m.UpdateSensorPing(ctx, s.ID, at); err != nil {
		t.Fatalf("UpdateSensorPing: %v", err)
	}
	got, err := m.SensorByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("SensorByID: %v", err)
	}
	if got.LastPing == nil || !got.LastPing.Equal(at) {
		t.Errorf("last_ping: got %v, want %v", got.LastPing, at)
	}

	if _, err := m.SensorByID(ctx, 999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing sensor: got %v, want ErrNotFound", err)
	}
}

func TestMemory_LatestReading(t *testing.T) {
	m := NewMemory()
	s := &model.Sensor{Name: "Fridge", Type: "temperature"}
	m.SaveSensor(ctx, s) //nolint:errcheck

	base := time.Now()
	m.SaveReading(ctx, &model.SensorReading{SensorID: s.ID, Timestamp: base.Add(-time.Hour), Value: 4}) //nolint:errcheck
	m.SaveReading(ctx, &model.SensorReading{SensorID: s.ID, Timestamp: base, Value: 6})                 //nolint:errcheck

	latest, err := m.LatestReading(ctx, s.ID)
	if err != nil {
		t.Fatalf("LatestReading: %v", err)
	}
	if latest == nil || latest.Value != 6 {
		t.Fatalf("latest: got %+v, want value 6", latest)
	}

	none, _ := m.LatestReading(ctx, 999)
	if none != nil {
		t.Fatal("sensor with no readings: want nil")
	}
}

func TestMemory_StaleDoorReadings(t *testing.T) {
	m := NewMemory()
	door := &model.Sensor{Name: "Door 1", Type: "door"}
	temp := &model.Sensor{Name: "Fridge", Type: "temperature"}
	m.SaveSensor(ctx, door) //nolint:errcheck
	m.SaveSensor(ctx, temp) //nolint:errcheck

	cutoff := time.Now()
	m.SaveReading(ctx, &model.SensorReading{SensorID: door.ID, Timestamp: cutoff.Add(-time.Minute), Value: 1}) //nolint:errcheck
	m.SaveReading(ctx, &model.SensorReading{SensorID: door.ID, Timestamp: cutoff.Add(time.Minute), Value: 1})  //nolint:errcheck
	m.SaveReading(ctx, &model.SensorReading{SensorID: temp.ID, Timestamp: cutoff.Add(-time.Minute), Value: 1}) //nolint:errcheck

	got, err := m.StaleDoorReadings(ctx, cutoff)
	if err != nil {
		t.Fatalf("StaleDoorReadings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d readings, want 1 (door-type, at or before cutoff only)", len(got))
	}
	if got[0].SensorID != door.ID {
		t.Errorf("sensor: got %d, want %d", got[0].SensorID, door.ID)
	}
}

func TestMemory_UserByEmail(t *testing.T) {
	m := NewMemory()
	m.SaveUser(ctx, &model.User{Email: "ops@example.com", HashedPassword: "x", Role: "admin"}) //nolint:errcheck

	u, err := m.UserByEmail(ctx, "ops@example.com")
	if err != nil {
		t.Fatalf("UserByEmail: %v", err)
	}
	if u.Role != "admin" {
		t.Errorf("role: got %q, want admin", u.Role)
	}

	if _, err := m.UserByEmail(ctx, "nobody@example.com"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing user: got %v, want ErrNotFound", err)
	}
}
