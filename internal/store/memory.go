package store

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/coldwatch/coldwatch/internal/model"
)

// ErrNotFound is returned when a referenced entity does not exist.
var ErrNotFound = errors.New("not found")

// Memory is a thread-safe in-memory store. It backs tests and the no-DSN
// development mode; the production store is Gorm.
type Memory struct {
	mu       sync.RWMutex
	sensors  map[uint]*model.Sensor
	readings []model.SensorReading
	items    map[uint]*model.Item
	alerts   map[uint]*model.Alert
	users    map[uint]*model.User

	nextSensor, nextReading, nextItem, nextAlert, nextUser uint
}

// NewMemory creates an empty Memory store.
func NewMemory() *Memory {
	return &Memory{
		sensors: make(map[uint]*model.Sensor),
		items:   make(map[uint]*model.Item),
		alerts:  make(map[uint]*model.Alert),
		users:   make(map[uint]*model.User),
	}
}

// --- alerts -----------------------------------------------------------------

// SaveAlert persists a, assigning its ID.
func (m *Memory) SaveAlert(_ context.Context, a *model.Alert) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextAlert++
	a.ID = m.nextAlert
	cp := *a
	m.alerts[a.ID] = &cp
	return nil
}

// Alerts lists alerts newest first. resolved filters by the resolved flag
// when non-nil.
func (m *Memory) Alerts(_ context.Context, resolved *bool) ([]model.Alert, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Alert, 0, len(m.alerts))
	for _, a := range m.alerts {
		if resolved != nil && a.Resolved != *resolved {
			continue
		}
		out = append(out, *a)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Timestamp.After(out[k].Timestamp) })
	return out, nil
}

// ResolveAlert flips the resolved flag and stamps ResolvedAt.
func (m *Memory) ResolveAlert(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.alerts[id]
	if !ok {
		return ErrNotFound
	}
	a.Resolved = true
	a.ResolvedAt = &at
	return nil
}

// --- sensors ----------------------------------------------------------------

// SaveSensor inserts s when its ID is zero, otherwise replaces it.
func (m *Memory) SaveSensor(_ context.Context, s *model.Sensor) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.ID == 0 {
		m.nextSensor++
		s.ID = m.nextSensor
	}
	cp := *s
	m.sensors[s.ID] = &cp
	return nil
}

// Sensors lists all sensors ordered by ID.
func (m *Memory) Sensors(_ context.Context) ([]model.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Sensor, 0, len(m.sensors))
	for _, s := range m.sensors {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// SensorByID returns one sensor or ErrNotFound.
func (m *Memory) SensorByID(_ context.Context, id uint) (*model.Sensor, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sensors[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

// UpdateSensorPing refreshes a sensor's last ping time.
func (m *Memory) UpdateSensorPing(_ context.Context, id uint, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sensors[id]
	if !ok {
		return ErrNotFound
	}
	s.LastPing = &at
	return nil
}

// --- readings ---------------------------------------------------------------

// SaveReading appends one reading.
func (m *Memory) SaveReading(_ context.Context, r *model.SensorReading) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextReading++
	r.ID = m.nextReading
	m.readings = append(m.readings, *r)
	return nil
}

// LatestReading returns the newest reading for a sensor, or nil when the
// sensor has none.
func (m *Memory) LatestReading(_ context.Context, sensorID uint) (*model.SensorReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var latest *model.SensorReading
	for i := range m.readings {
		r := m.readings[i]
		if r.SensorID != sensorID {
			continue
		}
		if latest == nil || r.Timestamp.After(latest.Timestamp) {
			cp := r
			latest = &cp
		}
	}
	return latest, nil
}

// StaleDoorReadings returns readings of door-type sensors whose timestamp is
// at or before cutoff, in insertion order.
func (m *Memory) StaleDoorReadings(_ context.Context, cutoff time.Time) ([]model.SensorReading, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []model.SensorReading
	for _, r := range m.readings {
		s, ok := m.sensors[r.SensorID]
		if !ok || s.Type != "door" {
			continue
		}
		if r.Timestamp.After(cutoff) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// --- items ------------------------------------------------------------------

// SaveItem inserts it when its ID is zero, otherwise replaces it.
func (m *Memory) SaveItem(_ context.Context, it *model.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if it.ID == 0 {
		m.nextItem++
		it.ID = m.nextItem
	}
	cp := *it
	m.items[it.ID] = &cp
	return nil
}

// Items lists all items ordered by ID.
func (m *Memory) Items(_ context.Context) ([]model.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.Item, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, *it)
	}
	sort.Slice(out, func(i, k int) bool { return out[i].ID < out[k].ID })
	return out, nil
}

// --- users ------------------------------------------------------------------

// SaveUser inserts u when its ID is zero, otherwise replaces it.
func (m *Memory) SaveUser(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID == 0 {
		m.nextUser++
		u.ID = m.nextUser
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// UserByEmail returns the account for email or ErrNotFound.
func (m *Memory) UserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}
