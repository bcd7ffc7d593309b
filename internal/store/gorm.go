package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/coldwatch/coldwatch/internal/model"
)

// Gorm is the MySQL-backed store used in production.
type Gorm struct {
	db *gorm.DB
}

// OpenGorm connects to MySQL, tunes the pool, and migrates the schema.
func OpenGorm(dsn string) (*Gorm, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(
		&model.Sensor{},
		&model.SensorReading{},
		&model.Item{},
		&model.Alert{},
		&model.User{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return &Gorm{db: db}, nil
}

// SaveAlert persists a.
func (g *Gorm) SaveAlert(ctx context.Context, a *model.Alert) error {
	return g.db.WithContext(ctx).Create(a).Error
}

// Alerts lists alerts newest first, optionally filtered by the resolved flag.
func (g *Gorm) Alerts(ctx context.Context, resolved *bool) ([]model.Alert, error) {
	q := g.db.WithContext(ctx).Order("timestamp DESC")
	if resolved != nil {
		q = q.Where("resolved = ?", *resolved)
	}
	var out []model.Alert
	return out, q.Find(&out).Error
}

// ResolveAlert flips the resolved flag and stamps ResolvedAt.
func (g *Gorm) ResolveAlert(ctx context.Context, id uint, at time.Time) error {
	res := g.db.WithContext(ctx).Model(&model.Alert{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"resolved": true, "resolved_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveSensor inserts or updates s.
func (g *Gorm) SaveSensor(ctx context.Context, s *model.Sensor) error {
	return g.db.WithContext(ctx).Save(s).Error
}

// Sensors lists all sensors ordered by ID.
func (g *Gorm) Sensors(ctx context.Context) ([]model.Sensor, error) {
	var out []model.Sensor
	return out, g.db.WithContext(ctx).Order("id").Find(&out).Error
}

// SensorByID returns one sensor or ErrNotFound.
func (g *Gorm) SensorByID(ctx context.Context, id uint) (*model.Sensor, error) {
	var s model.Sensor
	err := g.db.WithContext(ctx).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpdateSensorPing refreshes a sensor's last ping time.
func (g *Gorm) UpdateSensorPing(ctx context.Context, id uint, at time.Time) error {
	res := g.db.WithContext(ctx).Model(&model.Sensor{}).
		Where("id = ?", id).
		Update("last_ping", at)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveReading appends one reading.
func (g *Gorm) SaveReading(ctx context.Context, r *model.SensorReading) error {
	return g.db.WithContext(ctx).Create(r).Error
}

// LatestReading returns the newest reading for a sensor, or nil when the
// sensor has none.
func (g *Gorm) LatestReading(ctx context.Context, sensorID uint) (*model.SensorReading, error) {
	var r model.SensorReading
	err := g.db.WithContext(ctx).
		Where("sensor_id = ?", sensorID).
		Order("timestamp DESC").
		First(&r).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// StaleDoorReadings returns readings of door-type sensors with timestamp at
// or before cutoff.
func (g *Gorm) StaleDoorReadings(ctx context.Context, cutoff time.Time) ([]model.SensorReading, error) {
	var out []model.SensorReading
	err := g.db.WithContext(ctx).
		Joins("JOIN sensors ON sensors.id = sensor_readings.sensor_id").
		Where("sensors.type = ?", "door").
		Where("sensor_readings.timestamp <= ?", cutoff).
		Find(&out).Error
	return out, err
}

// SaveItem inserts or updates it.
func (g *Gorm) SaveItem(ctx context.Context, it *model.Item) error {
	return g.db.WithContext(ctx).Save(it).Error
}

// Items lists all items ordered by ID.
func (g *Gorm) Items(ctx context.Context) ([]model.Item, error) {
	var out []model.Item
	return out, g.db.WithContext(ctx).Order("id").Find(&out).Error
}

// SaveUser inserts or updates u.
func (g *Gorm) SaveUser(ctx context.Context, u *model.User) error {
	return g.db.WithContext(ctx).Save(u).Error
}

// UserByEmail returns the account for email or ErrNotFound.
func (g *Gorm) UserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := g.db.WithContext(ctx).Where("email = ?", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
