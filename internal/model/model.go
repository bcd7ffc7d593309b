package model

import "time"

// Severity levels carried on alerts, ordered least to most urgent.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityCritical = "critical"
)

// Sensor is an environmental sensor (temperature, humidity, door, ...).
// Thresholds are optional: a sensor with neither threshold set never
// produces threshold alerts. LastPing is nil until the first reading arrives.
type Sensor struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Name         string     `gorm:"type:varchar(100);not null" json:"name"`
	Type         string     `gorm:"type:varchar(30);not null" json:"type"` // "temperature" | "humidity" | "door" | ...
	ThresholdMin *float64   `json:"threshold_min"`
	ThresholdMax *float64   `json:"threshold_max"`
	LastPing     *time.Time `json:"last_ping"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SensorReading is one measurement from a sensor. Immutable once stored.
type SensorReading struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	SensorID  uint      `gorm:"index;not null" json:"sensor_id"`
	Timestamp time.Time `gorm:"index;not null" json:"timestamp"`
	Value     float64   `gorm:"not null" json:"value"`
}

// Item is a tracked inventory item with an expiry date.
type Item struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	NFCTag     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"nfc_tag"`
	Name       string    `gorm:"type:varchar(100);not null" json:"name"`
	Batch      string    `gorm:"type:varchar(64);not null" json:"batch"`
	ExpiryDate time.Time `gorm:"type:date;not null" json:"expiry_date"`
	Status     string    `gorm:"type:varchar(20);default:'in_stock';not null" json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Alert is a persisted, severity-ranked alert record. Alerts are created
// only by the dispatcher; resolution flips Resolved/ResolvedAt and nothing
// else.
type Alert struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	Category      string     `gorm:"type:varchar(30);index;not null" json:"category"`
	RelatedItemID *uint      `gorm:"index" json:"related_item_id"`
	SensorID      *uint      `gorm:"index" json:"sensor_id"`
	Timestamp     time.Time  `gorm:"not null" json:"timestamp"`
	Message       string     `gorm:"type:text;not null" json:"message"`
	Severity      string     `gorm:"type:varchar(10);not null" json:"severity"`
	Resolved      bool       `gorm:"default:false;not null" json:"resolved"`
	ResolvedAt    *time.Time `json:"resolved_at"`
}

// User is an operator account for the HTTP API.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"type:varchar(120);uniqueIndex;not null" json:"email"`
	HashedPassword string    `gorm:"type:varchar(100);not null" json:"-"`
	Role           string    `gorm:"type:varchar(20);not null" json:"role"` // "admin" | "operator"
	CreatedAt      time.Time `json:"created_at"`
}
