package alert

import (
	"errors"
	"fmt"
	"time"

	"github.com/coldwatch/coldwatch/internal/model"
)

// Category identifies one monitored condition. The set is closed: dispatching
// any category not listed below fails with ErrUnknownCategory.
type Category string

const (
	CategoryBelowThreshold   Category = "below_threshold"
	CategoryAboveThreshold   Category = "above_threshold"
	CategoryExpiryRisk       Category = "expiry_risk"
	CategoryUnauthorizedMove Category = "unauthorized_move"
	CategorySensorOffline    Category = "sensor_offline"
	CategoryPowerFailure     Category = "power_failure"
	CategoryDoorLeftAjar     Category = "door_left_ajar"
)

// ErrUnknownCategory is returned when a candidate carries a category outside
// the closed set. This is a programming error, not a runtime condition.
var ErrUnknownCategory = errors.New("unknown alert category")

// DefaultDedupeTTL is how long a repeated condition for the same entity is
// suppressed after a sent alert.
const DefaultDedupeTTL = time.Hour

// CategoryConfig is the static routing for one category: how severe the
// alert is and which notification channels receive it.
type CategoryConfig struct {
	Severity string
	Channels []string
	TTL      time.Duration
}

// categoryConfigs is the closed routing table. sensor_offline has no
// channels: the alert row is persisted for the dashboard but nothing is sent.
var categoryConfigs = map[Category]CategoryConfig{
	CategoryBelowThreshold:   {Severity: model.SeverityWarning, Channels: []string{"email"}, TTL: DefaultDedupeTTL},
	CategoryAboveThreshold:   {Severity: model.SeverityWarning, Channels: []string{"email"}, TTL: DefaultDedupeTTL},
	CategoryExpiryRisk:       {Severity: model.SeverityCritical, Channels: []string{"email", "sms", "webhook"}, TTL: DefaultDedupeTTL},
	CategoryUnauthorizedMove: {Severity: model.SeverityCritical, Channels: []string{"email", "sms", "webhook"}, TTL: DefaultDedupeTTL},
	CategorySensorOffline:    {Severity: model.SeverityInfo, Channels: nil, TTL: DefaultDedupeTTL},
	CategoryPowerFailure:     {Severity: model.SeverityCritical, Channels: []string{"email", "sms", "webhook"}, TTL: DefaultDedupeTTL},
	CategoryDoorLeftAjar:     {Severity: model.SeverityWarning, Channels: []string{"email"}, TTL: DefaultDedupeTTL},
}

// Config returns the routing config for c, or ErrUnknownCategory.
func (c Category) Config() (CategoryConfig, error) {
	cfg, ok := categoryConfigs[c]
	if !ok {
		return CategoryConfig{}, fmt.Errorf("%w: %q", ErrUnknownCategory, string(c))
	}
	return cfg, nil
}

// Candidate is a rule's proposed alert, prior to dedupe filtering.
type Candidate struct {
	Category      Category
	Message       string
	RelatedItemID *uint
	SensorID      *uint
}

// DedupeKey derives the deterministic suppression key for c:
// "category:item:sensor", with absent ids rendered empty.
func (c Candidate) DedupeKey() string {
	item, sensor := "", ""
	if c.RelatedItemID != nil {
		item = fmt.Sprintf("%d", *c.RelatedItemID)
	}
	if c.SensorID != nil {
		sensor = fmt.Sprintf("%d", *c.SensorID)
	}
	return string(c.Category) + ":" + item + ":" + sensor
}
