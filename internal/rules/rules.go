package rules

import (
	"fmt"
	"time"

	"github.com/coldwatch/coldwatch/internal/alert"
	"github.com/coldwatch/coldwatch/internal/model"
)

// SensorOffline emits a sensor_offline candidate for every sensor that has
// never pinged, or whose last ping is strictly older than window. A last ping
// exactly at the cutoff is still considered alive.
func SensorOffline(sensors []model.Sensor, window time.Duration, now time.Time) []alert.Candidate {
	var out []alert.Candidate
	for _, s := range sensors {
		if s.LastPing != nil && now.Sub(*s.LastPing) <= window {
			continue
		}
		last := "never"
		if s.LastPing != nil {
			last = s.LastPing.UTC().Format(time.RFC3339)
		}
		id := s.ID
		out = append(out, alert.Candidate{
			Category: alert.CategorySensorOffline,
			Message:  fmt.Sprintf("Sensor '%s' (ID %d) offline since %s", s.Name, s.ID, last),
			SensorID: &id,
		})
	}
	return out
}

// PowerFailure emits a power_failure candidate for every gateway whose last
// heartbeat is strictly older than timeout. Power alerts are global: they
// carry neither a sensor nor an item reference.
func PowerFailure(beats map[string]time.Time, timeout time.Duration, now time.Time) []alert.Candidate {
	var out []alert.Candidate
	for gw, last := range beats {
		if now.Sub(last) <= timeout {
			continue
		}
		out = append(out, alert.Candidate{
			Category: alert.CategoryPowerFailure,
			Message:  fmt.Sprintf("Gateway '%s' lost power since %s", gw, last.UTC().Format(time.RFC3339)),
		})
	}
	return out
}

// DoorAjar emits a door_left_ajar candidate for every door reading whose
// value equals openValue and whose timestamp is at or before
// now - maxOpenWindow. Callers pass readings already filtered to door-type
// sensors. One candidate per matching reading: collapsing repeats is the
// dedupe gate's job downstream.
func DoorAjar(readings []model.SensorReading, openValue float64, maxOpenWindow time.Duration, now time.Time) []alert.Candidate {
	cutoff := now.Add(-maxOpenWindow)
	var out []alert.Candidate
	for _, r := range readings {
		if r.Value != openValue || r.Timestamp.After(cutoff) {
			continue
		}
		id := r.SensorID
		out = append(out, alert.Candidate{
			Category: alert.CategoryDoorLeftAjar,
			Message:  fmt.Sprintf("Door sensor %d has been open since %s", r.SensorID, r.Timestamp.UTC().Format(time.RFC3339)),
			SensorID: &id,
		})
	}
	return out
}

// ItemExpiry emits an expiry_risk candidate for every item whose expiry date
// falls on or before today + daysBefore days. Items already past today get
// "expired on" wording, items expiring today or later "will expire on"; both
// route to the same category.
func ItemExpiry(items []model.Item, daysBefore int, today time.Time) []alert.Candidate {
	today = truncateToDay(today)
	threshold := today.AddDate(0, 0, daysBefore)

	var out []alert.Candidate
	for _, it := range items {
		expiry := truncateToDay(it.ExpiryDate)
		if expiry.After(threshold) {
			continue
		}
		verb := "will expire on"
		if expiry.Before(today) {
			verb = "expired on"
		}
		id := it.ID
		out = append(out, alert.Candidate{
			Category:      alert.CategoryExpiryRisk,
			Message:       fmt.Sprintf("Item #%d ('%s') %s %s", it.ID, it.Name, verb, expiry.Format("2006-01-02")),
			RelatedItemID: &id,
		})
	}
	return out
}

func truncateToDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
