package alert

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/coldwatch/coldwatch/internal/metrics"
	"github.com/coldwatch/coldwatch/internal/model"
)

// Store persists alert records. Owned by the storage layer; the dispatcher
// only needs the write side.
type Store interface {
	SaveAlert(ctx context.Context, a *model.Alert) error
}

// Notifier fans a message out to named channels. Delivery is best-effort:
// implementations log failures and never surface them.
type Notifier interface {
	Send(ctx context.Context, channels []string, message string)
}

// Broadcaster pushes a freshly created alert to live listeners (the
// dashboard WebSocket hub). Optional.
type Broadcaster interface {
	BroadcastAlert(a *model.Alert)
}

// Dispatcher is the single choke point for alert creation: category routing,
// dedupe gating, persistence, and notification fan-out all happen here so no
// caller can bypass them.
//
// Dispatcher is safe for concurrent use.
type Dispatcher struct {
	store    Store
	notifier Notifier
	gate     Gate
	hub      Broadcaster // may be nil
	now      func() time.Time
}

// NewDispatcher wires a Dispatcher. hub may be nil when no live stream is
// attached.
func NewDispatcher(store Store, notifier Notifier, gate Gate, hub Broadcaster) *Dispatcher {
	return &Dispatcher{
		store:    store,
		notifier: notifier,
		gate:     gate,
		hub:      hub,
		now:      time.Now,
	}
}

// Dispatch routes one candidate through the pipeline. It returns the
// persisted alert, or (nil, nil) when the dedupe gate suppressed it.
//
// An unknown category fails closed with ErrUnknownCategory. A persistence
// failure is returned to the caller and nothing is sent. Notification
// failures never propagate and never roll back the persisted alert.
func (d *Dispatcher) Dispatch(ctx context.Context, c Candidate) (*model.Alert, error) {
	cfg, err := c.Category.Config()
	if err != nil {
		return nil, err
	}

	send, gateErr := d.gate.ShouldSend(ctx, c.DedupeKey(), cfg.TTL)
	if gateErr != nil {
		// Fail open: losing dedupe beats losing the alert.
		slog.Warn("alert: dedupe gate error, sending anyway",
			"key", c.DedupeKey(), "err", gateErr)
	}
	if !send {
		metrics.AlertsSuppressed.Inc()
		return nil, nil
	}

	a := &model.Alert{
		Category:      string(c.Category),
		RelatedItemID: c.RelatedItemID,
		SensorID:      c.SensorID,
		Timestamp:     d.now().UTC(),
		Message:       c.Message,
		Severity:      cfg.Severity,
		Resolved:      false,
	}
	if err := d.store.SaveAlert(ctx, a); err != nil {
		return nil, fmt.Errorf("persist alert %s: %w", c.Category, err)
	}

	metrics.AlertsDispatched.WithLabelValues(string(c.Category)).Inc()
	slog.Info("alert dispatched",
		"category", c.Category,
		"severity", cfg.Severity,
		"sensor_id", c.SensorID,
		"item_id", c.RelatedItemID,
	)

	if d.hub != nil {
		d.hub.BroadcastAlert(a)
	}

	// Fire-and-forget: a slow or failing channel must not hold up the
	// evaluation tick.
	if len(cfg.Channels) > 0 {
		channels := cfg.Channels
		msg := c.Message
		go d.notifier.Send(context.Background(), channels, msg)
	}

	return a, nil
}
