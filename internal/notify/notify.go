package notify

import (
	"context"
	"log/slog"

	"github.com/coldwatch/coldwatch/internal/metrics"
)

// Sender delivers one message over one channel.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// Fanout routes a message to every named channel. Delivery is best-effort:
// an unknown channel is skipped, a failing sender is logged, and neither
// surfaces to the caller.
type Fanout struct {
	senders map[string]Sender
}

// NewFanout builds a Fanout over the given channel-name → sender mapping.
func NewFanout(senders map[string]Sender) *Fanout {
	if senders == nil {
		senders = make(map[string]Sender)
	}
	return &Fanout{senders: senders}
}

// Send delivers message to each channel in turn. Errors are swallowed here:
// persisted alert state must never depend on delivery.
func (f *Fanout) Send(ctx context.Context, channels []string, message string) {
	for _, ch := range channels {
		s, ok := f.senders[ch]
		if !ok {
			slog.Warn("notify: no sender configured for channel, skipping", "channel", ch)
			continue
		}
		if err := s.Send(ctx, message); err != nil {
			metrics.NotifyFailures.WithLabelValues(ch).Inc()
			slog.Error("notify: delivery failed", "channel", ch, "err", err)
			continue
		}
		slog.Debug("notify: delivered", "channel", ch)
	}
}
