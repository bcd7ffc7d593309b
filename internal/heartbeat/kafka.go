package heartbeat

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// beatMessage is the JSON payload gateways publish on the heartbeat topic.
type beatMessage struct {
	GatewayID string    `json:"gateway_id"`
	Timestamp time.Time `json:"timestamp"`
}

// Kafka consumes gateway heartbeats from a Kafka topic and keeps the
// last-seen time per gateway. Heartbeats() reads the map the consumer loop
// maintains; Run must be started for the map to fill.
type Kafka struct {
	reader *kafka.Reader

	mu    sync.RWMutex
	beats map[string]time.Time
}

// NewKafka creates a consumer on the given brokers/topic/group.
func NewKafka(brokers []string, topic, group string) *Kafka {
	return &Kafka{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:  brokers,
			GroupID:  group,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6,
			MaxWait:  500 * time.Millisecond,
		}),
		beats: make(map[string]time.Time),
	}
}

// Run consumes heartbeat messages until ctx is cancelled. Malformed payloads
// are logged and skipped.
func (k *Kafka) Run(ctx context.Context) {
	defer k.reader.Close()

	slog.Info("heartbeat: consuming", "topic", k.reader.Config().Topic)
	for {
		msg, err := k.reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			slog.Warn("heartbeat: kafka read error", "err", err)
			continue
		}

		k.observe(msg.Value, msg.Time)
	}
}

// observe applies one raw heartbeat payload. fallback stands in for a missing
// timestamp (the broker's message time). Malformed payloads are logged and
// dropped.
func (k *Kafka) observe(value []byte, fallback time.Time) {
	var b beatMessage
	if err := json.Unmarshal(value, &b); err != nil {
		slog.Warn("heartbeat: bad payload", "err", err)
		return
	}
	if b.GatewayID == "" {
		return
	}
	if b.Timestamp.IsZero() {
		b.Timestamp = fallback
	}

	k.mu.Lock()
	// Last-seen never regresses even if the topic replays out of order.
	if b.Timestamp.After(k.beats[b.GatewayID]) {
		k.beats[b.GatewayID] = b.Timestamp
	}
	k.mu.Unlock()
}

// Heartbeats returns a copy of the last-seen mapping.
func (k *Kafka) Heartbeats(_ context.Context) (map[string]time.Time, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	out := make(map[string]time.Time, len(k.beats))
	for gw, t := range k.beats {
		out[gw] = t
	}
	return out, nil
}
