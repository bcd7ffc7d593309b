package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
)

// readingMessage is the JSON payload sensors publish on the readings topic.
type readingMessage struct {
	SensorID  uint      `json:"sensor_id"`
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// MQTT subscribes to a readings topic and funnels payloads through the
// ingestion Service.
type MQTT struct {
	svc    *Service
	client mqtt.Client
	topic  string
}

// NewMQTT builds the MQTT consumer. clientID gets a random suffix so multiple
// server instances can share a broker without session clashes.
func NewMQTT(svc *Service, brokerURL, topic, clientID, username, password string) *MQTT {
	m := &MQTT{svc: svc, topic: topic}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(fmt.Sprintf("%s-%s", clientID, uuid.New().String()[:8]))
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(true)
	if username != "" {
		opts.SetUsername(username)
		opts.SetPassword(password)
	}
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		slog.Warn("mqtt: connection lost", "err", err)
	})
	// Subscribe on every (re)connect so a broker restart does not leave the
	// consumer silent.
	opts.SetOnConnectHandler(func(c mqtt.Client) {
		slog.Info("mqtt: connected", "broker", brokerURL)
		if token := c.Subscribe(m.topic, 1, m.handle); token.Wait() && token.Error() != nil {
			slog.Error("mqtt: subscribe failed", "topic", m.topic, "err", token.Error())
		}
	})

	m.client = mqtt.NewClient(opts)
	return m
}

// Connect dials the broker. Returns an error only on the initial attempt;
// reconnects are handled by the client.
func (m *MQTT) Connect() error {
	if token := m.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	return nil
}

// Close disconnects from the broker.
func (m *MQTT) Close() {
	m.client.Disconnect(250)
}

func (m *MQTT) handle(_ mqtt.Client, msg mqtt.Message) {
	var r readingMessage
	if err := json.Unmarshal(msg.Payload(), &r); err != nil {
		slog.Warn("mqtt: bad reading payload", "topic", msg.Topic(), "err", err)
		return
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}

	if _, err := m.svc.Ingest(context.Background(), r.SensorID, r.Timestamp, r.Value); err != nil {
		slog.Error("mqtt: ingest failed", "sensor_id", r.SensorID, "err", err)
	}
}
