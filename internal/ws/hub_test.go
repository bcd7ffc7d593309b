package ws

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/coldwatch/coldwatch/internal/model"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	return conn
}

func waitForCount(t *testing.T, h *Hub, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Count() != want && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := h.Count(); got != want {
		t.Fatalf("client count: got %d, want %d", got, want)
	}
}

func TestHub_BroadcastAlert(t *testing.T) {
	h := New()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	defer conn.Close()
	waitForCount(t, h, 1)

	sensorID := uint(4)
	h.BroadcastAlert(&model.Alert{
		ID:       1,
		Category: "below_threshold",
		Message:  "Freezer 1 too cold",
		Severity: model.SeverityWarning,
		SensorID: &sensorID,
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("unmarshal %q: %v", raw, err)
	}
	if msg.Event != "alert" {
		t.Fatalf("event: got %q", msg.Event)
	}
	if msg.Data == nil || msg.Data.Category != "below_threshold" || *msg.Data.SensorID != 4 {
		t.Fatalf("data: got %+v", msg.Data)
	}
}

func TestHub_BroadcastReachesAllClients(t *testing.T) {
	h := New()
	srv := httptest.NewServer(h)
	defer srv.Close()

	a := dial(t, srv)
	defer a.Close()
	b := dial(t, srv)
	defer b.Close()
	waitForCount(t, h, 2)

	h.BroadcastAlert(&model.Alert{ID: 2, Category: "sensor_offline", Message: "gone"})

	for name, conn := range map[string]*websocket.Conn{"a": a, "b": b} {
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if _, _, err := conn.ReadMessage(); err != nil {
			t.Errorf("client %s: read: %v", name, err)
		}
	}
}

func TestHub_DisconnectDropsClient(t *testing.T) {
	h := New()
	srv := httptest.NewServer(h)
	defer srv.Close()

	conn := dial(t, srv)
	waitForCount(t, h, 1)

	conn.Close()
	waitForCount(t, h, 0)

	// Broadcasting into an empty hub is a no-op, not a panic.
	h.BroadcastAlert(&model.Alert{ID: 3, Category: "door_left_ajar"})
}

// TestHub_BroadcastRacingDisconnect models a broadcast whose client snapshot
// still holds a client that a concurrent path disconnected: the queued send
// must fail cleanly instead of panicking on the closed channel.
func TestHub_BroadcastRacingDisconnect(t *testing.T) {
	h := New()
	c := &client{send: make(chan []byte, 1)}
	h.register(c)

	// Snapshot taken: imagine BroadcastAlert has copied its target list and
	// is about to send when the client is torn down.
	h.unregister(c)

	if c.trySend([]byte(`{}`)) {
		t.Fatal("send into a disconnected client must report failure")
	}
	h.BroadcastAlert(&model.Alert{ID: 1, Category: "power_failure"}) // no panic
}

// TestHub_ConcurrentBroadcastAndUnregister hammers broadcasts from several
// goroutines against concurrent disconnects, the shape the dispatcher
// produces when scheduler jobs and ingestion alert at once.
func TestHub_ConcurrentBroadcastAndUnregister(t *testing.T) {
	h := New()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		c := &client{send: make(chan []byte, 1)}
		h.register(c)
		// Pre-fill the buffer so broadcasts hit the drop path.
		c.trySend([]byte("fill"))

		wg.Add(2)
		go func() {
			defer wg.Done()
			h.BroadcastAlert(&model.Alert{ID: 9, Category: "sensor_offline"})
		}()
		go func(c *client) {
			defer wg.Done()
			h.unregister(c)
		}(c)
	}
	wg.Wait()

	if h.Count() != 0 {
		t.Fatalf("clients left registered: %d", h.Count())
	}
}

func TestHub_RunClosesClientsOnCancel(t *testing.T) {
	h := New()
	srv := httptest.NewServer(h)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	conn := dial(t, srv)
	defer conn.Close()
	waitForCount(t, h, 1)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}

	// The server sends a close frame; the read loop must terminate.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	if h.Count() != 0 {
		t.Fatalf("clients after shutdown: got %d", h.Count())
	}
}
