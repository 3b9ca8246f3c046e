package ws

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.HandleWebSocket))
	url := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Dial failed: %v", err)
	}

	return conn, func() {
		conn.Close()
		server.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}

	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Invalid message %s: %v", data, err)
	}
	return msg
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for hub.GetConnectedClientsCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("Expected %d clients, got %d", n, hub.GetConnectedClientsCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestHub_WelcomeAndBroadcast(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	if msg := readMessage(t, conn); msg.Type != MessageConnected {
		t.Fatalf("Expected welcome message, got %s", msg.Type)
	}
	waitForClients(t, hub, 1)

	hub.BroadcastStopwatchTick(models.StopwatchState{
		Phase:     models.StopwatchRunning,
		ElapsedMs: 65300,
		Running:   true,
		Display:   models.FormatElapsed(65300),
	})

	msg := readMessage(t, conn)
	if msg.Type != MessageStopwatchTick {
		t.Fatalf("Expected %s, got %s", MessageStopwatchTick, msg.Type)
	}
	data, ok := msg.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("Unexpected payload type %T", msg.Data)
	}
	if data["display"] != "1:05.3" {
		t.Errorf("Expected display 1:05.3, got %v", data["display"])
	}
}

func TestHub_DisconnectUnregisters(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	conn, cleanup := dialHub(t, hub)
	readMessage(t, conn)
	waitForClients(t, hub, 1)

	cleanup()
	waitForClients(t, hub, 0)
}

func TestHub_BroadcastWithoutClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	// Must not block or panic
	hub.BroadcastError("nothing listening")
	hub.BroadcastTiming(models.SDIRawInput{TI: "1.0"})

	if hub.GetConnectedClientsCount() != 0 {
		t.Errorf("Expected 0 clients, got %d", hub.GetConnectedClientsCount())
	}
}
