package websocket

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"rada-learning/internal/models"
)

func TestHub_ServeSendsInitialSnapshot(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 50 * time.Millisecond, MaxRetries: -1})
	defer rdb.Close()

	hub := NewHub(rdb, "*")
	sessionID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.Serve(w, r, sessionID, models.WSMessage{Type: "snapshot", Payload: map[string]string{"screen": "home"}})
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}

	var msg struct {
		Type    string            `json:"type"`
		Payload map[string]string `json:"payload"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if msg.Type != "snapshot" || msg.Payload["screen"] != "home" {
		t.Fatalf("Unexpected initial message: %s", data)
	}
	if n := hub.Subscribers(sessionID); n != 1 {
		t.Fatalf("Expected 1 subscriber, got %d", n)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers(sessionID) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("Expected subscriber to be removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_CheckOrigin(t *testing.T) {
	hub := NewHub(nil, "https://rada.ke")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Origin", "https://rada.ke")
	if !hub.upgrader.CheckOrigin(req) {
		t.Error("Expected configured origin to be allowed")
	}

	req.Header.Set("Origin", "https://evil.example")
	if hub.upgrader.CheckOrigin(req) {
		t.Error("Expected foreign origin to be rejected")
	}
}
