package websocket_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	gws "github.com/gorilla/websocket"

	ws "github.com/careerflow/assessment-backend/internal/websocket"
)

// dialTestConn upgrades a loopback connection and returns the client side
// plus a channel of raw messages the server side received.
func dialTestConn(t *testing.T) (*gws.Conn, <-chan []byte) {
	t.Helper()

	received := make(chan []byte, 1024)
	upgrader := gws.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			select {
			case received <- msg:
			default:
			}
		}
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn, received
}

// The session stream writes from two goroutines: the push relay (ticks,
// questions, warnings) and the read loop (pongs, error replies). The
// writer must serialize them onto the single-writer connection.
func TestWriterConcurrentWrites(t *testing.T) {
	conn, _ := dialTestConn(t)
	writer := ws.NewWriter(conn)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if err := writer.WriteJSON(ws.EventTick, map[string]int{"remaining": i}); err != nil {
				t.Errorf("tick write failed: %v", err)
				return
			}
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			if err := writer.WriteJSON(ws.EventPong, nil); err != nil {
				t.Errorf("pong write failed: %v", err)
				return
			}
			if err := writer.WriteError("unknown action: noop"); err != nil {
				t.Errorf("error write failed: %v", err)
				return
			}
		}
	}()

	wg.Wait()
}

func TestWriterEnvelopes(t *testing.T) {
	conn, received := dialTestConn(t)
	writer := ws.NewWriter(conn)

	if err := writer.WriteJSON(ws.EventQuestion, map[string]string{"prompt": "p"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	var envelope ws.ResponsePayload
	if err := json.Unmarshal(<-received, &envelope); err != nil {
		t.Fatalf("bad envelope: %v", err)
	}
	if envelope.Event != ws.EventQuestion {
		t.Errorf("event = %q, want %q", envelope.Event, ws.EventQuestion)
	}

	if err := writer.WriteError("boom"); err != nil {
		t.Fatalf("WriteError failed: %v", err)
	}
	var errEnvelope ws.ErrorResponse
	if err := json.Unmarshal(<-received, &errEnvelope); err != nil {
		t.Fatalf("bad error envelope: %v", err)
	}
	if errEnvelope.Event != ws.EventError || errEnvelope.Error != "boom" {
		t.Errorf("error envelope = %+v", errEnvelope)
	}
}
