package websocket

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Writer serializes writes to one connection. gorilla/websocket permits a
// single concurrent writer, and the session stream writes from both its
// read loop and its push-relay goroutine.
type Writer struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

// NewWriter wraps a connection for concurrent use.
func NewWriter(conn *websocket.Conn) *Writer {
	return &Writer{conn: conn}
}

// WriteJSON sends an event envelope with a write deadline.
func (w *Writer) WriteJSON(event Event, data interface{}) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(ResponsePayload{Event: event, Data: data})
}

// WriteError sends a typed ErrorResponse.
func (w *Writer) WriteError(errMsg string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.conn.WriteJSON(ErrorResponse{Event: EventError, Error: errMsg})
}

// ReadJSON reads and decodes a message into the provided structure.
// It sets a read deadline generous enough to outlast a full test.
func ReadJSON(conn *websocket.Conn, v interface{}) error {
	conn.SetReadDeadline(time.Now().Add(20 * time.Minute))
	return conn.ReadJSON(v)
}
