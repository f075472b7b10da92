package concurrent_websocket

import (
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
)

const (
	// DefaultWriteTimeout bounds how long a single write may block on a slow peer.
	DefaultWriteTimeout = 10 * time.Second

	// DefaultReadLimit is the largest control message accepted from a client, in bytes.
	DefaultReadLimit = 64 * 1024
)

type concurrentWebSocketImpl struct {
	rlock sync.Mutex
	wlock sync.Mutex
	conn  *websocket.Conn

	writeTimeout time.Duration
	closeOnce    sync.Once
	closeErr     error
}

func NewConcurrentWebSocket(conn *websocket.Conn) domain.ConcurrentWebSocket {
	return NewConcurrentWebSocketWithTimeout(conn, DefaultWriteTimeout)
}

// NewConcurrentWebSocketWithTimeout wraps the connection. A non-positive writeTimeout disables write deadlines.
func NewConcurrentWebSocketWithTimeout(conn *websocket.Conn, writeTimeout time.Duration) domain.ConcurrentWebSocket {
	conn.SetReadLimit(DefaultReadLimit)

	return &concurrentWebSocketImpl{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (w *concurrentWebSocketImpl) setWriteDeadline() error {
	if w.writeTimeout <= 0 {
		return nil
	}

	return w.conn.SetWriteDeadline(time.Now().Add(w.writeTimeout))
}

// WriteJSON writes the JSON encoding of v as a message.
func (w *concurrentWebSocketImpl) WriteJSON(v interface{}) error {
	w.wlock.Lock()
	defer w.wlock.Unlock()

	if err := w.setWriteDeadline(); err != nil {
		return err
	}

	return w.conn.WriteJSON(v)
}

// Close sends a normal-closure frame on a best-effort basis and closes the websocket.
// It does not take wlock: gorilla permits WriteControl and Close concurrently with a blocked writer,
// and closing is what unblocks that writer.
func (w *concurrentWebSocketImpl) Close() error {
	w.closeOnce.Do(func() {
		_ = w.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		w.closeErr = w.conn.Close()
	})

	return w.closeErr
}

// WriteMessage is a helper method for getting a writer using NextWriter, writing the message and closing the writer.
func (w *concurrentWebSocketImpl) WriteMessage(messageType int, data []byte) error {
	w.wlock.Lock()
	defer w.wlock.Unlock()

	if err := w.setWriteDeadline(); err != nil {
		return err
	}

	return w.conn.WriteMessage(messageType, data)
}

// ReadMessage is a helper method for getting a reader using NextReader and reading from that reader to a buffer.
func (w *concurrentWebSocketImpl) ReadMessage() (messageType int, p []byte, err error) {
	w.rlock.Lock()
	defer w.rlock.Unlock()

	return w.conn.ReadMessage()
}

// RemoteAddr returns the remote network address.
func (w *concurrentWebSocketImpl) RemoteAddr() net.Addr {
	return w.conn.RemoteAddr()
}
