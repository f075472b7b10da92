package domain

import "net"

// ConcurrentWebSocket is a WebSocket with synchronized reads and writes so that it may be used by multiple goroutines.
type ConcurrentWebSocket interface {
	WriteJSON(v interface{}) error                       // WriteJSON writes the JSON encoding of v as a message.
	WriteMessage(messageType int, data []byte) error     // WriteMessage writes a single message of the given gorilla websocket message type.
	ReadMessage() (messageType int, p []byte, err error) // ReadMessage reads the next message from the connection.
	RemoteAddr() net.Addr                                // RemoteAddr returns the remote network address.
	Close() error                                        // Close the websocket. Only the first call closes the underlying connection.
}
