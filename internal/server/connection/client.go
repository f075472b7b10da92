package connection

import (
	"context"
	"sync/atomic"

	"github.com/enriquebris/goconcurrentqueue"
	"github.com/gorilla/websocket"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

// client is a single connected subscriber.
//
// Outbound messages are encoded once by the sender and placed in a bounded FIFO queue. A dedicated write pump
// drains the queue onto the websocket, so messages reach the client in the order in which they were enqueued
// and a slow client never blocks the goroutine that published to it.
type client struct {
	id     string
	conn   domain.ConcurrentWebSocket
	queue  *goconcurrentqueue.FixedFIFO
	logger *zap.Logger

	closed atomic.Bool
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func newClient(id string, conn domain.ConcurrentWebSocket, queueCapacity int, logger *zap.Logger) *client {
	ctx, cancel := context.WithCancel(context.Background())

	return &client{
		id:     id,
		conn:   conn,
		queue:  goconcurrentqueue.NewFixedFIFO(queueCapacity),
		logger: logger.With(zap.String("subscriber-id", id)),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// enqueue adds an encoded message to the outbound queue. It fails if the client is closed or its queue is full.
func (c *client) enqueue(data []byte) error {
	if c.closed.Load() {
		return domain.ErrSubscriberNotConnected
	}

	if err := c.queue.Enqueue(data); err != nil {
		return domain.ErrSendQueueFull
	}

	return nil
}

func (c *client) isOpen() bool {
	return !c.closed.Load()
}

// writePump writes queued messages to the websocket until the client is closed or a write fails.
func (c *client) writePump() {
	defer close(c.done)

	for {
		item, err := c.queue.DequeueOrWaitForNextElementContext(c.ctx)
		if err != nil {
			return
		}

		data, ok := item.([]byte)
		if !ok {
			c.logger.Error("Unexpected item in outbound queue.", zap.Any("item", item))
			continue
		}

		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			c.logger.Warn("Failed to write message to websocket. Closing connection.", zap.Error(err))
			c.close()
			return
		}
	}
}

// close marks the client closed, stops the write pump and closes the websocket. Returns false if the client
// had already been closed.
func (c *client) close() bool {
	if !c.closed.CompareAndSwap(false, true) {
		return false
	}

	c.cancel()

	if err := c.conn.Close(); err != nil {
		c.logger.Debug("Error while closing websocket.", zap.Error(err))
	}

	return true
}
