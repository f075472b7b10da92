package connection

import (
	"errors"
	"net"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

// stallingWebSocket blocks every write until it is closed.
type stallingWebSocket struct {
	writing   chan struct{}
	release   chan struct{}
	closeOnce sync.Once
	numCloses int
	mu        sync.Mutex
}

func newStallingWebSocket() *stallingWebSocket {
	return &stallingWebSocket{
		writing: make(chan struct{}, 16),
		release: make(chan struct{}),
	}
}

func (ws *stallingWebSocket) WriteJSON(_ interface{}) error {
	return ws.WriteMessage(0, nil)
}

func (ws *stallingWebSocket) WriteMessage(_ int, _ []byte) error {
	ws.writing <- struct{}{}
	<-ws.release
	return errors.New("websocket closed")
}

func (ws *stallingWebSocket) ReadMessage() (int, []byte, error) {
	<-ws.release
	return 0, nil, errors.New("websocket closed")
}

func (ws *stallingWebSocket) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (ws *stallingWebSocket) Close() error {
	ws.mu.Lock()
	ws.numCloses++
	ws.mu.Unlock()

	ws.closeOnce.Do(func() { close(ws.release) })
	return nil
}

func (ws *stallingWebSocket) NumCloses() int {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	return ws.numCloses
}

var _ = Describe("Client Tests", func() {
	atom := zap.NewAtomicLevelAt(zap.DebugLevel)

	var (
		manager *Manager
		ws      *stallingWebSocket
		cl      *client
	)

	BeforeEach(func() {
		opts := domain.GetDefaultConfig()
		opts.SendQueueCapacity = 1

		manager = NewConnectionManager(opts, nil, &atom)
		ws = newStallingWebSocket()
		cl = manager.register("S1", ws)

		DeferCleanup(func() { cl.close() })
	})

	message := func() *domain.EventMessage {
		return domain.NewEventMessage(domain.EventExecutionProgress, "Execution progress updated", nil)
	}

	It("Will disconnect a subscriber that cannot keep up", func() {
		Expect(manager.Send("S1", message())).To(Succeed())
		Eventually(ws.writing, time.Second).Should(Receive())

		// The write pump is stuck on the first message; the second one fills the queue.
		Expect(manager.Send("S1", message())).To(Succeed())

		err := manager.Send("S1", message())
		Expect(errors.Is(err, domain.ErrSendQueueFull)).To(BeTrue())
		Expect(manager.IsOpen("S1")).To(BeFalse())
		Expect(ws.NumCloses()).To(Equal(1))

		Eventually(cl.done, time.Second).Should(BeClosed())

		err = manager.Send("S1", message())
		Expect(errors.Is(err, domain.ErrSubscriberNotConnected)).To(BeTrue())
	})

	It("Will close only once", func() {
		Expect(cl.close()).To(BeTrue())
		Expect(cl.close()).To(BeFalse())
		Expect(ws.NumCloses()).To(Equal(1))

		Eventually(cl.done, time.Second).Should(BeClosed())
	})
})
