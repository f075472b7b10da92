package monitor

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/google/uuid"
	"github.com/scusemua/execution-monitor/m/v2/internal/domain"
	"go.uber.org/zap"
)

// listenerList is a copy-on-write list of execution listeners.
//
// Registration is rare and notification is frequent, so every registration change rebuilds an immutable
// snapshot that notify iterates without holding any lock.
type listenerList struct {
	logger *zap.Logger

	mu         sync.Mutex                                                // Serializes registration changes.
	registered *orderedmap.OrderedMap[string, domain.ExecutionListener] // Registration ID to listener, in registration order.
	snapshot   atomic.Pointer[[]domain.ExecutionListener]
}

func newListenerList(logger *zap.Logger) *listenerList {
	list := &listenerList{
		logger:     logger,
		registered: orderedmap.NewOrderedMap[string, domain.ExecutionListener](),
	}
	list.snapshot.Store(&[]domain.ExecutionListener{})
	return list
}

// add registers the listener and returns the ID of the registration. Returns the empty string for a nil listener.
func (l *listenerList) add(listener domain.ExecutionListener) string {
	if listener == nil {
		return ""
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	registrationId := uuid.NewString()
	l.registered.Set(registrationId, listener)
	l.rebuildSnapshot()

	return registrationId
}

// remove unregisters the first registration of the given listener.
// Registrations whose listener is not comparable to the given one are skipped.
func (l *listenerList) remove(listener domain.ExecutionListener) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for el := l.registered.Front(); el != nil; el = el.Next() {
		if sameListener(el.Value, listener) {
			l.registered.Delete(el.Key)
			l.rebuildSnapshot()
			return true
		}
	}

	return false
}

func (l *listenerList) removeRegistration(registrationId string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.registered.Delete(registrationId) {
		return false
	}

	l.rebuildSnapshot()
	return true
}

// sameListener compares two listeners without panicking on dynamic types that are not comparable.
func sameListener(a domain.ExecutionListener, b domain.ExecutionListener) bool {
	typeA := reflect.TypeOf(a)
	if typeA == nil || typeA != reflect.TypeOf(b) || !typeA.Comparable() {
		return false
	}

	return a == b
}

func (l *listenerList) len() int {
	return len(*l.snapshot.Load())
}

// rebuildSnapshot must be called with mu held.
func (l *listenerList) rebuildSnapshot() {
	listeners := make([]domain.ExecutionListener, 0, l.registered.Len())
	for el := l.registered.Front(); el != nil; el = el.Next() {
		listeners = append(listeners, el.Value)
	}

	l.snapshot.Store(&listeners)
}

// notify invokes fn once per registered listener, each time with its own copy of the session.
// A listener that panics is logged and skipped; the remaining listeners are still notified.
func (l *listenerList) notify(event string, session *domain.ExecutionSession, fn func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession)) {
	for _, listener := range *l.snapshot.Load() {
		l.invoke(event, session, listener, fn)
	}
}

func (l *listenerList) invoke(event string, session *domain.ExecutionSession, listener domain.ExecutionListener, fn func(listener domain.ExecutionListener, snapshot *domain.ExecutionSession)) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("Execution listener failed.",
				zap.String("listener", fmt.Sprintf("%T", listener)),
				zap.String("event", event),
				zap.String("execution-code", session.ExecutionCode),
				zap.Any("panic", r))
		}
	}()

	fn(listener, session.Clone())
}
