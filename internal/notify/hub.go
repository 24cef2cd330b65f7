// internal/notify/hub.go
package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

const (
	// SubscriberBufferSize is the send buffer per subscriber
	SubscriberBufferSize = 16
	broadcastBufferSize  = 256
)

var (
	ErrHubStopped = errors.New("hub stopped")
	ErrHubBusy    = errors.New("hub broadcast queue full")
)

// Subscriber is one live observer of the hub
type Subscriber struct {
	send chan []byte
	done chan struct{}
	once sync.Once
}

func newSubscriber() *Subscriber {
	return &Subscriber{
		send: make(chan []byte, SubscriberBufferSize),
		done: make(chan struct{}),
	}
}

// Messages yields broadcast payloads; it is closed when the subscriber is removed
func (s *Subscriber) Messages() <-chan []byte {
	return s.send
}

// Done is closed when the subscriber is removed
func (s *Subscriber) Done() <-chan struct{} {
	return s.done
}

func (s *Subscriber) close() {
	s.once.Do(func() {
		close(s.done)
		close(s.send)
	})
}

// Hub fans broadcast payloads out to subscribers. A subscriber whose buffer
// is full misses the message; the broadcaster never waits.
type Hub struct {
	subscribers map[*Subscriber]struct{}
	mu          sync.RWMutex
	broadcast   chan []byte
	register    chan *Subscriber
	unregister  chan *Subscriber
	done        chan struct{}
	stopOnce    sync.Once
	dropped     atomic.Int64
	logger      *logrus.Logger
}

// NewHub creates a new Hub instance
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		subscribers: make(map[*Subscriber]struct{}),
		broadcast:   make(chan []byte, broadcastBufferSize),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled or Stop is called.
func (h *Hub) Run(ctx context.Context) {
	defer h.shutdown()

	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = struct{}{}
			h.mu.Unlock()

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.subscribers[sub]; ok {
				delete(h.subscribers, sub)
				sub.close()
			}
			h.mu.Unlock()

		case message := <-h.broadcast:
			h.mu.RLock()
			for sub := range h.subscribers {
				select {
				case sub.send <- message:
				default:
					h.dropped.Add(1)
				}
			}
			h.mu.RUnlock()

		case <-ctx.Done():
			return

		case <-h.done:
			return
		}
	}
}

func (h *Hub) shutdown() {
	h.Stop()

	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subscribers {
		sub.close()
	}
	h.subscribers = make(map[*Subscriber]struct{})
}

// Subscribe registers a new observer. It needs Run to be active.
func (h *Hub) Subscribe() (*Subscriber, error) {
	sub := newSubscriber()
	select {
	case h.register <- sub:
		return sub, nil
	case <-h.done:
		return nil, ErrHubStopped
	}
}

// Unsubscribe removes an observer and closes its channels
func (h *Hub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast queues data for every subscriber. It reports false when the
// queue is full or the hub is stopped and the message was dropped.
func (h *Hub) Broadcast(data []byte) bool {
	select {
	case <-h.done:
		return false
	default:
	}

	select {
	case h.broadcast <- data:
		return true
	default:
		h.dropped.Add(1)
		h.logger.Warn("hub broadcast queue full, dropping message")
		return false
	}
}

// SubscriberCount returns the number of connected observers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns how many deliveries were skipped
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// Stop ends Run
func (h *Hub) Stop() {
	h.stopOnce.Do(func() {
		close(h.done)
	})
}
