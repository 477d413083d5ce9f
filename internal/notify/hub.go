package notify

import (
	"context"
	"sync"
)

// Hub is the in-process Notifier. It maps a topic to the set of listeners
// currently registered for it.
type Hub struct {
	mu        sync.RWMutex
	listeners map[string]map[int64]chan struct{}
	nextID    int64
	closed    bool
}

// NewHub creates a new hub instance.
func NewHub() *Hub {
	return &Hub{listeners: make(map[string]map[int64]chan struct{})}
}

// Register adds a listener for topic and returns its id, which must be passed
// to Unregister when the listener goes away.
func (h *Hub) Register(topic string) (int64, <-chan struct{}, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return 0, nil, ErrClosed
	}
	if _, ok := h.listeners[topic]; !ok {
		h.listeners[topic] = make(map[int64]chan struct{})
	}

	h.nextID++
	id := h.nextID
	// One slot is enough: a pending signal already means "re-read"
	ch := make(chan struct{}, 1)
	h.listeners[topic][id] = ch
	return id, ch, nil
}

// Unregister removes a previously registered listener. Unknown ids are ignored.
func (h *Hub) Unregister(topic string, id int64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.listeners[topic]; ok {
		delete(conns, id)
		if len(conns) == 0 {
			delete(h.listeners, topic)
		}
	}
}

// Publish signals every listener of topic without blocking.
func (h *Hub) Publish(_ context.Context, topic string) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}
	for _, ch := range h.listeners[topic] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return nil
}

// PublishAll signals every listener of every topic. Relays call it after
// (re)connecting, since signals sent while they were away are lost.
func (h *Hub) PublishAll(_ context.Context) error {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.closed {
		return ErrClosed
	}
	for _, conns := range h.listeners {
		for _, ch := range conns {
			select {
			case ch <- struct{}{}:
			default:
			}
		}
	}
	return nil
}

// Subscribe implements Notifier.
func (h *Hub) Subscribe(_ context.Context, topic string) (<-chan struct{}, func(), error) {
	id, ch, err := h.Register(topic)
	if err != nil {
		return nil, nil, err
	}
	var once sync.Once
	return ch, func() { once.Do(func() { h.Unregister(topic, id) }) }, nil
}

// Listeners returns the number of listeners registered for topic.
func (h *Hub) Listeners(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners[topic])
}

// Close drops every listener by closing its channel. Further Register,
// Subscribe and Publish calls fail with ErrClosed.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for topic, conns := range h.listeners {
		for _, ch := range conns {
			close(ch)
		}
		delete(h.listeners, topic)
	}
}
