package stream

import (
	"context"
	"sync"
)

const (
	FrameBuffer = 150 // ~3 seconds of 20ms PCM frames
	EventBuffer = 64
)

// Hub fans out values from one source to N listeners.
type Hub[T any] struct {
	buffer int

	mu        sync.RWMutex
	listeners map[*Listener[T]]struct{}
}

// Listener receives values from a hub.
type Listener[T any] struct {
	C    chan T // buffered; values are dropped when full
	done chan struct{}
}

// Done is closed when the listener is unsubscribed.
func (l *Listener[T]) Done() <-chan struct{} {
	return l.done
}

// NewHub creates a hub whose listeners buffer up to buffer values.
func NewHub[T any](buffer int) *Hub[T] {
	return &Hub[T]{
		buffer:    max(buffer, 1),
		listeners: make(map[*Listener[T]]struct{}),
	}
}

// Subscribe registers a new listener.
func (h *Hub[T]) Subscribe() *Listener[T] {
	l := &Listener[T]{
		C:    make(chan T, h.buffer),
		done: make(chan struct{}),
	}
	h.mu.Lock()
	h.listeners[l] = struct{}{}
	h.mu.Unlock()
	return l
}

// Unsubscribe removes a listener and signals it to stop. Safe to call twice.
func (h *Hub[T]) Unsubscribe(l *Listener[T]) {
	h.mu.Lock()
	_, ok := h.listeners[l]
	delete(h.listeners, l)
	h.mu.Unlock()
	if ok {
		close(l.done)
	}
}

// ListenerCount returns the number of active listeners.
func (h *Hub[T]) ListenerCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.listeners)
}

// Publish hands v to every listener that has room and returns how many
// took it. Slow listeners miss the value rather than blocking the rest.
func (h *Hub[T]) Publish(v T) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for l := range h.listeners {
		select {
		case l.C <- v:
			n++
		default:
			// listener too slow, drop to keep the hub moving
		}
	}
	return n
}

// Run publishes everything from source until ctx is cancelled or source is
// closed.
func (h *Hub[T]) Run(ctx context.Context, source <-chan T) {
	for {
		select {
		case <-ctx.Done():
			return
		case v, ok := <-source:
			if !ok {
				return
			}
			h.Publish(v)
		}
	}
}
