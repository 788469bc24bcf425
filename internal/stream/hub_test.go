package stream

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestNewHub(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	if h == nil {
		t.Fatal("NewHub returned nil")
	}
	if h.ListenerCount() != 0 {
		t.Errorf("Initial ListenerCount = %d, want 0", h.ListenerCount())
	}
	if l := h.Subscribe(); cap(l.C) != FrameBuffer {
		t.Errorf("listener buffer = %d, want %d", cap(l.C), FrameBuffer)
	}
	if l := NewHub[int](0).Subscribe(); cap(l.C) != 1 {
		t.Errorf("zero buffer hub gave capacity %d, want 1", cap(l.C))
	}
}

func TestSubscribeUnsubscribe(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)

	l1 := h.Subscribe()
	if h.ListenerCount() != 1 {
		t.Errorf("After 1 subscribe: ListenerCount = %d, want 1", h.ListenerCount())
	}

	l2 := h.Subscribe()
	if h.ListenerCount() != 2 {
		t.Errorf("After 2 subscribes: ListenerCount = %d, want 2", h.ListenerCount())
	}

	h.Unsubscribe(l1)
	if h.ListenerCount() != 1 {
		t.Errorf("After 1 unsubscribe: ListenerCount = %d, want 1", h.ListenerCount())
	}

	h.Unsubscribe(l2)
	h.Unsubscribe(l2)
	if h.ListenerCount() != 0 {
		t.Errorf("After all unsubscribed: ListenerCount = %d, want 0", h.ListenerCount())
	}
}

func TestHubDelivers(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	l := h.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	source := make(chan []int16, 10)

	go h.Run(ctx, source)

	// Send a frame
	frame := []int16{100, 200, 300, 400}
	source <- frame

	// Listener should receive it
	select {
	case got := <-l.C:
		if len(got) != len(frame) {
			t.Errorf("Received frame length %d, want %d", len(got), len(frame))
		}
		for i, v := range got {
			if v != frame[i] {
				t.Errorf("Frame[%d] = %d, want %d", i, v, frame[i])
			}
		}
	case <-time.After(time.Second):
		t.Fatal("Timeout waiting for frame")
	}

	cancel()
	h.Unsubscribe(l)
}

func TestHubMultipleListeners(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	listeners := make([]*Listener[[]int16], 5)
	for i := range listeners {
		listeners[i] = h.Subscribe()
	}

	ctx, cancel := context.WithCancel(context.Background())
	source := make(chan []int16, 10)

	go h.Run(ctx, source)

	frame := []int16{42, -42}
	source <- frame

	// All listeners should get the frame
	for i, l := range listeners {
		select {
		case got := <-l.C:
			if got[0] != 42 {
				t.Errorf("Listener %d got frame[0]=%d, want 42", i, got[0])
			}
		case <-time.After(time.Second):
			t.Errorf("Listener %d timed out", i)
		}
	}

	cancel()
	for _, l := range listeners {
		h.Unsubscribe(l)
	}
}

func TestPublishDropsForSlowListener(t *testing.T) {
	h := NewHub[int](EventBuffer)
	slow := h.Subscribe()
	fast := h.Subscribe()

	fastCount := 0
	for i := 0; i < 200; i++ {
		h.Publish(i)
		select {
		case <-fast.C:
			fastCount++
		default:
		}
	}

	if fastCount != 200 {
		t.Errorf("Fast listener got %d values, want 200", fastCount)
	}
	if len(slow.C) != EventBuffer {
		t.Errorf("Slow listener holds %d values, want buffer size %d", len(slow.C), EventBuffer)
	}
	// the slow listener keeps the oldest values
	if v := <-slow.C; v != 0 {
		t.Errorf("Slow listener first value = %d, want 0", v)
	}
	if n := h.Publish(-1); n != 2 {
		t.Errorf("Publish reached %d listeners, want 2", n)
	}
}

func TestHubStopsOnContextCancel(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	ctx, cancel := context.WithCancel(context.Background())
	source := make(chan []int16, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Run(ctx, source)
	}()

	cancel()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// good
	case <-time.After(2 * time.Second):
		t.Fatal("Hub did not stop after context cancel")
	}
}

func TestHubStopsOnSourceClose(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	ctx := context.Background()
	source := make(chan []int16, 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		h.Run(ctx, source)
	}()

	close(source)

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		// good
	case <-time.After(2 * time.Second):
		t.Fatal("Hub did not stop after source closed")
	}
}

func TestListenerDoneChannel(t *testing.T) {
	h := NewHub[[]int16](FrameBuffer)
	l := h.Subscribe()

	h.Unsubscribe(l)

	// done channel should be closed
	select {
	case <-l.Done():
		// good
	default:
		t.Error("Listener done channel not closed after unsubscribe")
	}
}
