package stream

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Message is one Server-Sent Event.
type Message struct {
	Name string
	Data any // JSON-encoded
}

// KeepAlive is how often an idle events stream sends a comment line.
const KeepAlive = 15 * time.Second

// EventsHandler streams transport events to browsers as Server-Sent Events,
// so a page can highlight beats and show the timer in step with the audio.
type EventsHandler struct {
	events  *Hub[Message]
	initial func() Message
}

// NewEventsHandler creates an SSE handler. initial, if set, is sent first on
// every new connection.
func NewEventsHandler(events *Hub[Message], initial func() Message) *EventsHandler {
	return &EventsHandler{events: events, initial: initial}
}

func (h *EventsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	listener := h.events.Subscribe()
	defer h.events.Unsubscribe(listener)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)

	if h.initial != nil {
		if err := writeEvent(w, h.initial()); err != nil {
			return
		}
	}
	flusher.Flush()

	keepAlive := time.NewTicker(KeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-listener.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
		case msg := <-listener.C:
			if err := writeEvent(w, msg); err != nil {
				return
			}
		}
		flusher.Flush()
	}
}

func writeEvent(w http.ResponseWriter, msg Message) error {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		log.Printf("SSE: encode %s event: %v", msg.Name, err)
		return nil
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", msg.Name, data)
	return err
}
