// Package sse implements a Server-Sent Events broker for journal state
// updates.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types.
const (
	// EventStateUpdated carries a full state snapshot.
	EventStateUpdated = "state.updated"
	// EventShutdown tells clients the server is going away and the stream
	// is about to end.
	EventShutdown = "server.shutdown"
)

// Event represents an SSE event to broadcast.
type Event struct {
	ID   string      `json:"id,omitempty"`
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// Frame renders an event in the text/event-stream wire format.
func Frame(event Event) ([]byte, error) {
	payload, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	if event.ID != "" {
		return []byte(fmt.Sprintf("id: %s\nevent: %s\ndata: %s\n\n", event.ID, event.Type, payload)), nil
	}
	return []byte(fmt.Sprintf("event: %s\ndata: %s\n\n", event.Type, payload)), nil
}

// Broker manages SSE client connections and broadcasts events.
//
// Concurrency model: a single internal event loop (goroutine) owns mutable state
// (clients, the state throttle timestamp and the pending trailing snapshot).
// Public methods communicate with this loop through channels, so no mutexes
// are required.
type Broker struct {
	stateMin time.Duration

	subscribeCh   chan chan []byte
	unsubscribeCh chan chan []byte
	publishCh     chan Event
	stateCh       chan interface{}
	countReqCh    chan chan int

	stopCh  chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker creates a new SSE broker. At most one state.updated frame is
// sent per stateThrottle interval; the latest snapshot of a burst is always
// delivered.
func NewBroker(stateThrottle time.Duration) *Broker {
	if stateThrottle <= 0 {
		stateThrottle = 100 * time.Millisecond
	}

	b := &Broker{
		stateMin:      stateThrottle,
		subscribeCh:   make(chan chan []byte),
		unsubscribeCh: make(chan chan []byte),
		publishCh:     make(chan Event, 256),
		stateCh:       make(chan interface{}, 256),
		countReqCh:    make(chan chan int),
		stopCh:        make(chan struct{}),
		stopped:       make(chan struct{}),
	}

	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	clients := make(map[chan []byte]struct{})
	var (
		lastState time.Time
		pending   interface{}
		hasPend   bool
		trailing  *time.Timer
		flushC    <-chan time.Time
	)

	broadcast := func(event Event) {
		raw, err := Frame(event)
		if err != nil {
			return
		}
		for ch := range clients {
			select {
			case ch <- raw:
			default:
				// Client buffer full; skip to avoid blocking broker loop.
			}
		}
	}

	flush := func(now time.Time) {
		lastState = now
		broadcast(Event{Type: EventStateUpdated, Data: pending})
		pending, hasPend = nil, false
	}

	for {
		select {
		case <-b.stopCh:
			if trailing != nil {
				trailing.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.subscribeCh:
			clients[ch] = struct{}{}

		case ch := <-b.unsubscribeCh:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case event := <-b.publishCh:
			broadcast(event)

		case snap := <-b.stateCh:
			pending, hasPend = snap, true
			now := time.Now()
			if flushC == nil && now.Sub(lastState) >= b.stateMin {
				flush(now)
				continue
			}
			if flushC == nil {
				trailing = time.NewTimer(b.stateMin - now.Sub(lastState))
				flushC = trailing.C
			}

		case now := <-flushC:
			flushC = nil
			if hasPend {
				flush(now)
			}

		case resp := <-b.countReqCh:
			resp <- len(clients)
		}
	}
}

// Close gracefully stops broker loop and closes all client channels.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stopCh)
	}
	<-b.stopped
}

// Shutdown sends a server.shutdown event to every client and then closes
// the broker. Clients receive the event before their streams end.
func (b *Broker) Shutdown(reason string) {
	b.Publish(Event{Type: EventShutdown, Data: map[string]string{"reason": reason}})
	b.Close()
}

// Subscribe adds a new client and returns its channel.
func (b *Broker) Subscribe() chan []byte {
	ch := make(chan []byte, 64)
	if b.closed.Load() {
		close(ch)
		return ch
	}

	select {
	case b.subscribeCh <- ch:
	case <-b.stopped:
		close(ch)
	}

	return ch
}

// Unsubscribe removes a client and closes its channel.
func (b *Broker) Unsubscribe(ch chan []byte) {
	if b.closed.Load() {
		return
	}
	select {
	case b.unsubscribeCh <- ch:
	case <-b.stopped:
	}
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	if b.closed.Load() {
		return 0
	}

	resp := make(chan int, 1)
	select {
	case b.countReqCh <- resp:
	case <-b.stopped:
		return 0
	}

	select {
	case n := <-resp:
		return n
	case <-b.stopped:
		return 0
	}
}

// Publish sends an event to all connected clients.
func (b *Broker) Publish(event Event) {
	if b.closed.Load() {
		return
	}
	select {
	case b.publishCh <- event:
	case <-b.stopped:
	}
}

// PublishState queues a state snapshot. Bursts are coalesced so clients see
// at most one state.updated per throttle interval, ending with the latest.
func (b *Broker) PublishState(snapshot interface{}) {
	if b.closed.Load() {
		return
	}
	select {
	case b.stateCh <- snapshot:
	case <-b.stopped:
	}
}

// ServeHTTP is the SSE endpoint handler (GET /api/state/stream).
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	WriteHeaders(w)
	flusher.Flush()

	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			_, _ = w.Write(msg)
			flusher.Flush()
		}
	}
}

// WriteHeaders sets the event-stream response headers and the 200 status.
func WriteHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(http.StatusOK)
}
