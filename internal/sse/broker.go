// Package sse streams note change notifications to clients as server-sent
// events.
package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"
)

// Event types on the stream.
const (
	TypeNoteCreated      = "note.created"
	TypeNoteUpdated      = "note.updated"
	TypeNoteDeleted      = "note.deleted"
	TypeNotesInvalidated = "notes.invalidated"
)

// DefaultHeartbeat is how often an idle stream receives a comment line, so
// proxies keep it open and clients notice dead connections.
const DefaultHeartbeat = 25 * time.Second

const clientBuffer = 64

var noteEventTypes = map[string]string{
	"created": TypeNoteCreated,
	"updated": TypeNoteUpdated,
	"deleted": TypeNoteDeleted,
}

type change struct {
	kind string
	id   string
}

// Option configures a Broker.
type Option func(*Broker)

// WithHeartbeat overrides DefaultHeartbeat; d <= 0 disables heartbeats.
func WithHeartbeat(d time.Duration) Option {
	return func(b *Broker) {
		b.heartbeat = d
	}
}

// Broker fans note changes out to every connected client.
//
// A single goroutine owns the client set and the throttle state; the public
// methods only talk to it over channels. Each change produces its own
// note.* event plus a notes.invalidated event, and invalidations are
// throttled to one per interval. A change inside a throttle window is
// flushed when the window closes, so the last change is never lost.
type Broker struct {
	throttle  time.Duration
	heartbeat time.Duration

	join    chan chan []byte
	leave   chan chan []byte
	changes chan change
	count   chan chan int

	stop    chan struct{}
	stopped chan struct{}
	closed  atomic.Bool
}

// NewBroker starts a broker that emits at most one notes.invalidated event
// per throttle interval.
func NewBroker(throttle time.Duration, opts ...Option) *Broker {
	if throttle <= 0 {
		throttle = 2 * time.Second
	}
	b := &Broker{
		throttle:  throttle,
		heartbeat: DefaultHeartbeat,
		join:      make(chan chan []byte),
		leave:     make(chan chan []byte),
		changes:   make(chan change, 256),
		count:     make(chan chan int),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(b)
	}
	go b.run()
	return b
}

func (b *Broker) run() {
	defer close(b.stopped)

	var (
		clients  = make(map[chan []byte]struct{})
		seq      uint64
		lastSent time.Time
		pending  *time.Timer
		flush    <-chan time.Time
	)

	send := func(typ string, data any) {
		payload, err := json.Marshal(data)
		if err != nil {
			return
		}
		seq++
		frame := []byte(fmt.Sprintf("id: %d\nevent: %s\ndata: %s\n\n", seq, typ, payload))
		for ch := range clients {
			select {
			case ch <- frame:
			default:
				// Slow client; it refetches on the next invalidation anyway.
			}
		}
	}
	invalidate := func(now time.Time) {
		lastSent = now
		send(TypeNotesInvalidated, struct{}{})
	}

	for {
		select {
		case <-b.stop:
			if pending != nil {
				pending.Stop()
			}
			for ch := range clients {
				close(ch)
			}
			return

		case ch := <-b.join:
			clients[ch] = struct{}{}

		case ch := <-b.leave:
			if _, ok := clients[ch]; ok {
				delete(clients, ch)
				close(ch)
			}

		case c := <-b.changes:
			typ, ok := noteEventTypes[c.kind]
			if !ok {
				continue
			}
			send(typ, map[string]string{"id": c.id})

			now := time.Now()
			wait := b.throttle - now.Sub(lastSent)
			switch {
			case wait <= 0:
				invalidate(now)
			case flush == nil:
				pending = time.NewTimer(wait)
				flush = pending.C
			}

		case now := <-flush:
			pending, flush = nil, nil
			invalidate(now)

		case resp := <-b.count:
			resp <- len(clients)
		}
	}
}

// PublishNoteEvent reports a note change; kind is "created", "updated" or
// "deleted". Unknown kinds are ignored.
func (b *Broker) PublishNoteEvent(kind, id string) {
	if b.closed.Load() {
		return
	}
	select {
	case b.changes <- change{kind: kind, id: id}:
	case <-b.stopped:
	}
}

// Subscribe registers a client. The channel carries ready-to-write event
// frames and is closed by cancel or Close.
func (b *Broker) Subscribe() (<-chan []byte, func()) {
	ch := make(chan []byte, clientBuffer)
	if b.closed.Load() {
		close(ch)
		return ch, func() {}
	}
	select {
	case b.join <- ch:
	case <-b.stopped:
		close(ch)
		return ch, func() {}
	}
	cancel := func() {
		select {
		case b.leave <- ch:
		case <-b.stopped:
		}
	}
	return ch, cancel
}

// ClientCount returns the number of connected clients.
func (b *Broker) ClientCount() int {
	resp := make(chan int, 1)
	select {
	case b.count <- resp:
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

// Close stops the broker and ends every stream.
func (b *Broker) Close() {
	if b.closed.CompareAndSwap(false, true) {
		close(b.stop)
	}
	<-b.stopped
}

// ServeHTTP streams events to one client until it disconnects or the broker
// closes.
func (b *Broker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	frames, cancel := b.Subscribe()
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	var beat <-chan time.Time
	if b.heartbeat > 0 {
		t := time.NewTicker(b.heartbeat)
		defer t.Stop()
		beat = t.C
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case frame, ok := <-frames:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-beat:
			if _, err := w.Write([]byte(": ping\n\n")); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
