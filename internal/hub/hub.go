// Package hub fans context change events out to Server-Sent Events clients.
package hub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// KeepAlive is how often an idle stream gets a comment line
const KeepAlive = 30 * time.Second

// Message is one event on the stream. Name becomes the SSE event field.
type Message struct {
	Name string
	Data any
}

type client struct {
	id     string
	userID string
	events chan []byte
}

// Hub manages SSE client connections
type Hub struct {
	mu         sync.RWMutex
	clients    map[*client]struct{}
	register   chan *client
	unregister chan *client
	broadcast  chan envelope
	nextID     atomic.Uint64
	log        *slog.Logger
}

type envelope struct {
	userID string
	msg    Message
}

func New(log *slog.Logger) *Hub {
	if log == nil {
		log = slog.Default()
	}
	return &Hub{
		clients:    make(map[*client]struct{}),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan envelope, 256),
		log:        log.With("component", "hub"),
	}
}

// Run dispatches registrations and broadcasts until done is closed
func (h *Hub) Run(done <-chan struct{}) {
	for {
		select {
		case <-done:
			h.mu.Lock()
			for c := range h.clients {
				delete(h.clients, c)
				close(c.events)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("sse client connected", "client", c.id, "user", c.userID, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.events)
			}
			n := len(h.clients)
			h.mu.Unlock()
			h.log.Debug("sse client disconnected", "client", c.id, "clients", n)

		case env := <-h.broadcast:
			frame, err := encode(env.msg)
			if err != nil {
				h.log.Warn("failed to encode event", "event", env.msg.Name, "error", err)
				continue
			}
			h.mu.RLock()
			for c := range h.clients {
				if c.userID != "" && c.userID != env.userID {
					continue
				}
				select {
				case c.events <- frame:
				default:
					h.log.Warn("sse client is slow, dropping event", "client", c.id)
				}
			}
			h.mu.RUnlock()
		}
	}
}

func encode(msg Message) ([]byte, error) {
	data, err := json.Marshal(msg.Data)
	if err != nil {
		return nil, err
	}
	if msg.Name == "" {
		return fmt.Appendf(nil, "data: %s\n\n", data), nil
	}
	return fmt.Appendf(nil, "event: %s\ndata: %s\n\n", msg.Name, data), nil
}

// Broadcast queues msg for every client watching userID, and for clients
// watching all users. It never blocks.
func (h *Hub) Broadcast(userID string, msg Message) {
	select {
	case h.broadcast <- envelope{userID: userID, msg: msg}:
	default:
		h.log.Warn("broadcast queue full, dropping event", "event", msg.Name)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP streams events to one client. The optional user query parameter
// limits the stream to that user's changes.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	c := &client{
		id:     strconv.FormatUint(h.nextID.Add(1), 10),
		userID: r.URL.Query().Get("user"),
		events: make(chan []byte, 64),
	}
	select {
	case h.register <- c:
	case <-r.Context().Done():
		return
	}
	defer func() {
		// Run may already have closed the channel on shutdown
		select {
		case h.unregister <- c:
		case <-time.After(time.Second):
		}
	}()

	fmt.Fprint(w, ": connected\n\n")
	flusher.Flush()

	ticker := time.NewTicker(KeepAlive)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.events:
			if !ok {
				return
			}
			if _, err := w.Write(frame); err != nil {
				return
			}
			flusher.Flush()
		case <-ticker.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-r.Context().Done():
			return
		}
	}
}
