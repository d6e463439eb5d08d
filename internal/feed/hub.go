// Package feed streams reputation updates to websocket subscribers.
package feed

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"omnirep/internal/domain"
	"omnirep/internal/observability"
)

// EventTypeReputation tags reputation update events.
const EventTypeReputation = "reputation"

// Event is one message sent to subscribers.
type Event struct {
	Type    string                 `json:"type"`
	Address string                 `json:"address"`
	Data    *domain.ReputationData `json:"data"`
}

// Config configures hub behavior.
type Config struct {
	// BufferSize is the number of pending events per subscriber before it is dropped.
	BufferSize int
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is how long a connection may go without a pong.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultConfig returns default hub configuration.
func DefaultConfig() Config {
	return Config{
		BufferSize:   16,
		PingInterval: 30 * time.Second,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Subscription receives encoded events until it is closed.
type Subscription struct {
	address string // lowercase, empty matches every address
	send    chan []byte
	hub     *Hub
	once    sync.Once
}

// C returns the event channel. It is closed when the subscription ends.
func (s *Subscription) C() <-chan []byte {
	return s.send
}

// Close ends the subscription.
func (s *Subscription) Close() {
	s.hub.remove(s)
}

// Hub fans reputation updates out to subscribers filtered by address.
type Hub struct {
	config   Config
	logger   *log.Logger
	upgrader websocket.Upgrader

	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed atomic.Bool
}

// NewHub creates a new Hub. A nil config uses DefaultConfig.
func NewHub(config *Config, logger *log.Logger) *Hub {
	cfg := DefaultConfig()
	if config != nil {
		cfg = *config
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1
	}
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Hub{
		config: cfg,
		logger: logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		subs: make(map[*Subscription]struct{}),
	}
}

// Subscribe registers a subscriber for address, or for all addresses when empty.
func (h *Hub) Subscribe(address string) *Subscription {
	sub := &Subscription{
		address: strings.ToLower(strings.TrimSpace(address)),
		send:    make(chan []byte, h.config.BufferSize),
		hub:     h,
	}
	h.mu.Lock()
	if h.closed.Load() {
		h.mu.Unlock()
		sub.once.Do(func() { close(sub.send) })
		return sub
	}
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	observability.UpdateFeedSubscribers(n)
	return sub
}

// Count returns the number of active subscribers.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

// Publish sends data to every matching subscriber without blocking.
// Subscribers whose buffer is full are dropped.
func (h *Hub) Publish(data *domain.ReputationData) {
	if data == nil || h.closed.Load() {
		return
	}

	address := strings.ToLower(data.Address)
	msg, err := json.Marshal(Event{Type: EventTypeReputation, Address: address, Data: data})
	if err != nil {
		h.logger.Printf("encode feed event for %s: %v", address, err)
		return
	}

	var slow []*Subscription
	h.mu.RLock()
	for sub := range h.subs {
		if sub.address != "" && sub.address != address {
			continue
		}
		select {
		case sub.send <- msg:
		default:
			slow = append(slow, sub)
		}
	}
	h.mu.RUnlock()

	for _, sub := range slow {
		h.logger.Printf("dropping slow feed subscriber (filter=%q)", sub.address)
		observability.RecordFeedDropped()
		h.remove(sub)
	}
}

// Close drops every subscriber and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	if h.closed.Swap(true) {
		h.mu.Unlock()
		return
	}
	subs := h.subs
	h.subs = make(map[*Subscription]struct{})
	h.mu.Unlock()

	for sub := range subs {
		sub.once.Do(func() { close(sub.send) })
	}
	observability.UpdateFeedSubscribers(0)
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[sub]
	delete(h.subs, sub)
	n := len(h.subs)
	h.mu.Unlock()

	if ok {
		observability.UpdateFeedSubscribers(n)
	}
	sub.once.Do(func() { close(sub.send) })
}

// ServeHTTP upgrades the request to a websocket and streams events.
// The optional "address" query parameter filters events.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Printf("feed upgrade: %v", err)
		return
	}
	defer conn.Close()

	sub := h.Subscribe(r.URL.Query().Get("address"))
	defer sub.Close()

	done := make(chan struct{})
	go h.readLoop(conn, done)
	h.writeLoop(conn, sub, done)
}

// readLoop discards client messages and signals done when the peer goes away.
func (h *Hub) readLoop(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)

	conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(h.config.ReadTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(conn *websocket.Conn, sub *Subscription, done <-chan struct{}) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case msg, ok := <-sub.C():
			conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "unsubscribed"))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
