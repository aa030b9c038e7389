// Package spectator serves a read-only websocket feed of encounter
// snapshots. Spectators watch; nothing they send reaches the simulation.
package spectator

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cinderpeak/ironwatch/internal/game/arena"
)

const (
	// sendBuffer is the per-subscriber frame queue. A subscriber that
	// falls this many frames behind the broadcast is dropped.
	sendBuffer = 32

	writeWait = 10 * time.Second

	frameTypeState = "state"
)

// frame is the wire envelope for one snapshot.
type frame struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"server_time"`
	arena.View
}

type subscriber struct {
	id   uint64
	conn *websocket.Conn
	send chan []byte
}

// Hub fans encounter snapshots out to websocket subscribers. Broadcast
// never blocks on a subscriber: frames queue per connection, and a
// subscriber whose queue overflows is disconnected.
type Hub struct {
	logger *zap.Logger
	nextID atomic.Uint64

	mu          sync.Mutex
	subscribers map[uint64]*subscriber
	// last holds the most recent frame so late joiners see state
	// immediately instead of waiting out the broadcast cadence.
	last []byte
}

// NewHub creates an empty hub. A nil logger is replaced with a no-op.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:      logger,
		subscribers: make(map[uint64]*subscriber),
	}
}

// Broadcast marshals the snapshot once and queues it to every
// subscriber. Subscribers with a full queue are dropped.
func (h *Hub) Broadcast(v arena.View) {
	data, err := json.Marshal(frame{
		Type:       frameTypeState,
		ServerTime: time.Now().UnixMilli(),
		View:       v,
	})
	if err != nil {
		h.logger.Error("failed to marshal snapshot frame", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = data
	for _, sub := range h.subscribers {
		select {
		case sub.send <- data:
		default:
			h.logger.Warn("dropping slow spectator",
				zap.Uint64("subscriber", sub.id),
				zap.Uint64("tick", v.Tick))
			h.removeLocked(sub)
		}
	}
}

// Observer returns a tick callback that forwards every nth snapshot to
// the hub. Cadence values below one broadcast every tick.
func (h *Hub) Observer(every int) func(arena.View) {
	if every < 1 {
		every = 1
	}
	n := uint64(every)
	return func(v arena.View) {
		if v.Tick%n == 0 {
			h.Broadcast(v)
		}
	}
}

// Count reports the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subscribers)
}

// CloseAll drops every subscriber. Called during shutdown.
func (h *Hub) CloseAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subscribers {
		h.removeLocked(sub)
	}
}

// add registers a connection and primes it with the latest frame.
func (h *Hub) add(conn *websocket.Conn) *subscriber {
	sub := &subscriber{
		id:   h.nextID.Add(1),
		conn: conn,
		send: make(chan []byte, sendBuffer),
	}
	h.mu.Lock()
	h.subscribers[sub.id] = sub
	if h.last != nil {
		sub.send <- h.last
	}
	h.mu.Unlock()
	return sub
}

func (h *Hub) remove(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(sub)
}

// removeLocked takes a subscriber out of the map, closes its queue, and
// closes its connection. Safe to call twice; the second call no-ops.
//
// Precondition: h.mu is held.
func (h *Hub) removeLocked(sub *subscriber) {
	if _, ok := h.subscribers[sub.id]; !ok {
		return
	}
	delete(h.subscribers, sub.id)
	close(sub.send)
	sub.conn.Close()
}

// writePump drains a subscriber's queue onto its connection. It exits
// when the queue closes or a write fails.
func (h *Hub) writePump(sub *subscriber) {
	for data := range sub.send {
		sub.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := sub.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.remove(sub)
			return
		}
	}
}
