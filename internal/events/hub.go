// Package events fans out change notifications to a user's open connections.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Type identifies a notification.
type Type string

const (
	StatsChanged      Type = "stats_changed"
	NotesChanged      Type = "notes_changed"
	ExamTick          Type = "exam_tick"
	ExamAutoSubmitted Type = "exam_auto_submitted"
	ExamExpired       Type = "exam_expired"
	ExamCompleted     Type = "exam_completed"
)

// Message is the envelope written to clients.
type Message struct {
	Type    Type            `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Publisher delivers a notification to every connection of a user.
type Publisher interface {
	Publish(userID int64, t Type, payload any)
}

// Discard is a Publisher that drops everything.
var Discard Publisher = discard{}

type discard struct{}

func (discard) Publish(int64, Type, any) {}

// SendBuffer is the per-connection outbound queue length.
const SendBuffer = 256

// Connection is one subscriber. The hub closes Send on unregister.
type Connection struct {
	UserID int64
	Send   chan []byte
}

// NewConnection creates a subscriber for userID.
func NewConnection(userID int64) *Connection {
	return &Connection{UserID: userID, Send: make(chan []byte, SendBuffer)}
}

type envelope struct {
	userID int64
	data   []byte
}

// Hub tracks connections per user.
type Hub struct {
	conns map[int64]map[*Connection]struct{}

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan envelope
	done       chan struct{}
}

// NewHub creates a hub. Call Run to start delivering.
func NewHub() *Hub {
	return &Hub{
		conns:      make(map[int64]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan envelope, SendBuffer),
		done:       make(chan struct{}),
	}
}

// Run delivers messages until ctx is cancelled, then closes every connection.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for _, set := range h.conns {
				for c := range set {
					close(c.Send)
				}
			}
			h.conns = nil
			return

		case c := <-h.register:
			if h.conns[c.UserID] == nil {
				h.conns[c.UserID] = make(map[*Connection]struct{})
			}
			h.conns[c.UserID][c] = struct{}{}
			slog.Debug("event stream connected", "user_id", c.UserID)

		case c := <-h.unregister:
			if set, ok := h.conns[c.UserID]; ok {
				if _, ok := set[c]; ok {
					delete(set, c)
					close(c.Send)
					if len(set) == 0 {
						delete(h.conns, c.UserID)
					}
					slog.Debug("event stream disconnected", "user_id", c.UserID)
				}
			}

		case env := <-h.broadcast:
			for c := range h.conns[env.userID] {
				select {
				case c.Send <- env.data:
				default:
					// Slow reader: drop.
				}
			}
		}
	}
}

// Register adds a connection. It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Connection) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.Send)
	}
}

// Unregister removes a connection and closes its Send channel.
func (h *Hub) Unregister(c *Connection) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Publish queues a notification for userID. When the queue is full the
// notification is dropped.
func (h *Hub) Publish(userID int64, t Type, payload any) {
	msg := Message{Type: t}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			slog.Error("marshal event payload", "type", t, "error", err)
			return
		}
		msg.Payload = raw
	}
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal event", "type", t, "error", err)
		return
	}
	select {
	case h.broadcast <- envelope{userID: userID, data: data}:
	case <-h.done:
	default:
		slog.Warn("event queue full, dropping", "type", t, "user_id", userID)
	}
}
