package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/dom/leaderboard-dashboard/internal/events"
	"github.com/google/uuid"
)

type outbound struct {
	userID *uuid.UUID
	data   []byte
}

// Hub fans server messages out to every connected dashboard.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan outbound
	stop       chan struct{}
	done       chan struct{} // closed when Run() exits
	stopped    bool
	logger     *slog.Logger
	mu         sync.RWMutex
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan outbound, 64),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.stop:
			h.mu.Lock()
			h.stopped = true
			for client := range h.clients {
				client.Close()
			}
			h.clients = make(map[*Client]bool)
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			if !h.stopped {
				h.clients[client] = true
			}
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if msg.userID != nil && client.userID != *msg.userID {
					continue
				}
				if !client.enqueue(msg.data) {
					h.logger.Warn("dropping slow websocket client", "component", "websocket", "user_id", client.userID)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mu.Unlock()
		}
	}
}

// Stop closes every client and blocks until Run has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.Close()
	}
}

// Unregister is safe to call after the hub has stopped.
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) Broadcast(msg *Message) {
	h.enqueue(nil, msg)
}

func (h *Hub) SendToUser(userID uuid.UUID, msg *Message) {
	h.enqueue(&userID, msg)
}

func (h *Hub) enqueue(userID *uuid.UUID, msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal websocket message failed", "component", "websocket", "type", msg.Type, "error", err)
		return
	}
	select {
	case h.broadcast <- outbound{userID: userID, data: data}:
	case <-h.done:
	}
}

// HandleChange is registered on the change bus; every completed mutation
// becomes a DATA_CHANGED notice.
func (h *Hub) HandleChange(_ context.Context, change events.Change) error {
	msg, err := NewMessage(MessageTypeDataChanged, DataChanged(change))
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}
