// Package websocket pushes notifications to signed-in users over WebSocket
// connections. The Hub doubles as an events.Publisher so it can sit next to
// the Kafka publisher.
package websocket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Anandhu5Uthaman/College-mini/internal/pkg/events"
)

// Notification is the frame written to a client.
type Notification struct {
	ID         string      `json:"id"`
	Type       events.Type `json:"type"`
	Payload    any         `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type delivery struct {
	userID string
	data   []byte
}

// Hub maintains the set of connected clients, keyed by user id.
type Hub struct {
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	deliver    chan delivery

	// types lists the event types forwarded to clients.
	types map[events.Type]bool

	done      chan struct{}
	closeOnce sync.Once
	logger    zerolog.Logger
}

// NewHub creates a hub forwarding events of the given types. Call Run to
// start it.
func NewHub(logger zerolog.Logger, types ...events.Type) *Hub {
	h := &Hub{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliver:    make(chan delivery, 64),
		types:      make(map[events.Type]bool, len(types)),
		done:       make(chan struct{}),
		logger:     logger,
	}
	for _, t := range types {
		h.types[t] = true
	}
	return h
}

var _ events.Publisher = (*Hub)(nil)

// Run handles registrations and deliveries until Close is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case d := <-h.deliver:
			h.send(d)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.userID]; !ok {
		h.clients[client.userID] = make(map[*Client]struct{})
	}
	h.clients[client.userID][client] = struct{}{}

	h.logger.Debug().
		Str("user_id", client.userID).
		Str("addr", client.conn.RemoteAddr().String()).
		Msg("Client registered")
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(client)
}

// drop removes client. The caller holds mu.
func (h *Hub) drop(client *Client) {
	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug().Str("user_id", client.userID).Msg("Client unregistered")
}

// send writes data to every connection of a user. Clients whose buffer is
// full are dropped.
func (h *Hub) send(d delivery) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients[d.userID] {
		select {
		case client.send <- d.data:
		default:
			h.logger.Warn().Str("user_id", d.userID).Msg("Dropping slow client")
			h.drop(client)
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, clients := range h.clients {
		for client := range clients {
			h.drop(client)
		}
	}
}

// Publish forwards evt to the connections of the user it is keyed to. Event
// types the hub was not created with are ignored.
func (h *Hub) Publish(ctx context.Context, evt events.Event) error {
	if !h.types[evt.Type] || evt.Key == "" {
		return nil
	}
	select {
	case <-h.done:
		return fmt.Errorf("notification hub is closed")
	default:
	}

	data, err := json.Marshal(Notification{
		ID:         evt.ID,
		Type:       evt.Type,
		Payload:    evt.Payload,
		OccurredAt: evt.OccurredAt,
	})
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	select {
	case h.deliver <- delivery{userID: evt.Key, data: data}:
		return nil
	case <-h.done:
		return fmt.Errorf("notification hub is closed")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops Run and disconnects every client. It is safe to call more
// than once.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

// ClientsCount returns the number of open connections for userID.
func (h *Hub) ClientsCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}
