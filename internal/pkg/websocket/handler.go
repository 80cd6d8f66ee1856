package websocket

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
)

// Handler upgrades requests into notification streams.
type Handler struct {
	hub    *Hub
	logger zerolog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, logger zerolog.Logger) *Handler {
	return &Handler{hub: hub, logger: logger}
}

// Serve upgrades the connection and subscribes it to userID's notifications.
// On failure the upgrader has already written an HTTP error.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("failed to upgrade connection: %w", err)
	}

	client := &Client{
		hub:    h.hub,
		conn:   conn,
		send:   make(chan []byte, 16),
		userID: userID,
		logger: h.logger,
	}

	select {
	case h.hub.register <- client:
	case <-h.hub.done:
		conn.Close()
		return fmt.Errorf("notification hub is closed")
	}

	go client.writePump()
	go client.readPump()

	h.logger.Info().
		Str("user_id", userID).
		Str("remote_addr", conn.RemoteAddr().String()).
		Msg("WebSocket connection established")
	return nil
}
