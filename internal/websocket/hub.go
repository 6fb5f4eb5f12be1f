package websocket

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/classware/classman-backend/internal/model"
)

// Hub fans published-post events out to connected clients. Slow clients are
// dropped rather than allowed to back up the broadcast loop.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	log        zerolog.Logger
}

// NewHub creates a new Hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 16),
		log:        log.With().Str("component", "ws_hub").Logger(),
	}
}

// Run processes registrations and broadcasts until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	h.log.Info().Msg("Announcement hub started")

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			return

		case client := <-h.register:
			h.clients[client] = true
			h.log.Debug().Int64("user_id", client.userID).Int("clients", len(h.clients)).Msg("client connected")

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}

		case payload := <-h.broadcast:
			for client := range h.clients {
				if !client.enqueue(payload) {
					delete(h.clients, client)
					client.Close()
				}
			}
		}
	}
}

// Register attaches a client to the hub.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister detaches a client from the hub.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

// BroadcastPostPublished pushes a post_published event to every client.
// Best-effort: if the broadcast buffer is full the event is dropped.
func (h *Hub) BroadcastPostPublished(post model.Post) {
	payload, err := json.Marshal(PostPublishedEvent{Event: EventPostPublished, Post: post})
	if err != nil {
		h.log.Error().Err(err).Msg("marshal post event")
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.log.Warn().Int64("post_id", post.ID).Msg("broadcast buffer full, event dropped")
	}
}
