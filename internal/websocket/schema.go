package websocket

import "github.com/classware/classman-backend/internal/model"

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventPostPublished Event = "post_published"
	EventPong          Event = "pong"
)

// PostPublishedEvent announces a newly published post to connected clients.
type PostPublishedEvent struct {
	Event Event      `json:"event"`
	Post  model.Post `json:"post"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}
