package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// seenCap bounds the per-connection duplicate filter. Chat volume per pair is
// small; resetting after the cap only risks re-delivering very old ids.
const seenCap = 512

// client is one websocket connection subscribed to a channel. seen tracks
// chat message ids already delivered so the sender's own insert is not shown
// twice when it echoes back over pub/sub.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
	seen map[string]struct{}
}

// deliver writes the payload unless its message id was already seen.
func (c *client) deliver(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id := messageID(data); id != "" {
		if _, dup := c.seen[id]; dup {
			return
		}
		if len(c.seen) >= seenCap {
			c.seen = make(map[string]struct{})
		}
		c.seen[id] = struct{}{}
	}
	c.conn.WriteMessage(websocket.TextMessage, data)
}

// messageID extracts the payload id from a chat_message envelope; other event
// types are delivered unfiltered.
func messageID(data []byte) string {
	var envelope struct {
		Type    string `json:"type"`
		Payload struct {
			ID string `json:"id"`
		} `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return ""
	}
	if envelope.Type != "chat_message" {
		return ""
	}
	return envelope.Payload.ID
}

// Hub fans redis pub/sub channels out to websocket connections. A channel is
// subscribed while it has at least one connection.
type Hub struct {
	mu          sync.RWMutex
	connections map[string][]*client
	redisClient *redis.Client
	cancelFuncs map[string]context.CancelFunc
}

func NewHub(redisClient *redis.Client) *Hub {
	return &Hub{
		connections: make(map[string][]*client),
		redisClient: redisClient,
		cancelFuncs: make(map[string]context.CancelFunc),
	}
}

// Serve upgrades the request and streams the channel until the peer
// disconnects. The caller has already authenticated the request and resolved
// the channel name.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, channel string) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	c := &client{conn: conn, seen: make(map[string]struct{})}
	h.register(channel, c)

	// Keep connection alive and handle disconnect
	go func() {
		defer h.unregister(channel, c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
		}
	}()
}

func (h *Hub) register(channel string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.connections[channel] = append(h.connections[channel], c)

	// First connection on a channel starts its pub/sub subscription.
	if len(h.connections[channel]) == 1 {
		ctx, cancel := context.WithCancel(context.Background())
		h.cancelFuncs[channel] = cancel
		go h.subscribe(ctx, channel)
	}

	log.Printf("WebSocket connected: channel %s (total: %d)", channel, len(h.connections[channel]))
}

func (h *Hub) unregister(channel string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	c.conn.Close()

	clients := h.connections[channel]
	for i, cc := range clients {
		if cc == c {
			h.connections[channel] = append(clients[:i], clients[i+1:]...)
			break
		}
	}

	if len(h.connections[channel]) == 0 {
		delete(h.connections, channel)
		if cancel, ok := h.cancelFuncs[channel]; ok {
			cancel()
			delete(h.cancelFuncs, channel)
		}
	}

	log.Printf("WebSocket disconnected: channel %s", channel)
}

func (h *Hub) subscribe(ctx context.Context, channel string) {
	pubsub := h.redisClient.Subscribe(ctx, channel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			h.broadcast(channel, []byte(msg.Payload))
		}
	}
}

func (h *Hub) broadcast(channel string, data []byte) {
	h.mu.RLock()
	clients := make([]*client, len(h.connections[channel]))
	copy(clients, h.connections[channel])
	h.mu.RUnlock()

	for _, c := range clients {
		c.deliver(data)
	}
}
