package transport

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"

	"github.com/MayankMankar1/ShadowSignal/game"
)

// Hub tracks connected clients and implements the engine's Sender boundary.
// It never blocks on a recipient: frames to a stalled client are dropped.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	log     zerolog.Logger
}

func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		log:     log,
	}
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.ID] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *Hub) client(id string) (*Client, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Send implements game.Sender for a single recipient. Unknown ids are
// ignored: the engine may broadcast to a player whose socket just died.
func (h *Hub) Send(playerID string, env game.Envelope) {
	c, ok := h.client(playerID)
	if !ok {
		return
	}
	data, err := json.Marshal(env)
	if err != nil {
		h.log.Error().Err(err).Str("type", env.Type).Msg("marshal envelope")
		return
	}
	if !c.enqueue(data) {
		h.log.Warn().Str("client", playerID).Str("type", env.Type).Msg("send buffer full, frame dropped")
	}
}

// RoomClosed tells every connected client that a room ceased to exist, so
// lobby screens can prune stale codes.
func (h *Hub) RoomClosed(code string) {
	data, err := json.Marshal(game.Envelope{
		Type: game.MsgRoomClosed,
		Data: map[string]string{"code": code},
	})
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, c := range h.clients {
		c.enqueue(data)
	}
}
