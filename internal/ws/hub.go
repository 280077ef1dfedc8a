package ws

import (
	"encoding/json"
	"sync"

	"clicker_game/internal/domain"
	"clicker_game/internal/logger"
)

// Hub tracks live connections per user. A user may hold several (tabs,
// devices); every one of them receives the player's updates.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*Client]struct{}
}

func NewHub() *Hub {
	return &Hub{clients: make(map[int64]map[*Client]struct{})}
}

func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		set = make(map[*Client]struct{})
		h.clients[c.UserID] = set
	}
	set[c] = struct{}{}
	logger.Debug("ws client registered", "user_id", c.UserID, "connections", len(set))
}

func (h *Hub) OnDisconnect(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.clients[c.UserID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.Send)
	if len(set) == 0 {
		delete(h.clients, c.UserID)
	}
	logger.Debug("ws client disconnected", "user_id", c.UserID)
}

// Connections returns how many sockets userID currently holds.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// NotifyPlayer sends a player_update snapshot to every connection of userID.
func (h *Hub) NotifyPlayer(userID int64, p *domain.Player) {
	msg, err := json.Marshal(PlayerUpdateMessage{Type: MsgPlayerUpdate, Player: p})
	if err != nil {
		logger.Error("ws marshal player update", "error", err, "user_id", userID)
		return
	}
	h.SendTo(userID, msg)
}

// SendTo queues msg for every connection of userID. Slow consumers with a
// full buffer drop the message rather than block the game operation.
func (h *Hub) SendTo(userID int64, msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients[userID] {
		select {
		case c.Send <- msg:
		default:
			logger.Warn("ws send buffer full, dropping message", "user_id", userID)
		}
	}
}
