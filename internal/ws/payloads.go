package ws

import "clicker_game/internal/domain"

// client → server
type InboundMessage struct {
	Type string `json:"type"`
}

// server → client
type PlayerUpdateMessage struct {
	Type   string         `json:"type"`
	Player *domain.Player `json:"player"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
