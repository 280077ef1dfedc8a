package ws

const (
	// client - server
	MsgPing = "ping"

	// server - client
	MsgReady        = "ready"
	MsgPong         = "pong"
	MsgPlayerUpdate = "player_update"
	MsgError        = "error"
)
