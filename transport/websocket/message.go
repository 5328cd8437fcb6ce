package websocket

import (
	"encoding/json"

	"github.com/playgrid/tictactoe-backend/internal/entity"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload - the body of a message in either direction. Cell is a pointer so
// a missing cell can be told apart from cell 0.
type Payload struct {
	Player *entity.Player `json:"player,omitempty"`
	Game   *entity.Game   `json:"game,omitempty"`
	Cell   *int           `json:"cell,omitempty"`
	Error  string         `json:"error,omitempty"`
}
