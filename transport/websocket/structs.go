package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/gomoku/internal/entity"
)

const (
	actionConnect   = "connect"
	actionGameNew   = "game:new"
	actionGameJoin  = "game:join"
	actionGameTurn  = "game:turn"
	actionGameReset = "game:reset"
	actionGameLeave = "game:leave"
	actionError     = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Payload is shared by requests and responses. Requests fill Player, Game.ID and Cell,
// responses carry the player, the game snapshot and the error text.
type Payload struct {
	Player *entity.Player   `json:"player,omitempty"`
	Game   *entity.Snapshot `json:"game,omitempty"`
	Cell   *entity.Position `json:"cell,omitempty"`
	Error  string           `json:"error,omitempty"`
}
