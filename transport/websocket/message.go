package websocket

import (
	"encoding/json"

	"github.com/rocketscienceinc/threetoe-backend/internal/entity"
	"github.com/rocketscienceinc/threetoe-backend/internal/tictactoe"
)

const (
	actionNewGame = "game:new"
	actionTurn    = "game:turn"
	actionState   = "game:state"
	actionReset   = "game:reset"
	actionPing    = "ping"
	actionError   = "error"
)

// Message represents a WebSocket message with an action type and a payload.
type Message struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type RequestPayload struct {
	GameID  string `json:"game_id,omitempty"`
	AILevel string `json:"ai_level,omitempty"`
	Cell    []int  `json:"cell,omitempty"`
}

type ResponsePayload struct {
	Game   *tictactoe.State `json:"game,omitempty"`
	AIMove *entity.Cell     `json:"ai_move,omitempty"`
	Error  string           `json:"error,omitempty"`
}

func mustMarshal(v any) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}

	return b
}
