package proto

import "encoding/json"

// Client message types.
const (
	TypeMove  = "move"
	TypeReset = "reset"
)

// Server message types. Game events are forwarded with their own type.
const (
	TypeState = "state"
	TypeError = "error"
)

// ClientToServerMessage is a message from the client to the server.
type ClientToServerMessage struct {
	Type string `json:"type" validate:"required,oneof=move reset"`
	Cell *int   `json:"cell,omitempty" validate:"required_if=Type move"`
}

// ServerToClientMessage is a message from the server to the client.
type ServerToClientMessage struct {
	Type    string          `json:"type" validate:"required"`
	GameID  string          `json:"game_id,omitempty"`
	Reason  string          `json:"reason,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}
