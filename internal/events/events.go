package events

import (
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe-ai/internal/game"
)

// Event types published on a game's channel.
const (
	TypeGameUpdated  = "game_updated"
	TypeGameFinished = "game_finished"
)

// Channel is the pub/sub channel carrying events for one game.
func Channel(gameID string) string {
	return fmt.Sprintf("channel:game:%s", gameID)
}

// Event is a message published via Pub/Sub.
type Event struct {
	Type    string          `json:"event"`
	GameID  string          `json:"game_id"`
	Payload json.RawMessage `json:"payload"`
}

// GameUpdatedPayload carries the full game after any state change.
type GameUpdatedPayload struct {
	Game *game.Game `json:"game"`
	// LastMove is the cell just played, or -1 after a reset.
	LastMove int       `json:"last_move"`
	LastMark game.Mark `json:"last_mark,omitempty"`
}

// GameFinishedPayload is published once when a game reaches a terminal state.
type GameFinishedPayload struct {
	Outcome game.Outcome `json:"outcome"`
	Winner  game.Mark    `json:"winner,omitempty"`
	Line    []int        `json:"line,omitempty"`
}

// New builds an event with payload marshaled to JSON.
func New(eventType, gameID string, payload any) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, GameID: gameID, Payload: raw}, nil
}
