package room

import (
	"encoding/json"
	"log/slog"

	"ctchen222/tictactoe-ai/internal/events"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/pkg/proto"
)

// sendState queues a full snapshot of g.
func (r *Room) sendState(g *game.Game) {
	payload, err := json.Marshal(g)
	if err != nil {
		slog.Error("failed to marshal game state", "game.id", r.GameID, "error", err)
		return
	}
	r.queue(&proto.ServerToClientMessage{Type: proto.TypeState, GameID: r.GameID, Payload: payload})
}

func (r *Room) sendError(reason string) {
	r.queue(&proto.ServerToClientMessage{Type: proto.TypeError, GameID: r.GameID, Reason: reason})
}

func (r *Room) encodeEvent(ev events.Event) []byte {
	data, _ := json.Marshal(&proto.ServerToClientMessage{Type: ev.Type, GameID: ev.GameID, Payload: ev.Payload})
	return data
}

// queue hands msg to the writer, dropping it if the client is not keeping up.
func (r *Room) queue(msg *proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.Error("failed to marshal message", "game.id", r.GameID, "error", err)
		return
	}
	select {
	case r.send <- data:
	case <-r.done:
	default:
		slog.Warn("dropping message for slow client", "game.id", r.GameID, "player.id", r.PlayerID, "message.type", msg.Type)
	}
}
