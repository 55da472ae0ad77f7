package room

import (
	"context"
	"encoding/json"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/validator"
	"ctchen222/tictactoe-ai/pkg/proto"
)

// HandleMessage dispatches one client message. The resulting state reaches
// the client as an event; only failures are answered directly.
func (r *Room) HandleMessage(ctx context.Context, rawMessage []byte) {
	ctx, span := tracer.Start(ctx, "room.HandleMessage", trace.WithAttributes(
		attribute.String("player.id", r.PlayerID),
		attribute.String("game.id", r.GameID),
	))
	defer span.End()

	var message proto.ClientToServerMessage
	if err := json.Unmarshal(rawMessage, &message); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error unmarshalling message")
		r.sendError("malformed message")
		return
	}
	if err := validator.GetValidator().Struct(message); err != nil {
		slog.WarnContext(ctx, "invalid message from player", "player.id", r.PlayerID, "error", err)
		span.SetStatus(codes.Error, "invalid message format")
		r.sendError(err.Error())
		return
	}
	span.SetAttributes(attribute.String("message.type", message.Type))

	var err error
	switch message.Type {
	case proto.TypeMove:
		span.SetAttributes(attribute.Int("move.cell", *message.Cell))
		_, err = r.games.Move(ctx, r.PlayerID, r.GameID, *message.Cell)
	case proto.TypeReset:
		_, err = r.games.Reset(ctx, r.PlayerID, r.GameID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "message rejected")
		r.sendError(err.Error())
	}
}
