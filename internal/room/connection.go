package room

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// ReadPump reads client messages until the connection fails, then tears the room down.
func (r *Room) ReadPump(ctx context.Context) {
	defer func() {
		close(r.done)
		r.sub.Close()
		slog.InfoContext(ctx, "player left game stream", "game.id", r.GameID, "player.id", r.PlayerID)
	}()

	r.conn.SetReadLimit(maxMessageSize)
	_ = r.conn.SetReadDeadline(time.Now().Add(pongWait))
	r.conn.SetPongHandler(func(string) error {
		return r.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := r.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !errors.As(err, &closeErr) || websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.WarnContext(ctx, "player connection error", "game.id", r.GameID, "player.id", r.PlayerID, "error", err)
			}
			return
		}
		r.HandleMessage(ctx, msg)
	}
}

// WritePump is the connection's only writer: queued replies, forwarded
// events and heartbeat pings all go through it.
func (r *Room) WritePump() {
	ticker := time.NewTicker(heartbeatInterval)
	defer func() {
		ticker.Stop()
		r.conn.Close()
	}()

	events := r.sub.Events()
	for {
		select {
		case <-r.done:
			_ = r.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case msg := <-r.send:
			if err := r.write(websocket.TextMessage, msg); err != nil {
				return
			}

		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := r.write(websocket.TextMessage, r.encodeEvent(ev)); err != nil {
				return
			}

		case <-ticker.C:
			if err := r.write(websocket.PingMessage, nil); err != nil {
				slog.Warn("failed to send ping, assuming disconnect", "player.id", r.PlayerID, "error", err)
				return
			}
		}
	}
}

func (r *Room) write(messageType int, data []byte) error {
	_ = r.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return r.conn.WriteMessage(messageType, data)
}
