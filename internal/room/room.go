// Package room streams a game to websocket clients and accepts moves over
// the same connection.
package room

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/api/controller"
	"ctchen222/tictactoe-ai/internal/api/middleware"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
)

const (
	heartbeatInterval = 10 * time.Second
	pongWait          = 2 * heartbeatInterval
	writeWait         = 5 * time.Second
	maxMessageSize    = 512
	sendBuffer        = 8
)

var tracer = otel.Tracer("room")

// GameService is the part of session.Service a room drives.
type GameService interface {
	Get(ctx context.Context, playerID, id string) (*game.Game, error)
	Move(ctx context.Context, playerID, id string, cell int) (*game.Game, error)
	Reset(ctx context.Context, playerID, id string) (*game.Game, error)
}

// Handler upgrades requests to game rooms.
type Handler struct {
	games    GameService
	bus      repository.EventBus
	upgrader websocket.Upgrader

	mu     sync.Mutex
	closed bool
	rooms  map[*Room]struct{}
	wg     sync.WaitGroup
}

func NewHandler(games GameService, bus repository.EventBus) *Handler {
	return &Handler{
		games: games,
		bus:   bus,
		rooms: make(map[*Room]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// Room is one client connection watching one game.
type Room struct {
	GameID   string
	PlayerID string

	conn  *websocket.Conn
	games GameService
	sub   repository.Subscription
	send  chan []byte
	done  chan struct{}
}

// Serve handles GET /ws/games/:id. It runs behind the auth middleware and
// returns once the client disconnects.
func (h *Handler) Serve(c *gin.Context) {
	gameID := c.Param("id")
	playerID := middleware.PlayerID(c)
	ctx, span := tracer.Start(c.Request.Context(), "room.Serve", trace.WithAttributes(
		attribute.String("game.id", gameID),
		attribute.String("player.id", playerID),
	))
	defer span.End()

	if h.isClosed() {
		response.ErrorResponse(c, http.StatusServiceUnavailable, "server is shutting down")
		return
	}

	g, err := h.games.Get(ctx, playerID, gameID)
	if err != nil {
		response.ErrorResponse(c, controller.StatusFor(err), err.Error())
		return
	}

	// Subscribe before the snapshot so no update falls between the two.
	sub, err := h.bus.Subscribe(ctx, gameID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to subscribe")
		response.ErrorResponse(c, http.StatusServiceUnavailable, "game stream unavailable")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		sub.Close()
		slog.WarnContext(ctx, "failed to upgrade connection", "game.id", gameID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to upgrade connection")
		return
	}

	r := &Room{
		GameID:   gameID,
		PlayerID: playerID,
		conn:     conn,
		games:    h.games,
		sub:      sub,
		send:     make(chan []byte, sendBuffer),
		done:     make(chan struct{}),
	}
	if !h.register(r) {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server is shutting down"), time.Now().Add(writeWait))
		conn.Close()
		sub.Close()
		return
	}
	defer h.unregister(r)
	slog.InfoContext(ctx, "player joined game stream", "game.id", gameID, "player.id", playerID)

	r.sendState(g)
	go func() {
		defer h.wg.Done()
		r.WritePump()
	}()
	r.ReadPump(context.WithoutCancel(ctx))
}

// register tracks r and accounts for its writer. It fails once Close has begun.
func (h *Handler) register(r *Room) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.rooms[r] = struct{}{}
	h.wg.Add(1)
	return true
}

func (h *Handler) unregister(r *Room) {
	h.mu.Lock()
	delete(h.rooms, r)
	h.mu.Unlock()
}

func (h *Handler) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Close disconnects every client and waits for the writers to stop. Later
// connection attempts are refused.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	for r := range h.rooms {
		r.conn.Close()
	}
	h.mu.Unlock()
	h.wg.Wait()
}
