package controller

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"ctchen222/tictactoe-ai/internal/api/middleware"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/session"
)

type fakeGames struct {
	games  map[string]*game.Game
	scores repository.Scores
}

func (f *fakeGames) Create(_ context.Context, playerID string, mode game.Mode, difficulty string) (*game.Game, error) {
	if mode == game.ModePvC {
		if _, err := bot.ParseDifficulty(difficulty); err != nil {
			return nil, err
		}
	}
	g, err := game.New(fmt.Sprintf("g%d", len(f.games)+1), playerID, mode, difficulty)
	if err != nil {
		return nil, err
	}
	f.games[g.ID] = g
	return g, nil
}

func (f *fakeGames) Get(_ context.Context, playerID, id string) (*game.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", session.ErrNotFound, id)
	}
	if g.PlayerID != playerID {
		return nil, session.ErrForbidden
	}
	return g, nil
}

func (f *fakeGames) Move(ctx context.Context, playerID, id string, cell int) (*game.Game, error) {
	g, err := f.Get(ctx, playerID, id)
	if err != nil {
		return nil, err
	}
	if err := g.Play(cell, g.Turn); err != nil {
		return nil, err
	}
	return g, nil
}

func (f *fakeGames) Reset(ctx context.Context, playerID, id string) (*game.Game, error) {
	g, err := f.Get(ctx, playerID, id)
	if err != nil {
		return nil, err
	}
	g.Reset()
	return g, nil
}

func (f *fakeGames) Scores(context.Context, string) (repository.Scores, error) {
	return f.scores, nil
}

func (f *fakeGames) ClearScores(context.Context, string) error {
	f.scores = repository.Scores{}
	return nil
}

type staticParser map[string]string

func (p staticParser) ParseToken(token string) (string, error) {
	if id, ok := p[token]; ok {
		return id, nil
	}
	return "", fmt.Errorf("unknown token")
}

func gameRouter(f *fakeGames) *gin.Engine {
	r := newRouter()
	gc := NewGameController(f)
	api := r.Group("/api", middleware.Auth(staticParser{"alice": "p1", "bob": "p2"}))
	api.POST("/games", gc.Create)
	api.GET("/games/:id", gc.Get)
	api.POST("/games/:id/moves", gc.Move)
	api.POST("/games/:id/reset", gc.Reset)
	api.GET("/scores", gc.Scores)
	api.DELETE("/scores", gc.ClearScores)
	return r
}

func TestGameRoutes(t *testing.T) {
	f := &fakeGames{games: map[string]*game.Game{}, scores: repository.Scores{XWins: 2}}
	r := gameRouter(f)
	as := func(token string) string { return "?token=" + token }

	w := do(t, r, http.MethodPost, "/api/games"+as("alice"), map[string]any{"mode": "pvp"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[game.Game](t, w).Extras
	assert.Equal(t, "g1", created.ID)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{name: "No token", method: http.MethodGet, path: "/api/games/g1", wantCode: http.StatusUnauthorized},
		{name: "Get own game", method: http.MethodGet, path: "/api/games/g1" + as("alice"), wantCode: http.StatusOK},
		{name: "Get foreign game", method: http.MethodGet, path: "/api/games/g1" + as("bob"), wantCode: http.StatusForbidden},
		{name: "Get missing game", method: http.MethodGet, path: "/api/games/nope" + as("alice"), wantCode: http.StatusNotFound},
		{name: "Unknown mode", method: http.MethodPost, path: "/api/games" + as("alice"), body: map[string]any{"mode": "online"}, wantCode: http.StatusBadRequest},
		{name: "Bad difficulty", method: http.MethodPost, path: "/api/games" + as("alice"), body: map[string]any{"mode": "pvc", "difficulty": "hard"}, wantCode: http.StatusBadRequest},
		{name: "Move", method: http.MethodPost, path: "/api/games/g1/moves" + as("alice"), body: map[string]any{"cell": 0}, wantCode: http.StatusOK},
		{name: "Occupied", method: http.MethodPost, path: "/api/games/g1/moves" + as("alice"), body: map[string]any{"cell": 0}, wantCode: http.StatusConflict},
		{name: "Out of bounds", method: http.MethodPost, path: "/api/games/g1/moves" + as("alice"), body: map[string]any{"cell": 12}, wantCode: http.StatusBadRequest},
		{name: "Missing cell", method: http.MethodPost, path: "/api/games/g1/moves" + as("alice"), body: map[string]any{}, wantCode: http.StatusBadRequest},
		{name: "Reset", method: http.MethodPost, path: "/api/games/g1/reset" + as("alice"), wantCode: http.StatusOK},
		{name: "Scores", method: http.MethodGet, path: "/api/scores" + as("alice"), wantCode: http.StatusOK},
		{name: "Clear scores", method: http.MethodDelete, path: "/api/scores" + as("alice"), wantCode: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, game.Board{}, f.games["g1"].Board, "reset cleared the board")
	assert.Zero(t, f.scores.XWins)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("wrapped: %w", session.ErrNotFound), http.StatusNotFound},
		{session.ErrForbidden, http.StatusForbidden},
		{bot.ErrInvalidDifficulty, http.StatusBadRequest},
		{bot.ErrNoLegalMoves, http.StatusUnprocessableEntity},
		{game.ErrNotYourTurn, http.StatusConflict},
		{game.ErrGameOver, http.StatusConflict},
		{repository.ErrConflict, http.StatusConflict},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}
