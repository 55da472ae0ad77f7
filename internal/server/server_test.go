package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"ctchen222/tictactoe-ai/internal/api/controller"
	apirepository "ctchen222/tictactoe-ai/internal/api/repository"
	"ctchen222/tictactoe-ai/internal/api/service"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/db"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
	"ctchen222/tictactoe-ai/internal/repository/mocks"
	"ctchen222/tictactoe-ai/internal/room"
	"ctchen222/tictactoe-ai/internal/session"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Extras  json.RawMessage `json:"extras"`
}

// TestPlayAgainstComputer drives a full game through the HTTP routes with
// the real session service on mocked storage.
func TestPlayAgainstComputer(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	pool, err := db.Connect(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })

	ctrl := gomock.NewController(t)
	games := mocks.NewMockGameRepository(ctrl)
	bus := mocks.NewMockEventBus(ctrl)
	bus.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	stored := map[string]*game.Game{}
	games.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, g *game.Game) error {
		cp := *g
		stored[g.ID] = &cp
		return nil
	})
	games.EXPECT().Update(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
			g, ok := stored[id]
			if !ok {
				return nil, repository.ErrGameNotFound
			}
			cp := *g
			if err := fn(&cp); err != nil {
				return nil, err
			}
			stored[id] = &cp
			out := cp
			return &out, nil
		}).AnyTimes()

	scores := repository.NewScoreRepository(pool)
	sessions, err := session.NewService(games, scores, bus, bot.NewEngine(nil), 0)
	require.NoError(t, err)
	t.Cleanup(sessions.Close)

	users := service.NewUserService(apirepository.NewUserRepository(pool), "secret", time.Hour)
	srv := NewServer(Deps{
		Users:  controller.NewUserController(users),
		Games:  controller.NewGameController(sessions),
		Engine: controller.NewEngineController(bot.NewEngine(nil)),
		Rooms:  room.NewHandler(sessions, bus),
		Auth:   users,
	}).Engine()

	call := func(method, path, token string, body any) (int, envelope) {
		var buf bytes.Buffer
		if body != nil {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
		req := httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		w := httptest.NewRecorder()
		srv.ServeHTTP(w, req)
		var env envelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
		return w.Code, env
	}

	code, env := call(http.MethodPost, "/api/users/guest", "", nil)
	require.Equal(t, http.StatusOK, code)
	var tok struct{ Token string }
	require.NoError(t, json.Unmarshal(env.Extras, &tok))

	code, env = call(http.MethodPost, "/api/games", tok.Token, map[string]any{"mode": "pvc", "difficulty": "impossible"})
	require.Equal(t, http.StatusCreated, code)
	var g game.Game
	require.NoError(t, json.Unmarshal(env.Extras, &g))

	// X plays the corners greedily; the engine must never lose.
	for g.Phase != game.Finished {
		cell := -1
		for _, c := range append(game.Corners[:], game.Center, 1, 3, 5, 7) {
			if g.Board[c] == game.Empty {
				cell = c
				break
			}
		}
		code, env = call(http.MethodPost, "/api/games/"+g.ID+"/moves", tok.Token, map[string]any{"cell": cell})
		require.Equal(t, http.StatusOK, code, string(env.Extras))
		require.NoError(t, json.Unmarshal(env.Extras, &g))
	}
	assert.NotEqual(t, game.XWins, g.Outcome)

	code, env = call(http.MethodGet, "/api/scores", tok.Token, nil)
	require.Equal(t, http.StatusOK, code)
	var s repository.Scores
	require.NoError(t, json.Unmarshal(env.Extras, &s))
	assert.Zero(t, s.XWins)

	code, _ = call(http.MethodPost, "/api/engine/move", "", map[string]any{
		"board": make([]string, 9), "difficulty": "impossible",
	})
	assert.Equal(t, http.StatusOK, code)
}

func TestHealthz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	srv := NewServer(Deps{
		Users:  controller.NewUserController(nil),
		Games:  controller.NewGameController(nil),
		Engine: controller.NewEngineController(bot.NewEngine(nil)),
		Rooms:  room.NewHandler(nil, nil),
	}).Engine()

	w := httptest.NewRecorder()
	srv.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
