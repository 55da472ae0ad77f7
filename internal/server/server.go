package server

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"ctchen222/tictactoe-ai/internal/api/controller"
	"ctchen222/tictactoe-ai/internal/api/middleware"
	"ctchen222/tictactoe-ai/internal/room"
	"ctchen222/tictactoe-ai/internal/validator"
)

// Deps are the handlers the routes dispatch to.
type Deps struct {
	Users  *controller.UserController
	Games  *controller.GameController
	Engine *controller.EngineController
	Rooms  *room.Handler
	Auth   middleware.TokenParser
	// StaticDir, when it exists, is served for every unmatched path.
	StaticDir string
}

type Server struct {
	engine *gin.Engine
}

func NewServer(deps Deps) *Server {
	validator.RegisterBinding()

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		users := api.Group("/users")
		users.POST("/register", deps.Users.Register)
		users.POST("/login", deps.Users.Login)
		users.POST("/guest", deps.Users.GuestLogin)

		engine := api.Group("/engine")
		engine.POST("/move", deps.Engine.Move)
		engine.POST("/evaluate", deps.Engine.Evaluate)

		authed := api.Group("", middleware.Auth(deps.Auth))
		authed.POST("/games", deps.Games.Create)
		authed.GET("/games/:id", deps.Games.Get)
		authed.POST("/games/:id/moves", deps.Games.Move)
		authed.POST("/games/:id/reset", deps.Games.Reset)
		authed.GET("/scores", deps.Games.Scores)
		authed.DELETE("/scores", deps.Games.ClearScores)
	}
	r.GET("/ws/games/:id", middleware.Auth(deps.Auth), deps.Rooms.Serve)
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	if info, err := os.Stat(deps.StaticDir); err == nil && info.IsDir() {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(deps.StaticDir))))
	}

	return &Server{engine: r}
}

// Engine returns the router wrapped in OpenTelemetry HTTP instrumentation.
func (s *Server) Engine() http.Handler {
	return otelhttp.NewHandler(s.engine, "http.server",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		level := slog.LevelInfo
		if c.Writer.Status() >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		slog.Log(c.Request.Context(), level, "http request",
			"http.method", c.Request.Method,
			"http.route", c.FullPath(),
			"http.status_code", c.Writer.Status(),
			"http.duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
