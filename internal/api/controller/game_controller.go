package controller

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"ctchen222/tictactoe-ai/internal/api/middleware"
	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/game"
	"ctchen222/tictactoe-ai/internal/repository"
)

// GameService is the part of session.Service the HTTP layer uses.
type GameService interface {
	Create(ctx context.Context, playerID string, mode game.Mode, difficulty string) (*game.Game, error)
	Get(ctx context.Context, playerID, id string) (*game.Game, error)
	Move(ctx context.Context, playerID, id string, cell int) (*game.Game, error)
	Reset(ctx context.Context, playerID, id string) (*game.Game, error)
	Scores(ctx context.Context, playerID string) (repository.Scores, error)
	ClearScores(ctx context.Context, playerID string) error
}

type GameController struct {
	games GameService
}

func NewGameController(games GameService) *GameController {
	return &GameController{games: games}
}

func (gc *GameController) Create(c *gin.Context) {
	var req models.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := gc.games.Create(c.Request.Context(), middleware.PlayerID(c), req.Mode, req.Difficulty)
	if err != nil {
		fail(c, err)
		return
	}
	response.CreatedResponse(c, g)
}

func (gc *GameController) Get(c *gin.Context) {
	g, err := gc.games.Get(c.Request.Context(), middleware.PlayerID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessResponse(c, g)
}

// Move plays a cell. Against the computer the response may already include
// its reply, depending on the configured pacing delay.
func (gc *GameController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	g, err := gc.games.Move(c.Request.Context(), middleware.PlayerID(c), c.Param("id"), *req.Cell)
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessResponse(c, g)
}

func (gc *GameController) Reset(c *gin.Context) {
	g, err := gc.games.Reset(c.Request.Context(), middleware.PlayerID(c), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessResponse(c, g)
}

func (gc *GameController) Scores(c *gin.Context) {
	s, err := gc.games.Scores(c.Request.Context(), middleware.PlayerID(c))
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessResponse(c, s)
}

func (gc *GameController) ClearScores(c *gin.Context) {
	if err := gc.games.ClearScores(c.Request.Context(), middleware.PlayerID(c)); err != nil {
		fail(c, err)
		return
	}
	response.SuccessResponse(c, repository.Scores{})
}
