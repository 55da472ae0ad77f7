package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"ctchen222/tictactoe-ai/internal/api/models"
	"ctchen222/tictactoe-ai/internal/api/response"
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"
)

var tracer = otel.Tracer("api.controller")

// MoveChooser picks O's move. *bot.Engine satisfies it.
type MoveChooser interface {
	ChooseMove(board game.Board, difficulty bot.Difficulty) (int, error)
}

// EngineController exposes the engine statelessly: callers send the board.
type EngineController struct {
	engine MoveChooser
}

func NewEngineController(engine MoveChooser) *EngineController {
	return &EngineController{engine: engine}
}

func (ec *EngineController) Move(c *gin.Context) {
	var req models.EngineMoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	board := models.ToBoard(req.Board)

	_, span := tracer.Start(c.Request.Context(), "engine.ChooseMove", trace.WithAttributes(
		attribute.String("game.board", board.String()),
		attribute.String("game.difficulty", req.Difficulty),
	))
	defer span.End()

	// Full boards are left to the engine, which reports ErrNoLegalMoves.
	if outcome := game.Evaluate(board); outcome == game.XWins || outcome == game.OWins {
		response.ErrorResponse(c, http.StatusUnprocessableEntity, "game is already won")
		return
	}
	cell, err := ec.engine.ChooseMove(board, bot.Difficulty(req.Difficulty))
	if err != nil {
		span.RecordError(err)
		fail(c, err)
		return
	}
	span.SetAttributes(attribute.Int("move.cell", cell))
	response.SuccessResponse(c, models.EngineMoveResponse{Cell: cell})
}

// Evaluate reports the outcome of a board and, while it is ongoing, the
// search score of every cell for O.
func (ec *EngineController) Evaluate(c *gin.Context) {
	var req models.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	board := models.ToBoard(req.Board)

	res := models.EvaluateResponse{Outcome: game.Evaluate(board)}
	if line, ok := game.WinningLine(board); ok {
		res.Line = line[:]
	}
	if res.Outcome == game.Ongoing {
		scores := bot.Scores(board)
		res.Scores = &scores
	}
	response.SuccessResponse(c, res)
}
