package models

import (
	"ctchen222/tictactoe-ai/internal/bot"
	"ctchen222/tictactoe-ai/internal/game"
)

type CreateGameRequest struct {
	Mode       game.Mode `json:"mode" binding:"required,gamemode"`
	Difficulty string    `json:"difficulty"`
}

type MoveRequest struct {
	Cell *int `json:"cell" binding:"required"`
}

// EngineMoveRequest asks for the computer's (O's) move on an arbitrary board.
type EngineMoveRequest struct {
	Board      []game.Mark `json:"board" binding:"required,len=9,dive,mark"`
	Difficulty string      `json:"difficulty" binding:"required"`
}

type EngineMoveResponse struct {
	Cell int `json:"cell"`
}

type EvaluateRequest struct {
	Board []game.Mark `json:"board" binding:"required,len=9,dive,mark"`
}

// EvaluateResponse reports the terminal state of a board. Scores holds the
// search score of O playing each cell and is only set for ongoing boards.
type EvaluateResponse struct {
	Outcome game.Outcome                   `json:"outcome"`
	Line    []int                          `json:"line,omitempty"`
	Scores  *[game.CellCount]bot.CellScore `json:"scores,omitempty"`
}

// ToBoard copies a validated nine-cell slice into a Board.
func ToBoard(cells []game.Mark) game.Board {
	var b game.Board
	copy(b[:], cells)
	return b
}
