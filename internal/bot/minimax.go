package bot

import (
	"math"

	"ctchen222/tictactoe-ai/internal/game"
)

// winScore is the magnitude of an immediate win; depth is subtracted so that
// quicker wins and slower losses score better.
const winScore = 10

// Search returns the minimax score of board with depth plies already played.
// Positive scores favor O. The board is modified while probing and restored
// before every return.
func Search(board *game.Board, depth int, maximizingForO bool) int {
	switch game.EvaluatePtr(board) {
	case game.OWins:
		return winScore - depth
	case game.XWins:
		return depth - winScore
	case game.Draw:
		return 0
	}

	if maximizingForO {
		best := math.MinInt
		for i := range board {
			if board[i] != game.Empty {
				continue
			}
			score := probe(board, i, game.O, func() int {
				return Search(board, depth+1, false)
			})
			best = max(best, score)
		}
		return best
	}

	best := math.MaxInt
	for i := range board {
		if board[i] != game.Empty {
			continue
		}
		score := probe(board, i, game.X, func() int {
			return Search(board, depth+1, true)
		})
		best = min(best, score)
	}
	return best
}

// probe places mark at cell for the duration of fn.
func probe(board *game.Board, cell int, mark game.Mark, fn func() int) int {
	board[cell] = mark
	defer func() { board[cell] = game.Empty }()
	return fn()
}

// ChooseImpossibleMove plays O where the opponent's best reply scores highest.
// Ties go to the lowest index.
func (e *Engine) ChooseImpossibleMove(board game.Board) (int, error) {
	if err := requireMoves(&board); err != nil {
		return -1, err
	}

	bestScore := math.MinInt
	bestMove := -1
	for i := range board {
		if board[i] != game.Empty {
			continue
		}
		score := probe(&board, i, game.O, func() int {
			return Search(&board, 0, false)
		})
		if score > bestScore {
			bestScore = score
			bestMove = i
		}
	}
	return bestMove, nil
}

// Scores returns the search score of placing O on each cell. Occupied cells
// are reported with Legal=false.
func Scores(board game.Board) [game.CellCount]CellScore {
	var out [game.CellCount]CellScore
	for i := range board {
		if board[i] != game.Empty {
			continue
		}
		out[i] = CellScore{
			Legal: true,
			Score: probe(&board, i, game.O, func() int { return Search(&board, 0, false) }),
		}
	}
	return out
}

// CellScore is the search score of one candidate move.
type CellScore struct {
	Legal bool `json:"legal"`
	Score int  `json:"score"`
}
