package bot

import (
	"ctchen222/tictactoe-ai/internal/game"
)

// easyRandomChance is the share of easy-tier moves played at random.
const easyRandomChance = 0.7

// ChooseEasyMove mostly plays at random and otherwise falls back to the medium tier.
func (e *Engine) ChooseEasyMove(board game.Board) (int, error) {
	if err := requireMoves(&board); err != nil {
		return -1, err
	}
	if e.draw() < easyRandomChance {
		return e.pick(board.EmptyCells()), nil
	}
	return e.ChooseMediumMove(board)
}

// ChooseMediumMove will win if it can, block if it must, then prefer the
// center, a random corner and a random edge in that order.
func (e *Engine) ChooseMediumMove(board game.Board) (int, error) {
	if err := requireMoves(&board); err != nil {
		return -1, err
	}

	// 1. Win
	if cell, ok := findWinningMove(&board, game.O); ok {
		return cell, nil
	}

	// 2. Block
	if cell, ok := findWinningMove(&board, game.X); ok {
		return cell, nil
	}

	// 3. Center
	if board[game.Center] == game.Empty {
		return game.Center, nil
	}

	// 4. Corners
	if corners := emptyOf(&board, game.Corners[:]); len(corners) > 0 {
		return e.pick(corners), nil
	}

	// 5. Edges
	if edges := emptyOf(&board, game.Edges[:]); len(edges) > 0 {
		return e.pick(edges), nil
	}

	return board.EmptyCells()[0], nil
}

// findWinningMove returns the open cell of the first line, in WinningLines
// order, holding two of mark and one empty cell.
func findWinningMove(board *game.Board, mark game.Mark) (int, bool) {
	for _, ln := range game.WinningLines {
		owned, open := 0, -1
		for _, i := range ln {
			switch board[i] {
			case mark:
				owned++
			case game.Empty:
				open = i
			}
		}
		if owned == 2 && open != -1 {
			return open, true
		}
	}
	return -1, false
}

func emptyOf(board *game.Board, cells []int) []int {
	var out []int
	for _, i := range cells {
		if board[i] == game.Empty {
			out = append(out, i)
		}
	}
	return out
}
