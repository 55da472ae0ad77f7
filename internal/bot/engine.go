// Package bot picks the computer's moves. The computer always plays O, the
// maximizing side of the search.
package bot

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"ctchen222/tictactoe-ai/internal/game"
)

// Difficulty is the strategy tier used to pick a move.
type Difficulty string

const (
	Easy       Difficulty = "easy"
	Medium     Difficulty = "medium"
	Impossible Difficulty = "impossible"
)

var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	ErrNoLegalMoves      = errors.New("no legal moves")
)

// ParseDifficulty maps a label onto a tier.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(s); d {
	case Easy, Medium, Impossible:
		return d, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
	}
}

// RandomSource yields uniform values in [0, 1). *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// Engine is stateless apart from its random source. It is safe for
// concurrent use; draws are serialized.
type Engine struct {
	mu  sync.Mutex
	rng RandomSource
}

// NewEngine returns an engine drawing from rng. A nil rng uses a time-seeded PCG source.
func NewEngine(rng RandomSource) *Engine {
	if rng == nil {
		seed := uint64(time.Now().UnixNano())
		rng = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	return &Engine{rng: rng}
}

// ChooseMove dispatches on the difficulty tier.
func (e *Engine) ChooseMove(board game.Board, difficulty Difficulty) (int, error) {
	switch difficulty {
	case Easy:
		return e.ChooseEasyMove(board)
	case Medium:
		return e.ChooseMediumMove(board)
	case Impossible:
		return e.ChooseImpossibleMove(board)
	default:
		return -1, fmt.Errorf("%w: %q", ErrInvalidDifficulty, difficulty)
	}
}

func requireMoves(board *game.Board) error {
	for _, c := range board {
		if c == game.Empty {
			return nil
		}
	}
	return fmt.Errorf("%w: board %s is full", ErrNoLegalMoves, board)
}

func (e *Engine) draw() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rng.Float64()
}

// pick maps one draw onto cells, the way Math.floor(r*n) does.
func (e *Engine) pick(cells []int) int {
	i := int(e.draw() * float64(len(cells)))
	if i >= len(cells) {
		i = len(cells) - 1
	}
	if i < 0 {
		i = 0
	}
	return cells[i]
}
