package game

import (
	"errors"
	"time"
)

// Mode selects who controls the O mark.
type Mode string

const (
	ModePvP Mode = "pvp" // hot-seat, both marks on the same client
	ModePvC Mode = "pvc" // human plays X, computer plays O
)

// Valid reports whether m is a known mode.
func (m Mode) Valid() bool {
	return m == ModePvP || m == ModePvC
}

// Phase is the turn-taking state of a game.
type Phase string

const (
	AwaitingPlayerMove   Phase = "awaiting_player_move"
	AwaitingComputerMove Phase = "awaiting_computer_move"
	Finished             Phase = "finished"
)

// ComputerMark is the mark the computer plays in pvc mode.
const ComputerMark = O

var (
	ErrGameOver    = errors.New("game already finished")
	ErrOutOfBounds = errors.New("invalid move")
	ErrOccupied    = errors.New("cell already occupied")
	ErrNotYourTurn = errors.New("not player's turn")
	ErrInvalidMode = errors.New("invalid game mode")
)

type Game struct {
	ID         string    `json:"id"`
	PlayerID   string    `json:"player_id"`
	Mode       Mode      `json:"mode"`
	Difficulty string    `json:"difficulty,omitempty"`
	Board      Board     `json:"board"`
	Turn       Mark      `json:"turn"`
	Phase      Phase     `json:"phase"`
	Outcome    Outcome   `json:"outcome"`
	Line       []int     `json:"line,omitempty"`
	Moves      int       `json:"moves"`
	Round      int       `json:"round"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// New returns a game with X to move.
func New(id, playerID string, mode Mode, difficulty string) (*Game, error) {
	if !mode.Valid() {
		return nil, ErrInvalidMode
	}
	if mode == ModePvP {
		difficulty = ""
	}
	now := time.Now().UTC()
	g := &Game{
		ID:         id,
		PlayerID:   playerID,
		Mode:       mode,
		Difficulty: difficulty,
		CreatedAt:  now,
	}
	g.clear()
	g.UpdatedAt = now
	return g, nil
}

// Play places mark at cell. The mark must be the one whose turn it is.
func (g *Game) Play(cell int, mark Mark) error {
	if g.Phase == Finished {
		return ErrGameOver
	}
	if cell < CellMin || cell > CellMax {
		return ErrOutOfBounds
	}
	if mark != g.Turn {
		return ErrNotYourTurn
	}
	if g.Board[cell] != Empty {
		return ErrOccupied
	}

	g.Board[cell] = mark
	g.Moves++
	g.UpdatedAt = time.Now().UTC()

	g.Outcome = Evaluate(g.Board)
	if g.Outcome.Terminal() {
		g.Phase = Finished
		if line, ok := WinningLine(g.Board); ok {
			g.Line = line[:]
		}
		return nil
	}

	g.Turn = mark.Opponent()
	g.Phase = g.phaseFor(g.Turn)
	return nil
}

// ComputerToMove reports whether the computer owes the next move.
func (g *Game) ComputerToMove() bool {
	return g.Phase == AwaitingComputerMove
}

// Reset clears the board for another round. Identity, mode and difficulty are
// kept and Round advances.
func (g *Game) Reset() {
	g.clear()
	g.Round++
}

func (g *Game) clear() {
	g.Board = Board{}
	g.Turn = X
	g.Phase = AwaitingPlayerMove
	g.Outcome = Ongoing
	g.Line = nil
	g.Moves = 0
	g.UpdatedAt = time.Now().UTC()
}

func (g *Game) phaseFor(turn Mark) Phase {
	if g.Mode == ModePvC && turn == ComputerMark {
		return AwaitingComputerMove
	}
	return AwaitingPlayerMove
}
