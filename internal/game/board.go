package game

import "fmt"

// Mark represents the mark of a player (X, O) or an empty cell.
type Mark string

const (
	Empty Mark = ""
	X     Mark = "X"
	O     Mark = "O"
)

// Opponent returns the other player's mark. Empty has no opponent.
func (m Mark) Opponent() Mark {
	switch m {
	case X:
		return O
	case O:
		return X
	default:
		return Empty
	}
}

// Valid reports whether m is one of the three cell states.
func (m Mark) Valid() bool {
	return m == Empty || m == X || m == O
}

// Board cell index boundaries.
const (
	CellMin   = 0
	CellMax   = 8
	CellCount = 9
	Center    = 4
)

var (
	Corners = [4]int{0, 2, 6, 8}
	Edges   = [4]int{1, 3, 5, 7}
)

// WinningLines enumerates the rows, then columns, then diagonals.
var WinningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// Board is a 3x3 grid stored row-major: row0={0,1,2}, row1={3,4,5}, row2={6,7,8}.
type Board [CellCount]Mark

// Outcome is the terminal-state tag of a board.
type Outcome string

const (
	Ongoing Outcome = "ongoing"
	XWins   Outcome = "x_wins"
	OWins   Outcome = "o_wins"
	Draw    Outcome = "draw"
)

// Winner returns the winning mark, or Empty for draws and unfinished games.
func (o Outcome) Winner() Mark {
	switch o {
	case XWins:
		return X
	case OWins:
		return O
	default:
		return Empty
	}
}

// Terminal reports whether the game is over.
func (o Outcome) Terminal() bool {
	return o != Ongoing
}

// Evaluate checks all winning lines, then fullness.
func Evaluate(b Board) Outcome {
	if _, mark, ok := completedLine(&b); ok {
		if mark == X {
			return XWins
		}
		return OWins
	}
	if b.IsFull() {
		return Draw
	}
	return Ongoing
}

// EvaluatePtr is Evaluate without copying the board, for the search hot path.
func EvaluatePtr(b *Board) Outcome {
	if _, mark, ok := completedLine(b); ok {
		if mark == X {
			return XWins
		}
		return OWins
	}
	for _, c := range b {
		if c == Empty {
			return Ongoing
		}
	}
	return Draw
}

// WinningLine returns the first completed line, for highlighting.
func WinningLine(b Board) ([3]int, bool) {
	line, _, ok := completedLine(&b)
	return line, ok
}

func completedLine(b *Board) ([3]int, Mark, bool) {
	for _, ln := range WinningLines {
		m := b[ln[0]]
		if m != Empty && b[ln[1]] == m && b[ln[2]] == m {
			return ln, m, true
		}
	}
	return [3]int{}, Empty, false
}

// EmptyCells returns the indices of empty cells in ascending order.
func (b Board) EmptyCells() []int {
	cells := make([]int, 0, CellCount)
	for i, c := range b {
		if c == Empty {
			cells = append(cells, i)
		}
	}
	return cells
}

// IsFull reports whether no empty cell remains.
func (b Board) IsFull() bool {
	for _, c := range b {
		if c == Empty {
			return false
		}
	}
	return true
}

// Count returns how many cells hold m.
func (b Board) Count(m Mark) int {
	n := 0
	for _, c := range b {
		if c == m {
			n++
		}
	}
	return n
}

// Swapped returns the board with X and O exchanged.
func (b Board) Swapped() Board {
	var out Board
	for i, c := range b {
		out[i] = c.Opponent()
	}
	return out
}

// Valid reports whether every cell holds a known mark.
func (b Board) Valid() bool {
	for _, c := range b {
		if !c.Valid() {
			return false
		}
	}
	return true
}

// String renders the board as three rows, '-' for empty cells.
func (b Board) String() string {
	buf := make([]byte, 0, 11)
	for i, c := range b {
		if i > 0 && i%3 == 0 {
			buf = append(buf, '/')
		}
		if c == Empty {
			buf = append(buf, '-')
		} else {
			buf = append(buf, c[0])
		}
	}
	return string(buf)
}

// ParseBoard reads nine cells of 'X', 'O' or '-' (also '.' or '_'), ignoring '/' and spaces.
func ParseBoard(s string) (Board, error) {
	var b Board
	i := 0
	for _, r := range s {
		switch r {
		case '/', ' ':
			continue
		}
		if i >= CellCount {
			return Board{}, fmt.Errorf("board %q has more than %d cells", s, CellCount)
		}
		switch r {
		case 'X', 'x':
			b[i] = X
		case 'O', 'o':
			b[i] = O
		case '-', '.', '_':
			b[i] = Empty
		default:
			return Board{}, fmt.Errorf("board %q: unexpected cell %q", s, r)
		}
		i++
	}
	if i != CellCount {
		return Board{}, fmt.Errorf("board %q has %d cells, want %d", s, i, CellCount)
	}
	return b, nil
}
