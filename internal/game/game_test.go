package game

import (
	"errors"
	"testing"
)

func TestNewGame(t *testing.T) {
	g, err := New("g1", "p1", ModePvC, "medium")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if g.Turn != X {
		t.Errorf("expected X to move first, got %v", g.Turn)
	}
	if g.Phase != AwaitingPlayerMove || g.Outcome != Ongoing {
		t.Errorf("unexpected initial state phase=%v outcome=%v", g.Phase, g.Outcome)
	}
	if g.Difficulty != "medium" {
		t.Errorf("expected difficulty to be kept, got %q", g.Difficulty)
	}

	pvp, err := New("g2", "p1", ModePvP, "impossible")
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	if pvp.Difficulty != "" {
		t.Errorf("pvp game should drop difficulty, got %q", pvp.Difficulty)
	}

	if _, err := New("g3", "p1", Mode("online"), ""); !errors.Is(err, ErrInvalidMode) {
		t.Errorf("expected ErrInvalidMode, got %v", err)
	}
}

func TestPlayErrors(t *testing.T) {
	tests := []struct {
		name string
		cell int
		mark Mark
		want error
	}{
		{name: "Below range", cell: -1, mark: X, want: ErrOutOfBounds},
		{name: "Above range", cell: 9, mark: X, want: ErrOutOfBounds},
		{name: "Wrong mark", cell: 1, mark: O, want: ErrNotYourTurn},
		{name: "Occupied", cell: 0, mark: O, want: ErrOccupied},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _ := New("g", "p", ModePvP, "")
			if tt.want == ErrOccupied {
				if err := g.Play(0, X); err != nil {
					t.Fatalf("setup move failed: %v", err)
				}
			}
			if err := g.Play(tt.cell, tt.mark); !errors.Is(err, tt.want) {
				t.Errorf("Play(%d, %s) got %v, want %v", tt.cell, tt.mark, err, tt.want)
			}
		})
	}
}

func TestPhaseTransitions(t *testing.T) {
	g, _ := New("g", "p", ModePvC, "easy")

	if err := g.Play(4, X); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if g.Phase != AwaitingComputerMove || !g.ComputerToMove() {
		t.Errorf("expected computer to move, phase=%v", g.Phase)
	}
	if err := g.Play(0, O); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	if g.Phase != AwaitingPlayerMove || g.Turn != X {
		t.Errorf("expected player to move, phase=%v turn=%v", g.Phase, g.Turn)
	}

	pvp, _ := New("g", "p", ModePvP, "")
	_ = pvp.Play(4, X)
	if pvp.Phase != AwaitingPlayerMove || pvp.Turn != O {
		t.Errorf("pvp should wait for the second human, phase=%v turn=%v", pvp.Phase, pvp.Turn)
	}
}

func TestPlayToWinAndDraw(t *testing.T) {
	win, _ := New("g", "p", ModePvP, "")
	for _, m := range []struct {
		cell int
		mark Mark
	}{{0, X}, {3, O}, {1, X}, {4, O}, {2, X}} {
		if err := win.Play(m.cell, m.mark); err != nil {
			t.Fatalf("Play(%d, %s) failed: %v", m.cell, m.mark, err)
		}
	}
	if win.Outcome != XWins || win.Phase != Finished {
		t.Errorf("expected X to win, outcome=%v phase=%v", win.Outcome, win.Phase)
	}
	if len(win.Line) != 3 || win.Line[0] != 0 || win.Line[2] != 2 {
		t.Errorf("expected top row highlighted, got %v", win.Line)
	}
	if err := win.Play(8, O); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver, got %v", err)
	}

	draw, _ := New("g", "p", ModePvP, "")
	// X O X / X O O / O X X
	for i, cell := range []int{0, 1, 2, 4, 3, 5, 7, 6, 8} {
		mark := X
		if i%2 == 1 {
			mark = O
		}
		if err := draw.Play(cell, mark); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
	}
	if draw.Outcome != Draw || draw.Line != nil {
		t.Errorf("expected draw without line, outcome=%v line=%v", draw.Outcome, draw.Line)
	}

	if draw.Round != 0 {
		t.Errorf("new game should be in round 0, got %d", draw.Round)
	}
	draw.Reset()
	if draw.Moves != 0 || draw.Phase != AwaitingPlayerMove || draw.Board != (Board{}) {
		t.Errorf("Reset did not clear the game: %+v", draw)
	}
	if draw.Round != 1 {
		t.Errorf("Reset should advance the round, got %d", draw.Round)
	}
}
