package game

import (
	"testing"
)

func mustParse(t *testing.T, s string) Board {
	t.Helper()
	b, err := ParseBoard(s)
	if err != nil {
		t.Fatalf("ParseBoard(%q) failed: %v", s, err)
	}
	return b
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		board string
		want  Outcome
	}{
		{name: "Empty board", board: "---/---/---", want: Ongoing},
		{name: "Partial board", board: "X--/-O-/---", want: Ongoing},
		{name: "X wins - first row", board: "XXX/-O-/--O", want: XWins},
		{name: "O wins - second column", board: "XO-/XO-/-O-", want: OWins},
		{name: "X wins - main diagonal", board: "X--/-X-/--X", want: XWins},
		{name: "O wins - anti-diagonal", board: "--O/-O-/O--", want: OWins},
		{name: "Draw - full board", board: "XOX/XOO/OXX", want: Draw},
		{name: "Full board with winner is a win", board: "XXX/OOX/OXO", want: XWins},
		{name: "One empty cell, no line", board: "XOX/XOO/OX-", want: Ongoing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Evaluate(mustParse(t, tt.board)); got != tt.want {
				t.Errorf("Evaluate() got = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateEveryLine(t *testing.T) {
	for _, mark := range []Mark{X, O} {
		want := XWins
		if mark == O {
			want = OWins
		}
		for _, ln := range WinningLines {
			var b Board
			for _, i := range ln {
				b[i] = mark
			}
			if got := Evaluate(b); got != want {
				t.Errorf("line %v filled with %s: got %v, want %v", ln, mark, got, want)
			}
			if got := EvaluatePtr(&b); got != want {
				t.Errorf("EvaluatePtr line %v filled with %s: got %v, want %v", ln, mark, got, want)
			}
			line, ok := WinningLine(b)
			if !ok || line != ln {
				t.Errorf("WinningLine() = %v, %v; want %v, true", line, ok, ln)
			}
		}
	}
}

func TestBoardHelpers(t *testing.T) {
	b := mustParse(t, "XO-/-X-/O--")

	if got := b.EmptyCells(); len(got) != 5 || got[0] != 2 || got[4] != 8 {
		t.Errorf("EmptyCells() = %v", got)
	}
	if b.IsFull() {
		t.Error("IsFull() = true for a partial board")
	}
	if got := b.Count(X); got != 2 {
		t.Errorf("Count(X) = %d, want 2", got)
	}
	if got := b.Swapped().String(); got != "OX-/-O-/X--" {
		t.Errorf("Swapped() = %s", got)
	}
	if got := b.String(); got != "XO-/-X-/O--" {
		t.Errorf("String() = %s", got)
	}
	if X.Opponent() != O || O.Opponent() != X || Empty.Opponent() != Empty {
		t.Error("Opponent() mapping is wrong")
	}
}

func TestParseBoardErrors(t *testing.T) {
	for _, s := range []string{"", "XO", "XOXOXOXOXO", "XOX/OZO/XOX"} {
		if _, err := ParseBoard(s); err == nil {
			t.Errorf("ParseBoard(%q) expected an error", s)
		}
	}
}
