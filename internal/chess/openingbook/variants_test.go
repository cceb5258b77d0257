package openingbook

import (
	"math/rand"
	"testing"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

func TestDefaultTableBonus(t *testing.T) {
	table := DefaultTable()
	g := board.New()
	e4, ok := g.FindMove("e2e4")
	if !ok {
		t.Fatalf("e2e4 not legal")
	}
	d4, _ := g.FindMove("d2d4")

	if got := table.Bonus(KingsPawn, 1, e4); got != firstTurnBonus {
		t.Fatalf("kings-pawn e2e4 bonus = %d, want %d", got, firstTurnBonus)
	}
	if got := table.Bonus(KingsPawn, 2, e4); got != 0 {
		t.Fatalf("e2e4 on turn 2 bonus = %d, want 0", got)
	}
	if got := table.Bonus(QueensGambit, 1, d4); got != firstTurnBonus {
		t.Fatalf("queens-gambit d2d4 bonus = %d", got)
	}
	if got := table.Bonus(NoVariant, 1, e4); got != 0 {
		t.Fatalf("no variant bonus = %d", got)
	}
}

func TestBonusDecreasesWithTurn(t *testing.T) {
	table := DefaultTable()
	line, ok := table.Line(English)
	if !ok {
		t.Fatalf("english line missing")
	}
	prev := firstTurnBonus + 1
	for i, mv := range line.Moves {
		from, _ := board.ParseSquare(mv[:2])
		to, _ := board.ParseSquare(mv[2:4])
		got := table.Bonus(English, i+1, board.Move{From: from, To: to})
		if got <= 0 || got > prev {
			t.Fatalf("turn %d bonus = %d after %d", i+1, got, prev)
		}
		prev = got
	}
}

func TestChooseRespectsColor(t *testing.T) {
	table := DefaultTable()
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 50; i++ {
		v := table.Choose(board.Black, r)
		line, ok := table.Line(v)
		if !ok || line.Color != board.Black {
			t.Fatalf("black chose %v", v)
		}
		v = table.Choose(board.White, r)
		line, ok = table.Line(v)
		if !ok || line.Color != board.White {
			t.Fatalf("white chose %v", v)
		}
	}
}

func TestNewTableRejectsBadLines(t *testing.T) {
	cases := []Line{
		{Variant: NoVariant, Moves: []string{"e2e4"}, Probability: 0.5},
		{Variant: KingsPawn, Probability: 0.5},
		{Variant: KingsPawn, Moves: []string{"e2e4"}, Probability: 0},
		{Variant: KingsPawn, Moves: []string{"e2e9"}, Probability: 0.5},
		{Variant: KingsPawn, Moves: []string{"Nf3"}, Probability: 0.5},
	}
	for i, line := range cases {
		if _, err := NewTable([]Line{line}); err == nil {
			t.Fatalf("case %d: expected error", i)
		}
	}
}

func TestLabel(t *testing.T) {
	code, title, err := Label("startpos", []string{"e2e4", "c7c5"})
	if err != nil {
		t.Fatalf("Label: %v", err)
	}
	if code == "" || title == "" {
		t.Fatalf("sicilian not labelled: %q %q", code, title)
	}
	if code, _, _ := Label("8/8/8/4k3/8/8/8/R3K3 w - - 0 1", []string{"a1a2"}); code != "" {
		t.Fatalf("non-start position labelled %q", code)
	}
}
