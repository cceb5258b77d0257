package chess

import (
	"context"
	"errors"
	"testing"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

func newTestEngine(t *testing.T, preset string) *Engine {
	t.Helper()
	seed := int64(11)
	e, err := NewEngine(Options{Preset: preset, Seed: &seed})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func TestSelectMoveFromHistory(t *testing.T) {
	e := newTestEngine(t, "balanced")
	res, err := e.SelectMove(context.Background(), MoveRequest{Moves: []string{"e2e4", "e7e5"}})
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	g, err := board.FromHistory("", []string{"e2e4", "e7e5"})
	if err != nil {
		t.Fatalf("FromHistory: %v", err)
	}
	if _, ok := g.FindMove(res.UCI); !ok {
		t.Fatalf("selected illegal move %s", res.UCI)
	}
	if res.Session == nil || res.Session.Turn != 3 {
		t.Fatalf("session turn = %+v", res.Session)
	}
	if res.SAN == "" || res.FENAfter == "" || res.FENAfter == res.FENBefore {
		t.Fatalf("result missing fields: %+v", res)
	}
	if res.Candidates != len(g.LegalMoves(false)) {
		t.Fatalf("candidates = %d", res.Candidates)
	}
}

func TestSelectMoveMates(t *testing.T) {
	e := newTestEngine(t, "cautious")
	res, err := e.SelectMove(context.Background(), MoveRequest{
		FEN: "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4",
	})
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	if res.UCI != "h5f7" || res.Outcome.Reason() != heuristic.Checkmate || !res.GameOver {
		t.Fatalf("got %s %v gameOver=%v", res.UCI, res.Outcome, res.GameOver)
	}
}

func TestSelectMoveNoLegalMoves(t *testing.T) {
	e := newTestEngine(t, "")
	res, err := e.SelectMove(context.Background(), MoveRequest{FEN: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"})
	if !errors.Is(err, heuristic.ErrNoLegalMoves) {
		t.Fatalf("err = %v", err)
	}
	if !res.Move.IsNone() || !res.GameOver {
		t.Fatalf("result = %+v", res)
	}
}

func TestSelectMoveIllegalHistory(t *testing.T) {
	e := newTestEngine(t, "")
	_, err := e.SelectMove(context.Background(), MoveRequest{Moves: []string{"e2e5"}})
	if !errors.Is(err, board.ErrIllegalMove) {
		t.Fatalf("err = %v, want ErrIllegalMove", err)
	}
}

func TestSelectMoveCanceled(t *testing.T) {
	e := newTestEngine(t, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := e.SelectMove(ctx, MoveRequest{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestSeededEnginesAgree(t *testing.T) {
	a := newTestEngine(t, "aggressive")
	b := newTestEngine(t, "aggressive")
	ra, err := a.SelectMove(context.Background(), MoveRequest{})
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	rb, err := b.SelectMove(context.Background(), MoveRequest{})
	if err != nil {
		t.Fatalf("SelectMove: %v", err)
	}
	if ra.UCI != rb.UCI || ra.Session.Variant != rb.Session.Variant {
		t.Fatalf("seeded engines differ: %s/%v vs %s/%v", ra.UCI, ra.Session.Variant, rb.UCI, rb.Session.Variant)
	}
}

func TestGetPreset(t *testing.T) {
	for _, name := range append(PresetNames(), "default", "safe", "sharp", " Balanced ") {
		p, err := GetPreset(name)
		if err != nil {
			t.Fatalf("GetPreset(%q): %v", name, err)
		}
		if err := ValidatePreset(p); err != nil {
			t.Fatalf("ValidatePreset(%q): %v", name, err)
		}
		if _, err := heuristic.NewScorer(p.Apply(heuristic.DefaultWeights()), nil); err != nil {
			t.Fatalf("preset %q weights invalid: %v", name, err)
		}
	}
	if _, err := GetPreset("level9"); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("err = %v, want ErrUnknownPreset", err)
	}
}

func TestPresetScaling(t *testing.T) {
	base := heuristic.DefaultWeights()
	p, _ := GetPreset("cautious")
	w := p.Apply(base)
	if w.CheckReply != base.CheckReply*3/2 {
		t.Fatalf("check reply = %d", w.CheckReply)
	}
	if w.ReplyCaptureDivisor != 1 {
		t.Fatalf("reply capture divisor = %d", w.ReplyCaptureDivisor)
	}
	p, _ = GetPreset("aggressive")
	if w := p.Apply(base); w.BookMove != 0 || w.Check != base.Check*140/100 {
		t.Fatalf("aggressive weights = %+v", w)
	}
}

func TestParseWeights(t *testing.T) {
	w, err := ParseWeights([]byte("castle: 200\ncheck: 10\n"))
	if err != nil {
		t.Fatalf("ParseWeights: %v", err)
	}
	def := heuristic.DefaultWeights()
	if w.Castle != 200 || w.Check != 10 || w.Repetition != def.Repetition {
		t.Fatalf("weights = %+v", w)
	}
	if _, err := ParseWeights([]byte("castel: 1\n")); err == nil {
		t.Fatalf("expected unknown key error")
	}
	if _, err := ParseWeights([]byte("capture_divisor: 0\n")); err == nil {
		t.Fatalf("expected validation error")
	}
}
