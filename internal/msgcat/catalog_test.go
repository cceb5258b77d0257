package msgcat

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

func TestRenderEmbedded(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("outcome.heuristic", map[string]any{"Move": "e2e4", "Score": 35})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got != "e2e4 scores +35" {
		t.Fatalf("got %q", got)
	}
	if _, err := c.Render("outcome.heuristic", map[string]any{"Move": "e2e4"}); err == nil {
		t.Fatalf("expected missing field error")
	}
	if _, err := c.Render("nope.missing", nil); err == nil {
		t.Fatalf("expected unknown key error")
	}
}

func TestOverrideDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.yaml"), []byte("outcome:\n  checkmate: \"mate with {{.Move}}\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got, err := c.Render("outcome.checkmate", map[string]any{"Move": "h5f7"})
	if err != nil || got != "mate with h5f7" {
		t.Fatalf("got %q, %v", got, err)
	}

	if err := os.WriteFile(filepath.Join(dir, "b.yml"), []byte("outcome:\n  checkmate: \"again\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := New(dir); err == nil || !strings.Contains(err.Error(), "duplicate override key") {
		t.Fatalf("expected duplicate key error, got %v", err)
	}
}

func TestExplainCoversEveryTerm(t *testing.T) {
	c, err := New("")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	names := []string{
		heuristic.TermSafeCapture, heuristic.TermCastle, heuristic.TermCastlingRights,
		heuristic.TermPromotion, heuristic.TermCheck, heuristic.TermRepetition,
		heuristic.TermStackedPawns, heuristic.TermFutureCapture, heuristic.TermProtection,
		heuristic.TermPostureMate, heuristic.TermPromotionNext, heuristic.TermOpponentPromotion,
		heuristic.TermKingMobility, heuristic.TermOpponentKing, heuristic.TermBoardControl,
		heuristic.TermPieceMobility, heuristic.TermDevelopment, heuristic.TermOpening,
		heuristic.TermBookMove, heuristic.TermFiftyMove, heuristic.TermReplies,
	}
	tr := &heuristic.Trace{Move: board.NoMove}
	for i, name := range names {
		tr.Terms = append(tr.Terms, heuristic.Term{Name: name, Value: i + 1, Detail: "x"})
	}
	ex, err := c.Explain("a1a2", heuristic.Heuristic(tr.Total()), tr, len(names))
	if err != nil {
		t.Fatalf("Explain: %v", err)
	}
	if len(ex.Reasons) != len(names) {
		t.Fatalf("reasons = %d, want %d", len(ex.Reasons), len(names))
	}
	if !strings.HasPrefix(ex.Reasons[0], "opponent replies (+21)") {
		t.Fatalf("first reason = %q", ex.Reasons[0])
	}

	ex, err = c.Explain("h5f7", heuristic.Decisive(heuristic.Checkmate), nil, 3)
	if err != nil || ex.Summary != "h5f7 delivers checkmate" || len(ex.Reasons) != 0 {
		t.Fatalf("decisive explanation = %+v, %v", ex, err)
	}
}
