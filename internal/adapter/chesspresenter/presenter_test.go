package chesspresenter

import (
	"bytes"
	"strings"
	"testing"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/chess/openingbook"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

func TestNumberMoves(t *testing.T) {
	cases := []struct {
		san        []string
		blackFirst bool
		want       string
	}{
		{nil, false, "-"},
		{[]string{"e4", "e5", "Nf3"}, false, "1. e4 e5 2. Nf3"},
		{[]string{"e5", "Nf3", "Nc6"}, true, "1... e5 2. Nf3 Nc6"},
	}
	f := NewFormatter(false)
	for _, tc := range cases {
		if got := f.Moves(tc.san, tc.blackFirst); got != tc.want {
			t.Fatalf("Moves(%v, %v) = %q, want %q", tc.san, tc.blackFirst, got, tc.want)
		}
	}
}

func TestRecentMovesKeepPairs(t *testing.T) {
	san := []string{"e4", "e5", "Nf3", "Nc6", "Bb5", "a6", "Ba4", "Nf6", "O-O", "Be7"}
	got := formatRecentMoves(san, false)
	if got != "… 2. Nf3 Nc6 3. Bb5 a6 4. Ba4 Nf6 5. O-O Be7" {
		t.Fatalf("recent = %q", got)
	}
	got = formatRecentMoves(san[:9], false)
	if !strings.HasPrefix(got, "… 1. e4") && !strings.HasPrefix(got, "… 2. Nf3") {
		t.Fatalf("recent odd = %q", got)
	}
}

func TestToDTOGame(t *testing.T) {
	sess := heuristic.NewSession(board.Black, openingbook.CaroKann)
	g := &domain.BotGame{
		ID:       sess.GameID,
		Preset:   "balanced",
		StartFEN: board.StartFEN,
		Moves:    []string{"e2e4", "c7c6"},
		MovesSAN: []string{"e4", "c6"},
		Session:  sess,
	}
	dto := ToDTOGame(g)
	if dto.BotSide != "black" || dto.ToMove != "white" || dto.Variant != openingbook.CaroKann.String() {
		t.Fatalf("dto = %+v", dto)
	}
	if dto.Material.White != dto.Material.Black {
		t.Fatalf("material = %+v", dto.Material)
	}
	if ToDTOGame(nil) != nil || ToDTOMove(nil) != nil {
		t.Fatalf("nil inputs should convert to nil")
	}
	if ToDTOMove(&corechess.MoveResult{Move: board.NoMove}) != nil {
		t.Fatalf("no-move result should convert to nil")
	}
}

func TestFormatterGameAndMove(t *testing.T) {
	f := NewFormatter(true)
	text := f.Game(&chessdto.GameState{ID: "g", Preset: "balanced", BotSide: "white", StartFEN: board.StartFEN, MovesSAN: []string{"e4"}, Result: "1-0"})
	if !strings.Contains(text, "1. e4") || !strings.Contains(text, "bot wins") {
		t.Fatalf("game text = %q", text)
	}
	mv := f.Move(&chessdto.BotMove{UCI: "e2e4", SAN: "e4", Outcome: "heuristic(40)", Score: 40, Candidates: 20,
		Terms: []chessdto.Term{{Name: "board_control", Value: 40}}})
	if !strings.Contains(mv, "e4 (e2e4)") || !strings.Contains(mv, "board_control") {
		t.Fatalf("move text = %q", mv)
	}
}

func TestPresenterBoard(t *testing.T) {
	var out bytes.Buffer
	saved := map[string][]byte{}
	p := NewPresenter(&out, func(path string, png []byte) error {
		saved[path] = png
		return nil
	})
	if err := p.Board("hello", []byte{1, 2}, "board.png"); err != nil {
		t.Fatalf("Board: %v", err)
	}
	if out.String() != "hello\n" || len(saved["board.png"]) != 2 {
		t.Fatalf("out = %q saved = %v", out.String(), saved)
	}
}
