package heuristic

import (
	"errors"
	"slices"
	"testing"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

func mustGame(t *testing.T, fen string) *board.Game {
	t.Helper()
	g, err := board.FromFEN(fen)
	if err != nil {
		t.Fatalf("FromFEN(%q): %v", fen, err)
	}
	return g
}

func mustMove(t *testing.T, g *board.Game, uci string) board.Move {
	t.Helper()
	m, ok := g.FindMove(uci)
	if !ok {
		t.Fatalf("move %s not legal in %s", uci, g.FEN())
	}
	return m
}

func TestClassifyExchange(t *testing.T) {
	tests := []struct {
		name   string
		ours   []int
		theirs []int
		ok     bool
		cas    int
	}{
		{name: "knight en prise to pawn", ours: []int{300}, theirs: []int{100}, ok: false, cas: 1},
		{name: "queen takes defended pawn", ours: []int{900}, theirs: []int{100, 100}, ok: false, cas: 1},
		{name: "pawn takes defended knight with support", ours: []int{100, 300}, theirs: []int{300}, ok: true, cas: 4},
		{name: "pawn takes queen", ours: []int{100}, theirs: []int{900, 300}, ok: true, cas: 3},
		{name: "rook takes defended knight", ours: []int{500}, theirs: []int{300, 100}, ok: false, cas: 1},
		{name: "outnumbered defenders", ours: []int{100, 300, 500}, theirs: []int{300, 900}, ok: true, cas: 2},
		{name: "bishop for pawn twice defended", ours: []int{300}, theirs: []int{100, 100, 300}, ok: false, cas: 3},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ok, ex, err := classifyExchange(tc.ours, tc.theirs)
			if err != nil {
				t.Fatalf("classifyExchange: %v", err)
			}
			if ok != tc.ok || ex.Case != tc.cas {
				t.Fatalf("got safe=%v case=%d, want safe=%v case=%d", ok, ex.Case, tc.ok, tc.cas)
			}
		})
	}
}

func TestIsSafeOnBoard(t *testing.T) {
	tests := []struct {
		name   string
		fen    string
		uci    string
		want   bool
		cas    int
		ours   []int
		theirs []int
	}{
		{name: "pawn takes undefended queen", fen: "4k3/8/8/3q4/4P3/8/8/4K3 w - - 0 1", uci: "e4d5", want: true},
		{name: "knight steps into pawn attack", fen: "4k3/8/8/4p3/8/5N2/8/6K1 w - - 0 1", uci: "f3d4", want: false, cas: 1, theirs: []int{100}},
		{name: "knight takes hanging pawn", fen: "4k3/8/8/4p3/8/5N2/8/6K1 w - - 0 1", uci: "f3e5", want: true},
		{name: "quiet king move", fen: "4k3/8/8/4p3/8/5N2/8/6K1 w - - 0 1", uci: "g1h1", want: true},
		{
			name: "pawn-covered knight facing a rook",
			fen:  "3rk3/8/8/8/8/4PN2/8/4K3 w - - 0 1", uci: "f3d4",
			want: false, cas: 1, ours: []int{100}, theirs: []int{500},
		},
		{
			name: "rook steps off the file it was blocking",
			fen:  "4k3/4r3/8/8/4R3/8/8/K7 w - - 0 1", uci: "e4e3",
			want: false, cas: 1, theirs: []int{500},
		},
		{
			name: "covered pawn takes defended knight",
			fen:  "6k1/8/2p5/3n4/2P1P3/8/8/6K1 w - - 0 1", uci: "e4d5",
			want: true, cas: 3, ours: []int{100}, theirs: []int{300, 100},
		},
		{
			name: "knight takes pawn under pawn and rook cover",
			fen:  "6k1/8/3p4/4p3/3P1P2/5N2/8/4R1K1 w - - 0 1", uci: "f3e5",
			want: true, cas: 4, ours: []int{100, 100, 500}, theirs: []int{100, 100},
		},
		{
			name: "loose pawn takes defended queen",
			fen:  "4k3/8/2p5/3q4/4P3/8/8/4K3 w - - 0 1", uci: "e4d5",
			want: true, cas: 2, theirs: []int{900, 100},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			g := mustGame(t, tc.fen)
			before := g.Fingerprint()
			got, ex, err := IsSafe(g, mustMove(t, g, tc.uci))
			if err != nil {
				t.Fatalf("IsSafe: %v", err)
			}
			if got != tc.want || ex.Case != tc.cas {
				t.Fatalf("IsSafe(%s) = %v (%+v), want %v case %d", tc.uci, got, ex, tc.want, tc.cas)
			}
			if !slices.Equal(ex.Ours, tc.ours) || !slices.Equal(ex.Theirs, tc.theirs) {
				t.Fatalf("exchange lists = %v / %v, want %v / %v", ex.Ours, ex.Theirs, tc.ours, tc.theirs)
			}
			if after := g.Fingerprint(); after != before {
				t.Fatalf("fingerprint changed: %q -> %q", before, after)
			}
		})
	}
}

func TestIsSafeLeavesEveryMoveRestored(t *testing.T) {
	g := mustGame(t, "r1bqkb1r/pppp1ppp/2n2n2/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR w KQkq - 4 4")
	before := g.Fingerprint()
	for _, m := range g.LegalMoves(false) {
		if _, _, err := IsSafe(g, m); err != nil {
			t.Fatalf("IsSafe(%s): %v", m, err)
		}
		if after := g.Fingerprint(); after != before {
			t.Fatalf("IsSafe(%s) changed the board", m)
		}
	}
}

func TestNearPromotionPawnCountsAsQueen(t *testing.T) {
	g := mustGame(t, "4k3/8/8/8/8/p6R/8/4K3 w - - 0 1")
	m := mustMove(t, g, "h3a3")
	if got := capturedValue(g, m); got != Value(board.Pawn) {
		t.Fatalf("captured value = %d, want %d", got, Value(board.Pawn))
	}

	g = mustGame(t, "4k3/8/8/8/8/8/p6R/4K3 w - - 0 1")
	m = mustMove(t, g, "h2a2")
	if got := capturedValue(g, m); got != Value(board.Queen) {
		t.Fatalf("captured value = %d, want %d", got, Value(board.Queen))
	}
}

func TestAssessRepliesPunishesMate(t *testing.T) {
	g := mustGame(t, "rnbqkbnr/pppp1ppp/8/4p3/8/5P2/PPPPP1PP/RNBQKBNR w KQkq - 0 2")
	w := DefaultWeights()
	total, err := AssessReplies(g, mustMove(t, g, "g2g4"), w, 0)
	if err != nil {
		t.Fatalf("AssessReplies: %v", err)
	}
	if total > -w.MateReply {
		t.Fatalf("reply total = %d, want <= %d", total, -w.MateReply)
	}
}

func TestWrongSideRejected(t *testing.T) {
	g := mustGame(t, board.StartFEN)
	s, err := NewScorer(DefaultWeights(), nil)
	if err != nil {
		t.Fatalf("NewScorer: %v", err)
	}
	_, _, err = s.SelectMove(g, NewSession(board.Black, 0), Policy{})
	if !errors.Is(err, ErrWrongSide) {
		t.Fatalf("err = %v, want ErrWrongSide", err)
	}
}
