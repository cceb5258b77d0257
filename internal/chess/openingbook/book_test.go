package openingbook

import (
	"path/filepath"
	"testing"

	chesslib "github.com/corentings/chess/v2"
)

func TestNilBookHasNoEntries(t *testing.T) {
	var b *Book
	res, err := b.Lookup("", []string{"e2e4"})
	if err != nil || res.Candidates != 0 || res.Move != "" {
		t.Fatalf("nil book = %+v, %v", res, err)
	}
}

func TestOpenBookMissingFile(t *testing.T) {
	if _, err := OpenBook(filepath.Join(t.TempDir(), "none.bin")); err == nil {
		t.Fatalf("expected error for missing book")
	}
	if _, err := OpenBook(" "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

func TestReplayRejectsIllegalHistory(t *testing.T) {
	if _, err := replay("startpos", []string{"e2e4", "e2e4"}); err == nil {
		t.Fatalf("expected error for illegal move")
	}
	g, err := replay("", []string{"e2e4", "c7c5"})
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if len(g.Moves()) != 2 {
		t.Fatalf("moves = %d", len(g.Moves()))
	}
}

func TestLookupPicksHeaviestEntry(t *testing.T) {
	start := "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	hash, err := chesslib.NewZobristHasher().HashPosition(start)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	entry := func(uci string, weight uint16) chesslib.MoveWithWeight {
		mv, err := chesslib.UCINotation{}.Decode(nil, uci)
		if err != nil {
			t.Fatalf("decode %s: %v", uci, err)
		}
		return chesslib.MoveWithWeight{Move: *mv, Weight: weight}
	}
	b := &Book{polyglot: chesslib.NewPolyglotBookFromMap(map[uint64][]chesslib.MoveWithWeight{
		chesslib.ZobristHashToUint64(hash): {entry("d2d4", 10), entry("e2e4", 30), entry("g1f3", 5)},
	})}

	res, err := b.Lookup("startpos", nil)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if res.Move != "e2e4" || res.Weight != 30 || res.Candidates != 3 {
		t.Fatalf("Lookup = %+v", res)
	}

	res, err = b.Lookup("startpos", []string{"e2e4"})
	if err != nil || res.Candidates != 0 {
		t.Fatalf("Lookup after e2e4 = %+v, %v", res, err)
	}
}
