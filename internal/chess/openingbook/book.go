package openingbook

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	chesslib "github.com/corentings/chess/v2"
	"github.com/corentings/chess/v2/opening"
)

// BookEnv overrides the polyglot book location.
const BookEnv = "BOT_POLYGLOT_BOOK"

var defaultBookPath = filepath.Join("resources", "opening", "book.bin")

// Book wraps a polyglot opening book. A nil *Book has no entries.
type Book struct {
	polyglot *chesslib.PolyglotBook
}

// Result is the suggested book move. Candidates counts every entry for the
// position; zero means the position is out of book.
type Result struct {
	Move       string
	Weight     uint16
	Candidates int
}

var (
	sharedOnce sync.Once
	shared     *Book
	sharedErr  error

	ecoOnce sync.Once
	eco     *opening.BookECO
)

// Shared opens the process-wide book once, from BookEnv or the default path.
// A missing default file is not an error.
func Shared() (*Book, error) {
	sharedOnce.Do(func() {
		path := strings.TrimSpace(os.Getenv(BookEnv))
		explicit := path != ""
		if !explicit {
			path = defaultBookPath
		}
		shared, sharedErr = OpenBook(path)
		if errors.Is(sharedErr, os.ErrNotExist) && !explicit {
			shared, sharedErr = nil, nil
		}
	})
	return shared, sharedErr
}

// Lookup consults the shared book.
func Lookup(fen string, moves []string) (Result, error) {
	b, err := Shared()
	if err != nil {
		return Result{}, err
	}
	return b.Lookup(fen, moves)
}

func OpenBook(path string) (*Book, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("polyglot book path required")
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open polyglot book: %w", err)
	}
	defer f.Close()

	pb, err := chesslib.LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("read polyglot book %q: %w", path, err)
	}
	return &Book{polyglot: pb}, nil
}

// Lookup returns the heaviest entry for the position reached by replaying
// moves from fen, checked for legality.
func (b *Book) Lookup(fen string, moves []string) (Result, error) {
	if b == nil || b.polyglot == nil {
		return Result{}, nil
	}
	game, err := replay(fen, moves)
	if err != nil {
		return Result{}, err
	}
	hash, err := chesslib.NewZobristHasher().HashPosition(game.FEN())
	if err != nil {
		return Result{}, fmt.Errorf("polyglot hash: %w", err)
	}
	entries := b.polyglot.FindMoves(chesslib.ZobristHashToUint64(hash))
	if len(entries) == 0 {
		return Result{}, nil
	}

	top := entries[0]
	for _, e := range entries[1:] {
		if e.Weight > top.Weight {
			top = e
		}
	}
	move := chesslib.DecodeMove(top.Move).ToMove()
	uci := move.String()
	if err := game.PushNotationMove(uci, chesslib.UCINotation{}, nil); err != nil {
		return Result{}, fmt.Errorf("book move %s illegal here: %w", uci, err)
	}
	return Result{Move: uci, Weight: top.Weight, Candidates: len(entries)}, nil
}

// Label names the opening played so far by ECO code and title. Games that do
// not start from the initial position have no label.
func Label(fen string, moves []string) (code, title string, err error) {
	if len(moves) == 0 || !fromInitial(fen) {
		return "", "", nil
	}
	game, err := replay(fen, moves)
	if err != nil {
		return "", "", err
	}
	ecoOnce.Do(func() { eco = opening.NewBookECO() })
	if o := eco.Find(game.Moves()); o != nil {
		return o.Code(), o.Title(), nil
	}
	return "", "", nil
}

func fromInitial(fen string) bool {
	fen = strings.TrimSpace(fen)
	return fen == "" || fen == "startpos" || strings.HasPrefix(fen, "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq")
}

func replay(fen string, moves []string) (*chesslib.Game, error) {
	game := chesslib.NewGame()
	if fen = strings.TrimSpace(fen); fen != "" && fen != "startpos" {
		opt, err := chesslib.FEN(fen)
		if err != nil {
			return nil, fmt.Errorf("fen %q: %w", fen, err)
		}
		game = chesslib.NewGame(opt)
	}
	for i, mv := range moves {
		if err := game.PushNotationMove(mv, chesslib.UCINotation{}, nil); err != nil {
			return nil, fmt.Errorf("move %d %q: %w", i+1, mv, err)
		}
	}
	return game, nil
}
