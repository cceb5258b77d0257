package board

import (
	"fmt"
	"strings"

	nchess "github.com/corentings/chess/v2"
)

// frame is one entry of the apply/revert stack.
type frame struct {
	pos  *nchess.Position
	key  positionKey
	move Move
	null bool

	loaded bool
	native []nchess.Move
	legal  []Move

	squares      *[64]Piece
	insufficient *bool
}

// Game implements Board on top of corentings/chess. Hypothetical moves are
// pushed as frames; the bottom frame is the committed position. Not safe for
// concurrent use.
type Game struct {
	frames []*frame
	seen   map[positionKey]int
}

var _ Board = (*Game)(nil)

func New() *Game {
	g, err := FromFEN(StartFEN)
	if err != nil {
		panic(fmt.Sprintf("board: start position: %v", err))
	}
	return g
}

func FromFEN(fen string) (*Game, error) {
	return FromHistory(fen, nil)
}

// FromHistory replays UCI moves from fen ("" or "startpos" for the initial
// position). The replayed positions feed repetition detection.
func FromHistory(fen string, moves []string) (*Game, error) {
	root, err := newFrame(normalizeFEN(fen))
	if err != nil {
		return nil, err
	}
	g := &Game{frames: []*frame{root}, seen: map[positionKey]int{root.key: 1}}
	for i, raw := range moves {
		uci := strings.ToLower(strings.TrimSpace(raw))
		if uci == "" {
			continue
		}
		m, ok := g.FindMove(uci)
		if !ok {
			return nil, fmt.Errorf("%w: %s at ply %d", ErrIllegalMove, uci, i+1)
		}
		if err := g.Play(m); err != nil {
			return nil, err
		}
	}
	return g, nil
}

func normalizeFEN(fen string) string {
	fen = strings.TrimSpace(fen)
	if fen == "" || strings.EqualFold(fen, "startpos") {
		return StartFEN
	}
	return fen
}

func newFrame(fen string) (*frame, error) {
	opt, err := nchess.FEN(fen)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFEN, err)
	}
	game := nchess.NewGame(opt)
	f := frameFor(game.Position(), NoMove, false)
	insufficient := game.Method() == nchess.InsufficientMaterial
	f.insufficient = &insufficient
	return f, nil
}

func frameFor(pos *nchess.Position, m Move, null bool) *frame {
	return &frame{pos: pos, key: keyOf(pos), move: m, null: null}
}

func (g *Game) top() *frame { return g.frames[len(g.frames)-1] }

func (f *frame) board() *[64]Piece {
	if f.squares == nil {
		f.squares = placement(f.pos)
	}
	return f.squares
}

func (f *frame) legalMoves() []Move {
	if f.loaded {
		return f.legal
	}
	f.loaded = true
	squares := f.board()
	moves := f.pos.ValidMoves()
	f.native = make([]nchess.Move, 0, len(moves))
	f.legal = make([]Move, 0, len(moves))
	for i := range moves {
		mv := &moves[i]
		to := Square(mv.S2())
		// After a skipped turn the library may offer to take the king.
		if squares[to].Kind == King {
			continue
		}
		f.native = append(f.native, *mv)
		f.legal = append(f.legal, f.describe(mv))
	}
	return f.legal
}

func (f *frame) describe(mv *nchess.Move) Move {
	squares := f.board()
	from, to := Square(mv.S1()), Square(mv.S2())
	m := Move{
		From:   from,
		To:     to,
		Piece:  squares[from].Kind,
		Promo:  kindOf(mv.Promo()),
		Castle: mv.HasTag(nchess.KingSideCastle) || mv.HasTag(nchess.QueenSideCastle),
	}
	switch {
	case mv.HasTag(nchess.EnPassant):
		m.Captured = Pawn
		m.EnPassant = true
	case mv.HasTag(nchess.Capture):
		m.Captured = squares[to].Kind
	}
	return m
}

// find returns the index of m among the frame's legal moves.
func (f *frame) find(m Move) int {
	for i, lm := range f.legalMoves() {
		if lm.From == m.From && lm.To == m.To && lm.Promo == m.Promo {
			return i
		}
	}
	return -1
}

// status is Checkmate, Stalemate or NoMethod.
func (f *frame) status() nchess.Method {
	if len(f.legalMoves()) > 0 {
		return nchess.NoMethod
	}
	return f.pos.Status()
}

func (f *frame) insufficientMaterial() bool {
	if f.insufficient == nil {
		v := false
		if opt, err := nchess.FEN(f.pos.String()); err == nil {
			v = nchess.NewGame(opt).Method() == nchess.InsufficientMaterial
		}
		f.insufficient = &v
	}
	return *f.insufficient
}

// FindMove resolves a UCI string against the current legal moves.
func (g *Game) FindMove(uci string) (Move, bool) {
	uci = strings.ToLower(strings.TrimSpace(uci))
	if len(uci) < 4 || len(uci) > 5 {
		return NoMove, false
	}
	from, err := ParseSquare(uci[:2])
	if err != nil {
		return NoMove, false
	}
	to, err := ParseSquare(uci[2:4])
	if err != nil {
		return NoMove, false
	}
	promo := NoKind
	if len(uci) > 4 {
		if promo = kindFromLetter(uci[4]); promo == NoKind {
			return NoMove, false
		}
	}
	top := g.top()
	i := top.find(Move{From: from, To: to, Promo: promo})
	if i < 0 {
		return NoMove, false
	}
	return top.legal[i], true
}

func (g *Game) LegalMoves(capturesOnly bool) []Move {
	all := g.top().legalMoves()
	out := make([]Move, 0, len(all))
	for _, m := range all {
		if capturesOnly && !m.IsCapture() {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (g *Game) ApplyMove(m Move) error {
	top := g.top()
	i := top.find(m)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrIllegalMove, m.UCI())
	}
	native := top.native[i]
	f := frameFor(top.pos.Update(&native), top.legal[i], false)
	g.frames = append(g.frames, f)
	g.seen[f.key]++
	return nil
}

func (g *Game) RevertMove(m Move) error {
	top := g.top()
	if len(g.frames) < 2 || top.null || top.move.From != m.From || top.move.To != m.To || top.move.Promo != m.Promo {
		return fmt.Errorf("%w: revert %s", ErrUnbalancedUndo, m.UCI())
	}
	g.unsee(top.key)
	g.frames = g.frames[:len(g.frames)-1]
	return nil
}

// SkipTurn pushes the library's null move. Skipped positions never count
// toward repetition.
func (g *Game) SkipTurn() error {
	g.frames = append(g.frames, frameFor(g.top().pos.Update(nil), NoMove, true))
	return nil
}

func (g *Game) UndoSkipTurn() error {
	if len(g.frames) < 2 || !g.top().null {
		return fmt.Errorf("%w: undo skipped turn", ErrUnbalancedUndo)
	}
	g.frames = g.frames[:len(g.frames)-1]
	return nil
}

// Play applies m permanently; it cannot be reverted afterwards.
func (g *Game) Play(m Move) error {
	if len(g.frames) != 1 {
		return fmt.Errorf("%w: play with %d pending changes", ErrUnbalancedUndo, len(g.frames)-1)
	}
	if err := g.ApplyMove(m); err != nil {
		return err
	}
	base := g.top()
	base.move = NoMove
	g.frames = []*frame{base}
	return nil
}

func (g *Game) unsee(key positionKey) {
	if n := g.seen[key]; n > 1 {
		g.seen[key] = n - 1
		return
	}
	delete(g.seen, key)
}

func (g *Game) PieceAt(sq Square) Piece {
	if !sq.Valid() {
		return NoPiece
	}
	return pieceOf(g.top().pos.Board().Piece(nchess.Square(sq)))
}

func (g *Game) KingSquare(c Color) Square {
	squares := g.top().board()
	for sq := range squares {
		if p := squares[sq]; p.Kind == King && p.Color == c {
			return Square(sq)
		}
	}
	return NoSquare
}

func (g *Game) SideToMove() Color { return colorOf(g.top().pos.Turn()) }

func (g *Game) IsSquareAttackedByOpponent(sq Square) bool {
	return isAttacked(g.top().board(), sq, g.SideToMove().Other())
}

func (g *Game) Attackers(sq Square, c Color) []Square {
	return attackersOf(g.top().board(), sq, c)
}

func (g *Game) IsInCheck() bool {
	side := g.SideToMove()
	k := g.KingSquare(side)
	return k != NoSquare && isAttacked(g.top().board(), k, side.Other())
}

func (g *Game) IsInCheckmate() bool { return g.top().status() == nchess.Checkmate }
func (g *Game) IsStalemate() bool   { return g.top().status() == nchess.Stalemate }

// IsDraw covers stalemate, dead positions, the fifty-move rule and
// threefold repetition.
func (g *Game) IsDraw() bool {
	top := g.top()
	switch top.status() {
	case nchess.Stalemate:
		return true
	case nchess.Checkmate:
		return false
	}
	return top.insufficientMaterial() || top.pos.HalfMoveClock() >= 100 || (!top.null && g.seen[top.key] >= 3)
}

func (g *Game) IsInsufficientMaterial() bool { return g.top().insufficientMaterial() }

func (g *Game) HalfmoveClock() int  { return g.top().pos.HalfMoveClock() }
func (g *Game) FullmoveNumber() int { return fullmove(g.top().pos) }

func (g *Game) IsRepeatedPosition() bool {
	top := g.top()
	return !top.null && g.seen[top.key] >= 2
}

func (g *Game) HasCastleRight(c Color, side CastleSide) bool {
	return g.top().pos.CastleRights().CanCastle(libColor(c), libSide(side))
}

func (g *Game) Fingerprint() string {
	total := 0
	for _, n := range g.seen {
		total += n
	}
	return fmt.Sprintf("%s|%d|%d/%d", g.FEN(), len(g.frames), len(g.seen), total)
}

func (g *Game) FEN() string { return g.top().pos.String() }

// SAN renders a legal move of the current position in algebraic notation.
func (g *Game) SAN(m Move) string {
	top := g.top()
	i := top.find(m)
	if i < 0 {
		return m.UCI()
	}
	return nchess.AlgebraicNotation{}.Encode(top.pos, &top.native[i])
}

// ParseMove resolves UCI or SAN text against the current legal moves. UCI
// wins; SAN is accepted only when it names the same move when re-encoded.
func (g *Game) ParseMove(text string) (Move, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return NoMove, fmt.Errorf("%w: empty move", ErrIllegalMove)
	}
	if m, ok := g.FindMove(text); ok {
		return m, nil
	}
	top := g.top()
	mv, err := nchess.AlgebraicNotation{}.Decode(top.pos, text)
	if err != nil {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	i := top.find(Move{From: Square(mv.S1()), To: Square(mv.S2()), Promo: kindOf(mv.Promo())})
	if i < 0 || trimSAN(nchess.AlgebraicNotation{}.Encode(top.pos, &top.native[i])) != trimSAN(text) {
		return NoMove, fmt.Errorf("%w: %s", ErrIllegalMove, text)
	}
	return top.legal[i], nil
}

func trimSAN(s string) string { return strings.TrimRight(s, "+#!?") }
