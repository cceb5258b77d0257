package heuristic

import (
	"fmt"
	"strconv"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/openingbook"
)

// Scorer rates single moves. It holds no per-game state and may be shared.
type Scorer struct {
	Weights  Weights
	Openings *openingbook.Table
}

func NewScorer(w Weights, openings *openingbook.Table) (*Scorer, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{Weights: w, Openings: openings}, nil
}

// turn holds what every candidate of one selection shares.
type turn struct {
	b       board.Board
	sess    *Session
	deficit int
	book    string
}

func newTurn(b board.Board, sess *Session, book string) *turn {
	us := b.SideToMove()
	if sess == nil {
		sess = &Session{Side: us, Turn: 1}
	}
	return &turn{b: b, sess: sess, deficit: deficit(b, us), book: book}
}

// Score rates m for the side to move. The board is unchanged on return.
func (s *Scorer) Score(b board.Board, m board.Move, sess *Session) (Outcome, *Trace, error) {
	return s.score(newTurn(b, sess, ""), m)
}

func (s *Scorer) score(t *turn, m board.Move) (Outcome, *Trace, error) {
	tr := newTrace(m)

	out, decisive, err := s.terminal(t, m)
	if err != nil {
		return Outcome{}, nil, err
	}
	if decisive {
		return out, tr, nil
	}

	steps := []func(*turn, board.Move, *Trace) error{
		s.material,
		s.castling,
		s.checks,
		s.stacking,
		s.threats,
		s.promotions,
		s.mobility,
		s.development,
		s.replies,
	}
	for _, step := range steps {
		if err := step(t, m, tr); err != nil {
			return Outcome{}, nil, fmt.Errorf("score %s: %w", m.UCI(), err)
		}
	}
	return Heuristic(tr.Total()), tr, nil
}

// terminal applies the overrides that end scoring early.
func (s *Scorer) terminal(t *turn, m board.Move) (Outcome, bool, error) {
	mate, err := GivesCheckmate(t.b, m)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("play %s: %w", m.UCI(), err)
	}
	switch {
	case mate:
		return Decisive(Checkmate), true, nil
	case m.EnPassant:
		return Decisive(EnPassant), true, nil
	}
	draw, err := ResultsInDraw(t.b, m)
	if err != nil {
		return Outcome{}, false, fmt.Errorf("play %s: %w", m.UCI(), err)
	}
	switch {
	case draw && t.deficit > s.Weights.DrawMargin:
		return Decisive(SeekDraw), true, nil
	case draw:
		return Decisive(AvoidDraw), true, nil
	}
	return Outcome{}, false, nil
}

// material scores safe captures and promotions. A promotion is only rated
// when the promoted piece survives on its square.
func (s *Scorer) material(t *turn, m board.Move, tr *Trace) error {
	if !m.IsCapture() && !m.IsPromotion() {
		return nil
	}
	w := s.Weights
	safe, ex, err := IsSafe(t.b, m)
	if err != nil {
		return err
	}
	tr.Safety = &ex
	if !safe {
		return nil
	}
	if m.IsCapture() {
		tr.add(TermSafeCapture, capturedValue(t.b, m)-Value(m.Piece)/w.CaptureDivisor, m.Captured.String())
	}
	switch {
	case !m.IsPromotion():
	case m.Promo == board.Queen:
		tr.add(TermPromotion, w.QueenPromotion, m.Promo.String())
	default:
		tr.add(TermPromotion, -w.UnderPromotion, m.Promo.String())
	}
	return nil
}

func (s *Scorer) castling(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	if m.Castle {
		tr.add(TermCastle, w.Castle, "")
		return nil
	}
	lost, err := CastlingRightsLost(t.b, m)
	if err != nil || lost <= 0 {
		return err
	}
	penalty := w.LoseOneCastling
	if lost > 1 {
		penalty = w.LoseBothCastling
	}
	if m.IsCapture() && tr.Safety != nil && tr.Safety.Safe {
		penalty /= 2
	}
	tr.add(TermCastlingRights, -penalty, strconv.Itoa(lost))
	return nil
}

func (s *Scorer) checks(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	check, err := GivesCheck(t.b, m)
	if err != nil {
		return err
	}
	repeated, err := RepeatsPosition(t.b, m)
	if err != nil {
		return err
	}
	if check && t.sess.Turn > w.CheckAfterTurn {
		tr.add(TermCheck, w.Check, "")
	}
	if repeated && !check {
		tr.add(TermRepetition, -w.Repetition, "")
	}
	return nil
}

func (s *Scorer) stacking(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	stacked, err := CreatesStackedPawns(t.b, m)
	if err != nil || !stacked {
		return err
	}
	penalty := w.StackedPawns
	detail := ""
	if m.Piece == board.Pawn && m.IsCapture() {
		alt, err := AlternativeSafeCapture(t.b, m)
		if err != nil {
			return err
		}
		if alt {
			penalty += w.StackedWithAlternative
			detail = "alternative"
		}
	}
	tr.add(TermStackedPawns, -penalty, detail)
	return nil
}

// threats scores what m sets up for the next turn and what it takes away
// from the opponent.
func (s *Scorer) threats(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	future, err := FutureSafeCapture(t.b, m)
	if err != nil {
		return err
	}
	tr.add(TermFutureCapture, future/w.FutureCaptureDivisor, "")

	protected, err := ProtectedValue(t.b, m)
	if err != nil {
		return err
	}
	tr.add(TermProtection, protected/w.ProtectDivisor, "")

	mate, err := PosturesCheckmate(t.b, m)
	if err != nil {
		return err
	}
	if mate {
		tr.add(TermPostureMate, w.PostureMate, "")
	}
	return nil
}

func (s *Scorer) promotions(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	next, err := PromotesNext(t.b, m)
	if err != nil {
		return err
	}
	if next {
		tr.add(TermPromotionNext, w.PromotionNext, "")
	}
	before, after, err := OpponentCanPromote(t.b, m)
	if err != nil {
		return err
	}
	switch {
	case before && !after:
		tr.add(TermOpponentPromotion, w.OpponentPromotion, "stopped")
	case !before && after:
		tr.add(TermOpponentPromotion, -w.OpponentPromotion, "allowed")
	}
	return nil
}

func (s *Scorer) mobility(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	if t.sess.Turn <= w.OpeningTurns {
		if m.Piece == board.King && !m.Castle {
			tr.add(TermKingMobility, -w.OpeningKingStep, "opening")
		}
	} else {
		before, after, err := KingMobility(t.b, m)
		if err != nil {
			return err
		}
		tr.add(TermKingMobility, w.KingMobility*(after-before), "")
	}

	before, after, err := OpponentKingMobility(t.b, m)
	if err != nil {
		return err
	}
	tr.add(TermOpponentKing, w.OpponentKingMobility*(before-after), "")

	if before, after, err = BoardControl(t.b, m); err != nil {
		return err
	}
	tr.add(TermBoardControl, w.BoardControl*(after-before), "")

	switch m.Piece {
	case board.Knight, board.Bishop, board.Rook, board.Queen:
		if before, after, err = PieceMobility(t.b, m); err != nil {
			return err
		}
		tr.add(TermPieceMobility, w.PieceMobility*(after-before), "")
	}
	return nil
}

// development covers the opening bonuses, the book move and the fifty-move
// reset. None of them look past m.
func (s *Scorer) development(t *turn, m board.Move, tr *Trace) error {
	w := s.Weights
	if t.sess.Turn <= w.OpeningTurns {
		switch {
		case m.Castle:
		case t.sess.HasMoved(m.From):
			tr.add(TermDevelopment, -w.RepeatDevelopment, "repeat")
		case m.Piece == board.Knight || m.Piece == board.Bishop:
			tr.add(TermDevelopment, w.Development, "first")
		}
		if m.Piece == board.Queen {
			tr.add(TermDevelopment, -w.EarlyQueen, "queen")
		}
	}
	if s.Openings != nil {
		tr.add(TermOpening, s.Openings.Bonus(t.sess.Variant, t.sess.Turn, m), t.sess.Variant.String())
	}
	if t.book != "" && m.UCI() == t.book {
		tr.add(TermBookMove, w.BookMove, "")
	}
	if t.sess.PawnAge >= w.FiftyMoveWindow && t.deficit < 0 && (m.Piece == board.Pawn || m.IsCapture()) {
		tr.add(TermFiftyMove, w.FiftyMoveReset, "")
	}
	return nil
}

func (s *Scorer) replies(t *turn, m board.Move, tr *Trace) error {
	v, err := AssessReplies(t.b, m, s.Weights, t.deficit)
	if err != nil {
		return err
	}
	tr.add(TermReplies, v, "")
	return nil
}
