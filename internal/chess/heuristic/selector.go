package heuristic

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

type TieBreak uint8

const (
	TieFirst TieBreak = iota
	TieRandom
)

func (t TieBreak) String() string {
	if t == TieRandom {
		return "random"
	}
	return "first"
}

func ParseTieBreak(s string) (TieBreak, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return TieFirst, nil
	case "random":
		return TieRandom, nil
	}
	return TieFirst, fmt.Errorf("unknown tie break %q", s)
}

// Policy controls one selection. Rand is only read with TieRandom; a nil
// Rand falls back to the first best move. BookMove, in UCI form, earns the
// book bonus when it is among the legal moves.
type Policy struct {
	Tie      TieBreak
	Rand     *rand.Rand
	BookMove string
}

type Candidate struct {
	Move    board.Move
	Outcome Outcome
	Trace   *Trace
}

// Selection is the chosen candidate plus every scored candidate in move
// generation order.
type Selection struct {
	Candidate
	Ranked []Candidate
	Ties   int
}

// SelectMove picks the best legal move for the side to move in b.
func (s *Scorer) SelectMove(b board.Board, sess *Session, p Policy) (board.Move, Outcome, error) {
	sel, err := s.Select(b, sess, p)
	return sel.Move, sel.Outcome, err
}

func (s *Scorer) Select(b board.Board, sess *Session, p Policy) (Selection, error) {
	if sess != nil && sess.Side != b.SideToMove() {
		return Selection{Candidate: Candidate{Move: board.NoMove}}, fmt.Errorf("%w: session %s, board %s", ErrWrongSide, sess.Side, b.SideToMove())
	}
	moves := b.LegalMoves(false)
	if len(moves) == 0 {
		return Selection{Candidate: Candidate{Move: board.NoMove}}, ErrNoLegalMoves
	}

	t := newTurn(b, sess, p.BookMove)
	fp := b.Fingerprint()
	ranked := make([]Candidate, 0, len(moves))
	var best []int
	for _, m := range moves {
		out, tr, err := s.score(t, m)
		if err != nil {
			return Selection{Candidate: Candidate{Move: board.NoMove}}, fmt.Errorf("score %s: %w", m.UCI(), err)
		}
		if after := b.Fingerprint(); after != fp {
			return Selection{Candidate: Candidate{Move: board.NoMove}}, fmt.Errorf("%w: after %s", ErrBoardCorrupted, m.UCI())
		}
		ranked = append(ranked, Candidate{Move: m, Outcome: out, Trace: tr})
		i := len(ranked) - 1
		if len(best) == 0 {
			best = append(best, i)
			continue
		}
		switch out.Compare(ranked[best[0]].Outcome) {
		case 1:
			best = append(best[:0], i)
		case 0:
			best = append(best, i)
		}
	}

	pick := best[0]
	if p.Tie == TieRandom && p.Rand != nil && len(best) > 1 {
		pick = best[p.Rand.Intn(len(best))]
	}
	return Selection{Candidate: ranked[pick], Ranked: ranked, Ties: len(best)}, nil
}
