package heuristic

import (
	"fmt"
	"sort"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Explanation records how IsSafe classified a move. Case 0 means the target
// was not attacked at all.
type Explanation struct {
	Case   int   `json:"case"`
	Ours   []int `json:"ours,omitempty"`
	Theirs []int `json:"theirs,omitempty"`
	Safe   bool  `json:"safe"`
}

// IsSafe reports whether the piece played by m can stand on m.To without a
// net material loss in the exchange that may follow. The board is restored
// before returning.
//
// The test runs on the board after m: ours lists the other friendly pieces
// covering the target, theirs lists the captured piece first (if any) and
// then the opponent pieces that can legally take on the target. Both are
// sorted cheapest first. With no friendly cover the mover is simply lost to
// the first capture, so the move is safe only when it wins more than that.
func IsSafe(b board.Board, m board.Move) (bool, Explanation, error) {
	us := b.SideToMove()
	var defenders, attackers []int
	err := board.Within(b, func(s *board.Scope) error {
		if err := s.Apply(m); err != nil {
			return err
		}
		seen := make(map[board.Square]bool)
		for _, r := range b.LegalMoves(true) {
			if r.To != m.To || seen[r.From] {
				continue
			}
			seen[r.From] = true
			attackers = append(attackers, Value(r.Piece))
		}
		if len(attackers) == 0 {
			return nil
		}
		for _, sq := range b.Attackers(m.To, us) {
			defenders = append(defenders, Value(b.PieceAt(sq).Kind))
		}
		return nil
	})
	if err != nil {
		return false, Explanation{}, fmt.Errorf("exchange on %s: %w", m.To, err)
	}
	if len(attackers) == 0 {
		return true, Explanation{Safe: true}, nil
	}

	sort.Ints(defenders)
	sort.Ints(attackers)
	theirs := attackers
	if m.IsCapture() {
		theirs = append([]int{capturedValue(b, m)}, attackers...)
	}
	if len(defenders) == 0 {
		return undefended(movedValue(m), capturedValue(b, m), theirs)
	}
	return classifyExchange(defenders, theirs)
}

// undefended settles an exchange where nothing covers the target: the mover
// is taken at once. An even trade counts as unsafe, as in Case 1.
func undefended(mover, captured int, theirs []int) (bool, Explanation, error) {
	ex := Explanation{Case: 1, Theirs: theirs}
	if captured > mover {
		ex.Case, ex.Safe = 2, true
	}
	return ex.Safe, ex, nil
}

func classifyExchange(ours, theirs []int) (bool, Explanation, error) {
	nO, nT := len(ours), len(theirs)
	sumO, sumT := sum(ours), sum(theirs)
	ex := Explanation{Ours: ours, Theirs: theirs}

	switch {
	case nT == nO || (nT >= nO && sumT <= sumO):
		ex.Case = 1
	case nT < nO && sumT >= sumO:
		ex.Case, ex.Safe = 2, true
	case nT >= nO && sumT > sumO:
		ex.Case = 3
		ex.Safe = sum(theirs[:nO]) >= sumO
	case nT < nO && sumT < sumO:
		ex.Case = 4
		ex.Safe = sumT >= sum(ours[:nT])
	default:
		return false, ex, fmt.Errorf("%w: ours=%v theirs=%v", ErrExchangeInvariant, ours, theirs)
	}
	return ex.Safe, ex, nil
}

func sum(vs []int) int {
	total := 0
	for _, v := range vs {
		total += v
	}
	return total
}
