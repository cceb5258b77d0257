package heuristic

import "github.com/park285/cheese-heuristic-bot/internal/chess/board"

// Each exported feature looks at the position reached by m and restores the
// board before returning. The unexported helpers read the current position
// only and never mutate it, except through nested IsSafe calls.

// afterMove runs fn on the position after m.
func afterMove(b board.Board, m board.Move, fn func() error) error {
	return board.Within(b, func(s *board.Scope) error {
		if err := s.Apply(m); err != nil {
			return err
		}
		return fn()
	})
}

// nextTurn runs fn on the position after m with the opponent's reply skipped,
// so the mover is to play again.
func nextTurn(b board.Board, m board.Move, fn func() error) error {
	return board.Within(b, func(s *board.Scope) error {
		if err := s.Apply(m); err != nil {
			return err
		}
		if err := s.Skip(); err != nil {
			return err
		}
		return fn()
	})
}

func GivesCheckmate(b board.Board, m board.Move) (bool, error) {
	var mate bool
	err := afterMove(b, m, func() error {
		mate = b.IsInCheckmate()
		return nil
	})
	return mate, err
}

func GivesCheck(b board.Board, m board.Move) (bool, error) {
	var check bool
	err := afterMove(b, m, func() error {
		check = b.IsInCheck()
		return nil
	})
	return check, err
}

// RepeatsPosition reports whether m returns to a position seen earlier in the game.
func RepeatsPosition(b board.Board, m board.Move) (bool, error) {
	var repeated bool
	err := afterMove(b, m, func() error {
		repeated = b.IsRepeatedPosition()
		return nil
	})
	return repeated, err
}

// ResultsInDraw covers stalemate, dead positions, the fifty-move rule and
// threefold repetition. Checkmate is never a draw.
func ResultsInDraw(b board.Board, m board.Move) (bool, error) {
	var draw bool
	err := afterMove(b, m, func() error {
		draw = b.IsDraw()
		return nil
	})
	return draw, err
}

// SafeCapture returns the value won when m is a capture that IsSafe accepts.
func SafeCapture(b board.Board, m board.Move) (int, bool, error) {
	if !m.IsCapture() {
		return 0, false, nil
	}
	safe, _, err := IsSafe(b, m)
	if err != nil || !safe {
		return 0, false, err
	}
	return capturedValue(b, m), true, nil
}

// FutureSafeCapture is the best value the moved piece could safely take if the
// opponent passed after m.
func FutureSafeCapture(b board.Board, m board.Move) (int, error) {
	var best int
	err := nextTurn(b, m, func() error {
		var err error
		best, err = bestSafeCaptureFrom(b, m.To)
		return err
	})
	return best, err
}

// CreatesStackedPawns reports whether m leaves the mover with more files
// holding doubled pawns than before.
func CreatesStackedPawns(b board.Board, m board.Move) (bool, error) {
	us := b.SideToMove()
	before := stackedFiles(b, us)
	var after int
	err := afterMove(b, m, func() error {
		after = stackedFiles(b, us)
		return nil
	})
	return after > before, err
}

// AlternativeSafeCapture reports whether a friendly non-pawn piece other than
// the mover could safely capture on m.To instead.
func AlternativeSafeCapture(b board.Board, m board.Move) (bool, error) {
	if !m.IsCapture() {
		return false, nil
	}
	for _, alt := range b.LegalMoves(true) {
		if alt.To != m.To || alt.From == m.From || alt.Piece == board.Pawn {
			continue
		}
		safe, _, err := IsSafe(b, alt)
		if err != nil {
			return false, err
		}
		if safe {
			return true, nil
		}
	}
	return false, nil
}

// CastlingRightsLost counts the castling rights of the mover that m gives up.
func CastlingRightsLost(b board.Board, m board.Move) (int, error) {
	us := b.SideToMove()
	before := castleRights(b, us)
	var after int
	err := afterMove(b, m, func() error {
		after = castleRights(b, us)
		return nil
	})
	return before - after, err
}

// ProtectedValue sums the pieces the opponent could safely capture before m
// but no longer after it.
func ProtectedValue(b board.Board, m board.Move) (int, error) {
	before, err := passedThreats(b)
	if err != nil {
		return 0, err
	}
	var after map[board.Square]int
	err = afterMove(b, m, func() error {
		var err error
		after, err = safeCaptureTargets(b)
		return err
	})
	if err != nil {
		return 0, err
	}
	return protectedValue(before, after, m), nil
}

func protectedValue(before, after map[board.Square]int, m board.Move) int {
	total := 0
	for sq, v := range before {
		if sq == m.From {
			if _, still := after[m.To]; !still {
				total += v
			}
			continue
		}
		if _, still := after[sq]; !still {
			total += v
		}
	}
	return total
}

// BoardControl returns the control score of the mover before and after m,
// measured with the mover to play in both positions.
func BoardControl(b board.Board, m board.Move) (before, after int, err error) {
	if before, err = boardControl(b); err != nil {
		return 0, 0, err
	}
	err = nextTurn(b, m, func() error {
		var err error
		after, err = boardControl(b)
		return err
	})
	return before, after, err
}

// KingMobility returns the legal king move counts of the mover before and after m.
func KingMobility(b board.Board, m board.Move) (before, after int, err error) {
	before = countMoves(b, isKingMove)
	err = nextTurn(b, m, func() error {
		after = countMoves(b, isKingMove)
		return nil
	})
	return before, after, err
}

// OpponentKingMobility returns the opponent's legal king move counts before
// and after m.
func OpponentKingMobility(b board.Board, m board.Move) (before, after int, err error) {
	err = board.Within(b, func(s *board.Scope) error {
		if err := s.Skip(); err != nil {
			return err
		}
		before = countMoves(b, isKingMove)
		return nil
	})
	if err != nil {
		return 0, 0, err
	}
	err = afterMove(b, m, func() error {
		after = countMoves(b, isKingMove)
		return nil
	})
	return before, after, err
}

// PieceMobility returns the legal move counts of the moved piece before and
// after m.
func PieceMobility(b board.Board, m board.Move) (before, after int, err error) {
	before = countMoves(b, func(lm board.Move) bool { return lm.From == m.From })
	err = nextTurn(b, m, func() error {
		after = countMoves(b, func(lm board.Move) bool { return lm.From == m.To })
		return nil
	})
	return before, after, err
}

// OpponentCanPromote reports whether the opponent has a promotion available
// in the current position and in the position after m.
func OpponentCanPromote(b board.Board, m board.Move) (before, after bool, err error) {
	err = board.Within(b, func(s *board.Scope) error {
		if err := s.Skip(); err != nil {
			return err
		}
		before = anyPromotion(b)
		return nil
	})
	if err != nil {
		return false, false, err
	}
	err = afterMove(b, m, func() error {
		after = anyPromotion(b)
		return nil
	})
	return before, after, err
}

// PromotesNext reports whether the mover could promote on its next turn.
func PromotesNext(b board.Board, m board.Move) (bool, error) {
	var promote bool
	err := nextTurn(b, m, func() error {
		promote = anyPromotion(b)
		return nil
	})
	return promote, err
}

// PosturesCheckmate reports whether, if the opponent passed after m, the mover
// would have a mating move.
func PosturesCheckmate(b board.Board, m board.Move) (bool, error) {
	var mate bool
	err := nextTurn(b, m, func() error {
		var err error
		mate, err = anyMate(b)
		return err
	})
	return mate, err
}

func isKingMove(m board.Move) bool { return m.Piece == board.King }

func countMoves(b board.Board, keep func(board.Move) bool) int {
	n := 0
	for _, lm := range b.LegalMoves(false) {
		if keep(lm) {
			n++
		}
	}
	return n
}

func anyPromotion(b board.Board) bool {
	for _, lm := range b.LegalMoves(false) {
		if lm.IsPromotion() {
			return true
		}
	}
	return false
}

func anyMate(b board.Board) (bool, error) {
	for _, lm := range b.LegalMoves(false) {
		mate, err := GivesCheckmate(b, lm)
		if err != nil || mate {
			return mate, err
		}
	}
	return false, nil
}

func bestSafeCaptureFrom(b board.Board, from board.Square) (int, error) {
	best := 0
	for _, lm := range b.LegalMoves(true) {
		if lm.From != from {
			continue
		}
		v, ok, err := SafeCapture(b, lm)
		if err != nil {
			return 0, err
		}
		if ok && v > best {
			best = v
		}
	}
	return best, nil
}

// safeCaptureTargets maps each square the side to move can safely capture on
// to the value it would win there.
func safeCaptureTargets(b board.Board) (map[board.Square]int, error) {
	out := make(map[board.Square]int)
	for _, lm := range b.LegalMoves(true) {
		v, ok, err := SafeCapture(b, lm)
		if err != nil {
			return nil, err
		}
		if ok && v > out[lm.To] {
			out[lm.To] = v
		}
	}
	return out, nil
}

// passedThreats is safeCaptureTargets for the opponent of the side to move.
func passedThreats(b board.Board) (map[board.Square]int, error) {
	var out map[board.Square]int
	err := board.Within(b, func(s *board.Scope) error {
		if err := s.Skip(); err != nil {
			return err
		}
		var err error
		out, err = safeCaptureTargets(b)
		return err
	})
	return out, err
}

func boardControl(b board.Board) (int, error) {
	us := b.SideToMove()
	total := 0
	for _, lm := range b.LegalMoves(false) {
		safe, _, err := IsSafe(b, lm)
		if err != nil {
			return 0, err
		}
		if safe {
			total += controlWeight(lm.From, us) + controlWeight(lm.To, us)
		}
	}
	return total, nil
}
