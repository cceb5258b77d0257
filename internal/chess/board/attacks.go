package board

var (
	knightSteps = [8][2]int{{1, 2}, {2, 1}, {2, -1}, {1, -2}, {-1, -2}, {-2, -1}, {-2, 1}, {-1, 2}}
	kingSteps   = [8][2]int{{1, 0}, {1, 1}, {0, 1}, {-1, 1}, {-1, 0}, {-1, -1}, {0, -1}, {1, -1}}
	rookRays    = [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopRays  = [4][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

// attackersOf lists squares holding c's pieces that attack target on squares.
func attackersOf(squares *[64]Piece, target Square, c Color) []Square {
	if !target.Valid() {
		return nil
	}
	var out []Square
	tf, tr := target.File(), target.Rank()

	// A white pawn attacks upwards, so it sits one rank below the target.
	pawnRank := tr - 1
	if c == Black {
		pawnRank = tr + 1
	}
	for _, df := range [2]int{-1, 1} {
		sq := NewSquare(tf+df, pawnRank)
		if sq != NoSquare && squares[sq] == (Piece{Kind: Pawn, Color: c}) {
			out = append(out, sq)
		}
	}

	for _, st := range knightSteps {
		sq := NewSquare(tf+st[0], tr+st[1])
		if sq != NoSquare && squares[sq] == (Piece{Kind: Knight, Color: c}) {
			out = append(out, sq)
		}
	}
	for _, st := range kingSteps {
		sq := NewSquare(tf+st[0], tr+st[1])
		if sq != NoSquare && squares[sq] == (Piece{Kind: King, Color: c}) {
			out = append(out, sq)
		}
	}

	out = appendSliders(out, squares, tf, tr, c, rookRays[:], Rook)
	out = appendSliders(out, squares, tf, tr, c, bishopRays[:], Bishop)
	return out
}

func appendSliders(out []Square, squares *[64]Piece, tf, tr int, c Color, rays [][2]int, kind Kind) []Square {
	for _, ray := range rays {
		f, r := tf+ray[0], tr+ray[1]
		for {
			sq := NewSquare(f, r)
			if sq == NoSquare {
				break
			}
			p := squares[sq]
			if !p.IsZero() {
				if p.Color == c && (p.Kind == kind || p.Kind == Queen) {
					out = append(out, sq)
				}
				break
			}
			f += ray[0]
			r += ray[1]
		}
	}
	return out
}

func isAttacked(squares *[64]Piece, target Square, by Color) bool {
	return len(attackersOf(squares, target, by)) > 0
}
