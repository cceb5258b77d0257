package heuristic

import "github.com/park285/cheese-heuristic-bot/internal/chess/board"

// The king is worth nothing in every material sum and exchange list.
var materialTable = [...]int{
	board.NoKind: 0,
	board.Pawn:   100,
	board.Knight: 300,
	board.Bishop: 300,
	board.Rook:   500,
	board.Queen:  900,
	board.King:   0,
}

// Value is the material worth of k in centipawns. Kings and unknown kinds are 0.
func Value(k board.Kind) int {
	if int(k) >= len(materialTable) {
		return 0
	}
	return materialTable[k]
}

// Material sums the values of c's pieces.
func Material(b board.Board, c board.Color) int {
	total := 0
	for sq := board.Square(0); sq < 64; sq++ {
		if p := b.PieceAt(sq); !p.IsZero() && p.Color == c {
			total += Value(p.Kind)
		}
	}
	return total
}

// deficit is how far c trails its opponent in material; negative when ahead.
func deficit(b board.Board, c board.Color) int {
	return Material(b, c.Other()) - Material(b, c)
}

// movedValue is the value standing on the target once m is played.
func movedValue(m board.Move) int {
	if m.IsPromotion() {
		return Value(m.Promo)
	}
	return Value(m.Piece)
}

// capturedValue values the piece m takes. A pawn that could promote on its
// next move counts as a queen.
func capturedValue(b board.Board, m board.Move) int {
	if !m.IsCapture() {
		return 0
	}
	if m.EnPassant {
		return Value(board.Pawn)
	}
	if m.Captured == board.Pawn && pawnCanPromoteNext(b, m.To) {
		return Value(board.Queen)
	}
	return Value(m.Captured)
}

func pawnCanPromoteNext(b board.Board, sq board.Square) bool {
	p := b.PieceAt(sq)
	if p.Kind != board.Pawn {
		return false
	}
	dir := 1
	if p.Color == board.Black {
		dir = -1
	}
	if next := sq.Rank() + dir; (p.Color == board.White && next != 7) || (p.Color == board.Black && next != 0) {
		return false
	}
	if b.PieceAt(board.NewSquare(sq.File(), sq.Rank()+dir)).IsZero() {
		return true
	}
	for _, df := range [2]int{-1, 1} {
		diag := board.NewSquare(sq.File()+df, sq.Rank()+dir)
		if diag == board.NoSquare {
			continue
		}
		if q := b.PieceAt(diag); !q.IsZero() && q.Color != p.Color && q.Kind != board.King {
			return true
		}
	}
	return false
}

// stackedFiles counts files holding two or more of c's pawns.
func stackedFiles(b board.Board, c board.Color) int {
	var perFile [8]int
	for sq := board.Square(0); sq < 64; sq++ {
		if p := b.PieceAt(sq); p.Kind == board.Pawn && p.Color == c {
			perFile[sq.File()]++
		}
	}
	n := 0
	for _, count := range perFile {
		if count > 1 {
			n++
		}
	}
	return n
}

func castleRights(b board.Board, c board.Color) int {
	n := 0
	for _, side := range []board.CastleSide{board.KingSide, board.QueenSide} {
		if b.HasCastleRight(c, side) {
			n++
		}
	}
	return n
}

// controlByRank weights squares by distance from c's back rank.
var controlByRank = [8]int{0, 1, 2, 3, 4, 4, 3, 2}

func controlWeight(sq board.Square, c board.Color) int {
	rank := sq.Rank()
	if c == board.Black {
		rank = 7 - rank
	}
	return controlByRank[rank]
}
