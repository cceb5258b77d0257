package board

import (
	nchess "github.com/corentings/chess/v2"
)

const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// positionKey identifies a position for repetition: placement, side to move,
// castling rights and en passant square, as the library compares them.
type positionKey struct {
	placement string
	turn      nchess.Color
	castling  nchess.CastleRights
	ep        nchess.Square
}

func keyOf(pos *nchess.Position) positionKey {
	return positionKey{
		placement: pos.Board().String(),
		turn:      pos.Turn(),
		castling:  pos.CastleRights(),
		ep:        pos.EnPassantSquare(),
	}
}

func colorOf(c nchess.Color) Color {
	if c == nchess.Black {
		return Black
	}
	return White
}

func libColor(c Color) nchess.Color {
	if c == Black {
		return nchess.Black
	}
	return nchess.White
}

func kindOf(pt nchess.PieceType) Kind {
	switch pt {
	case nchess.Pawn:
		return Pawn
	case nchess.Knight:
		return Knight
	case nchess.Bishop:
		return Bishop
	case nchess.Rook:
		return Rook
	case nchess.Queen:
		return Queen
	case nchess.King:
		return King
	}
	return NoKind
}

func pieceOf(p nchess.Piece) Piece {
	if p == nchess.NoPiece {
		return NoPiece
	}
	return Piece{Kind: kindOf(p.Type()), Color: colorOf(p.Color())}
}

// placement copies the library board into a square-indexed array.
func placement(pos *nchess.Position) *[64]Piece {
	var squares [64]Piece
	for sq, p := range pos.Board().SquareMap() {
		squares[sq] = pieceOf(p)
	}
	return &squares
}

func libSide(side CastleSide) nchess.Side {
	if side == QueenSide {
		return nchess.QueenSide
	}
	return nchess.KingSide
}

// fullmove derives the FEN move number from the library's ply count.
func fullmove(pos *nchess.Position) int {
	if n := (pos.Ply() + 1) / 2; n > 0 {
		return n
	}
	return 1
}
