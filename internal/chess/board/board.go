// Package board exposes the position oracle consumed by the move picker and an
// implementation backed by github.com/corentings/chess/v2.
package board

import "errors"

var (
	ErrIllegalMove    = errors.New("illegal move")
	ErrUnbalancedUndo = errors.New("undo does not match the last applied change")
	ErrInvalidFEN     = errors.New("invalid fen")
)

// Board is the collaborator the heuristics read and mutate. Every ApplyMove must
// be paired with a RevertMove of the same move and every SkipTurn with an
// UndoSkipTurn, strictly last-in first-out.
type Board interface {
	// LegalMoves lists the side to move's legal moves, optionally captures only.
	LegalMoves(capturesOnly bool) []Move
	ApplyMove(m Move) error
	RevertMove(m Move) error
	// SkipTurn passes the move to the other side without moving a piece.
	SkipTurn() error
	UndoSkipTurn() error

	PieceAt(sq Square) Piece
	KingSquare(c Color) Square
	SideToMove() Color

	// IsSquareAttackedByOpponent reports whether the side not to move attacks sq.
	IsSquareAttackedByOpponent(sq Square) bool
	// Attackers lists squares of c's pieces that attack sq, ignoring pins.
	Attackers(sq Square, c Color) []Square

	IsInCheck() bool
	IsInCheckmate() bool
	IsDraw() bool
	IsInsufficientMaterial() bool
	HalfmoveClock() int
	IsRepeatedPosition() bool
	HasCastleRight(c Color, side CastleSide) bool

	// Fingerprint identifies the full observable state including repetition history.
	Fingerprint() string
}
