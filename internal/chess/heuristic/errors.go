package heuristic

import "errors"

var (
	// ErrExchangeInvariant means the exchange classification fell through every
	// case. It aborts the turn.
	ErrExchangeInvariant = errors.New("exchange classification reached an impossible state")
	// ErrBoardCorrupted means scoring a move left the board different from before.
	ErrBoardCorrupted = errors.New("board changed while scoring")
	// ErrNoLegalMoves is returned by selection when the side to move is
	// checkmated or stalemated.
	ErrNoLegalMoves = errors.New("no legal moves")
	ErrWrongSide    = errors.New("session side is not to move")
)
