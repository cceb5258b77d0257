package heuristic

import (
	"github.com/google/uuid"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/openingbook"
)

// Session is the per-game memory of one side. Only Record mutates it, after a
// move has been selected.
type Session struct {
	GameID   string                `json:"game_id"`
	Side     board.Color           `json:"side"`
	Turn     int                   `json:"turn"`
	Moved    map[board.Square]bool `json:"moved,omitempty"`
	PawnAge  int                   `json:"pawn_age"`
	Material [2]int                `json:"material"`
	Variant  openingbook.Variant   `json:"variant"`
}

func NewSession(side board.Color, variant openingbook.Variant) *Session {
	return &Session{
		GameID:  uuid.NewString(),
		Side:    side,
		Turn:    1,
		Moved:   make(map[board.Square]bool),
		Variant: variant,
	}
}

func (s *Session) HasMoved(sq board.Square) bool {
	return s != nil && s.Moved[sq]
}

// Observe refreshes the running material totals from b.
func (s *Session) Observe(b board.Board) {
	s.Material[board.White] = Material(b, board.White)
	s.Material[board.Black] = Material(b, board.Black)
}

// Deficit is how far the session's side trails in material.
func (s *Session) Deficit() int {
	return s.Material[s.Side.Other()] - s.Material[s.Side]
}

// Record advances the session past our move m. after, when non-nil, is the
// board with m already played.
func (s *Session) Record(m board.Move, after board.Board) {
	if s.Moved == nil {
		s.Moved = make(map[board.Square]bool)
	}
	delete(s.Moved, m.From)
	s.Moved[m.To] = true
	if m.Castle {
		rank := m.From.Rank()
		if m.To.File() > m.From.File() {
			delete(s.Moved, board.NewSquare(7, rank))
			s.Moved[board.NewSquare(5, rank)] = true
		} else {
			delete(s.Moved, board.NewSquare(0, rank))
			s.Moved[board.NewSquare(3, rank)] = true
		}
	}
	if m.Piece == board.Pawn {
		s.PawnAge = 0
	} else {
		s.PawnAge++
	}
	s.Turn++
	if after != nil {
		s.Observe(after)
	}
}
