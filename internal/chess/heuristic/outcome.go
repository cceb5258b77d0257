package heuristic

import (
	"fmt"
	"strconv"
)

// Reason tags a decisive outcome; ReasonNone marks a heuristic score.
type Reason uint8

const (
	ReasonNone Reason = iota
	Checkmate
	EnPassant
	SeekDraw
	AvoidDraw
)

func (r Reason) String() string {
	switch r {
	case Checkmate:
		return "checkmate"
	case EnPassant:
		return "en_passant"
	case SeekDraw:
		return "seek_draw"
	case AvoidDraw:
		return "avoid_draw"
	}
	return "heuristic"
}

// Outcome is either Decisive(reason) or Heuristic(score). They are ordered
//
//	AvoidDraw < Heuristic(n) < SeekDraw < EnPassant < Checkmate
//
// with heuristic outcomes compared by score.
type Outcome struct {
	reason Reason
	score  int
}

// Heuristic wraps a summed term score. Higher is better.
func Heuristic(score int) Outcome { return Outcome{score: score} }

// Decisive wraps a terminal reason. Decisive outcomes of the same reason tie.
func Decisive(r Reason) Outcome { return Outcome{reason: r} }

func (o Outcome) Reason() Reason      { return o.reason }
func (o Outcome) IsDecisive() bool    { return o.reason != ReasonNone }
func (o Outcome) Score() int          { return o.score }
func (o Outcome) Less(p Outcome) bool { return o.Compare(p) < 0 }

func (o Outcome) rank() int {
	switch o.reason {
	case AvoidDraw:
		return 0
	case SeekDraw:
		return 2
	case EnPassant:
		return 3
	case Checkmate:
		return 4
	}
	return 1
}

// Compare returns -1, 0 or 1.
func (o Outcome) Compare(p Outcome) int {
	if a, b := o.rank(), p.rank(); a != b {
		if a < b {
			return -1
		}
		return 1
	}
	if o.reason != ReasonNone {
		return 0
	}
	switch {
	case o.score < p.score:
		return -1
	case o.score > p.score:
		return 1
	}
	return 0
}

func (o Outcome) String() string {
	if o.IsDecisive() {
		return o.reason.String()
	}
	return "heuristic(" + strconv.Itoa(o.score) + ")"
}

func (o Outcome) GoString() string { return fmt.Sprintf("Outcome{%s}", o) }
