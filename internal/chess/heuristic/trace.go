package heuristic

import (
	"sort"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Term names, also used as message catalog keys.
const (
	TermSafeCapture       = "safe_capture"
	TermCastle            = "castle"
	TermCastlingRights    = "castling_rights"
	TermPromotion         = "promotion"
	TermCheck             = "check"
	TermRepetition        = "repetition"
	TermStackedPawns      = "stacked_pawns"
	TermFutureCapture     = "future_capture"
	TermProtection        = "protection"
	TermPostureMate       = "posture_mate"
	TermPromotionNext     = "promotion_next"
	TermOpponentPromotion = "opponent_promotion"
	TermKingMobility      = "king_mobility"
	TermOpponentKing      = "opponent_king"
	TermBoardControl      = "board_control"
	TermPieceMobility     = "piece_mobility"
	TermDevelopment       = "development"
	TermOpening           = "opening"
	TermBookMove          = "book_move"
	TermFiftyMove         = "fifty_move"
	TermReplies           = "replies"
)

type Term struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Detail string `json:"detail,omitempty"`
}

// Trace collects the terms that made up one move's score.
type Trace struct {
	Move   board.Move
	Terms  []Term
	Safety *Explanation
}

func newTrace(m board.Move) *Trace { return &Trace{Move: m} }

func (t *Trace) add(name string, v int, detail string) {
	if v == 0 {
		return
	}
	t.Terms = append(t.Terms, Term{Name: name, Value: v, Detail: detail})
}

func (t *Trace) Total() int {
	if t == nil {
		return 0
	}
	sum := 0
	for _, term := range t.Terms {
		sum += term.Value
	}
	return sum
}

// Value sums every term with the given name.
func (t *Trace) Value(name string) int {
	if t == nil {
		return 0
	}
	sum := 0
	for _, term := range t.Terms {
		if term.Name == name {
			sum += term.Value
		}
	}
	return sum
}

// Top returns up to n terms ordered by absolute contribution.
func (t *Trace) Top(n int) []Term {
	if t == nil || n <= 0 {
		return nil
	}
	out := append([]Term(nil), t.Terms...)
	sort.SliceStable(out, func(i, j int) bool { return abs(out[i].Value) > abs(out[j].Value) })
	if len(out) > n {
		out = out[:n]
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
