package heuristic

import "fmt"

// Weights holds every tunable number of the scorer. Penalties are stored as
// positive magnitudes and subtracted by the scorer.
type Weights struct {
	CaptureDivisor         int `yaml:"capture_divisor" json:"capture_divisor"`
	Castle                 int `yaml:"castle" json:"castle"`
	LoseBothCastling       int `yaml:"lose_both_castling" json:"lose_both_castling"`
	LoseOneCastling        int `yaml:"lose_one_castling" json:"lose_one_castling"`
	QueenPromotion         int `yaml:"queen_promotion" json:"queen_promotion"`
	UnderPromotion         int `yaml:"under_promotion" json:"under_promotion"`
	Check                  int `yaml:"check" json:"check"`
	CheckAfterTurn         int `yaml:"check_after_turn" json:"check_after_turn"`
	Repetition             int `yaml:"repetition" json:"repetition"`
	StackedPawns           int `yaml:"stacked_pawns" json:"stacked_pawns"`
	StackedWithAlternative int `yaml:"stacked_with_alternative" json:"stacked_with_alternative"`
	FutureCaptureDivisor   int `yaml:"future_capture_divisor" json:"future_capture_divisor"`
	ProtectDivisor         int `yaml:"protect_divisor" json:"protect_divisor"`
	PostureMate            int `yaml:"posture_mate" json:"posture_mate"`
	PromotionNext          int `yaml:"promotion_next" json:"promotion_next"`
	OpponentPromotion      int `yaml:"opponent_promotion" json:"opponent_promotion"`
	KingMobility           int `yaml:"king_mobility" json:"king_mobility"`
	OpeningKingStep        int `yaml:"opening_king_step" json:"opening_king_step"`
	OpponentKingMobility   int `yaml:"opponent_king_mobility" json:"opponent_king_mobility"`
	BoardControl           int `yaml:"board_control" json:"board_control"`
	PieceMobility          int `yaml:"piece_mobility" json:"piece_mobility"`
	Development            int `yaml:"development" json:"development"`
	RepeatDevelopment      int `yaml:"repeat_development" json:"repeat_development"`
	EarlyQueen             int `yaml:"early_queen" json:"early_queen"`
	OpeningTurns           int `yaml:"opening_turns" json:"opening_turns"`
	BookMove               int `yaml:"book_move" json:"book_move"`
	FiftyMoveReset         int `yaml:"fifty_move_reset" json:"fifty_move_reset"`
	FiftyMoveWindow        int `yaml:"fifty_move_window" json:"fifty_move_window"`
	MateReply              int `yaml:"mate_reply" json:"mate_reply"`
	CheckReply             int `yaml:"check_reply" json:"check_reply"`
	ReplyCaptureDivisor    int `yaml:"reply_capture_divisor" json:"reply_capture_divisor"`
	DrawSwing              int `yaml:"draw_swing" json:"draw_swing"`
	DrawMargin             int `yaml:"draw_margin" json:"draw_margin"`
}

func DefaultWeights() Weights {
	return Weights{
		CaptureDivisor:         10,
		Castle:                 125,
		LoseBothCastling:       150,
		LoseOneCastling:        75,
		QueenPromotion:         300,
		UnderPromotion:         500,
		Check:                  50,
		CheckAfterTurn:         8,
		Repetition:             75,
		StackedPawns:           30,
		StackedWithAlternative: 70,
		FutureCaptureDivisor:   8,
		ProtectDivisor:         2,
		PostureMate:            200,
		PromotionNext:          100,
		OpponentPromotion:      150,
		KingMobility:           4,
		OpeningKingStep:        25,
		OpponentKingMobility:   8,
		BoardControl:           1,
		PieceMobility:          3,
		Development:            20,
		RepeatDevelopment:      15,
		EarlyQueen:             40,
		OpeningTurns:           8,
		BookMove:               40,
		FiftyMoveReset:         30,
		FiftyMoveWindow:        20,
		MateReply:              20000,
		CheckReply:             40,
		ReplyCaptureDivisor:    2,
		DrawSwing:              9999,
		DrawMargin:             300,
	}
}

func (w Weights) Validate() error {
	divisors := map[string]int{
		"capture_divisor":        w.CaptureDivisor,
		"future_capture_divisor": w.FutureCaptureDivisor,
		"protect_divisor":        w.ProtectDivisor,
		"reply_capture_divisor":  w.ReplyCaptureDivisor,
	}
	for name, v := range divisors {
		if v <= 0 {
			return fmt.Errorf("weight %s must be > 0: %d", name, v)
		}
	}
	switch {
	case w.MateReply <= 0:
		return fmt.Errorf("mate_reply must be > 0: %d", w.MateReply)
	case w.DrawMargin < 0:
		return fmt.Errorf("draw_margin must be >= 0: %d", w.DrawMargin)
	case w.OpeningTurns < 0 || w.CheckAfterTurn < 0 || w.FiftyMoveWindow < 0:
		return fmt.Errorf("turn thresholds must be >= 0")
	case w.LoseOneCastling > w.LoseBothCastling:
		return fmt.Errorf("lose_one_castling (%d) must not exceed lose_both_castling (%d)", w.LoseOneCastling, w.LoseBothCastling)
	}
	return nil
}
