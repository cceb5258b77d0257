package heuristic

import "github.com/park285/cheese-heuristic-bot/internal/chess/board"

// AssessReplies plays m and sums a penalty or bonus for every opponent reply.
// deficit is the mover's material deficit, used to judge drawing replies.
func AssessReplies(b board.Board, m board.Move, w Weights, deficit int) (int, error) {
	var total int
	err := afterMove(b, m, func() error {
		var err error
		total, err = replyScore(b, w, deficit)
		return err
	})
	return total, err
}

// replyScore evaluates every legal move of the side to move as a reply to the
// previous move.
func replyScore(b board.Board, w Weights, deficit int) (int, error) {
	total := 0
	for _, r := range b.LegalMoves(false) {
		v, ok, err := SafeCapture(b, r)
		if err != nil {
			return 0, err
		}
		if ok {
			total -= v / w.ReplyCaptureDivisor
		}

		err = afterMove(b, r, func() error {
			switch {
			case b.IsInCheckmate():
				total -= w.MateReply
			case b.IsInCheck():
				total -= w.CheckReply
			case b.IsDraw():
				if deficit > w.DrawMargin {
					total += w.DrawSwing
				} else {
					total -= w.DrawSwing
				}
			}
			return nil
		})
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
