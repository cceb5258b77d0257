// Package chesspresenter converts bot results into DTOs and readable text.
package chesspresenter

import (
	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
	"github.com/park285/cheese-heuristic-bot/internal/msgcat"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

func ToDTOGame(g *domain.BotGame) *chessdto.GameState {
	if g == nil {
		return nil
	}
	state := &chessdto.GameState{
		ID:        g.ID,
		Preset:    g.Preset,
		StartFEN:  g.StartFEN,
		MovesUCI:  append([]string{}, g.Moves...),
		MovesSAN:  append([]string{}, g.MovesSAN...),
		Result:    g.Result,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
	if g.Session != nil {
		state.BotSide = g.Session.Side.String()
		state.Variant = g.Session.Variant.String()
	}
	if b, err := board.FromHistory(g.StartFEN, g.Moves); err == nil {
		state.FEN = b.FEN()
		state.ToMove = b.SideToMove().String()
		state.Material = chessdto.Material{
			White: heuristic.Material(b, board.White),
			Black: heuristic.Material(b, board.Black),
		}
	}
	return state
}

// ToDTOMove returns nil when res carries no move.
func ToDTOMove(res *corechess.MoveResult) *chessdto.BotMove {
	if res == nil || res.Move.IsNone() {
		return nil
	}
	out := &chessdto.BotMove{
		UCI:         res.UCI,
		SAN:         res.SAN,
		Outcome:     res.Outcome.String(),
		Score:       res.Trace.Total(),
		Candidates:  res.Candidates,
		Ties:        res.Ties,
		BookMove:    res.BookMove,
		OpeningCode: res.OpeningCode,
		OpeningName: res.OpeningName,
		ElapsedMS:   res.Elapsed.Milliseconds(),
		Overrun:     res.Overrun,
		FENAfter:    res.FENAfter,
	}
	if res.Trace != nil {
		out.Terms = ToDTOTerms(res.Trace.Terms)
	}
	return out
}

func ToDTOTerms(terms []heuristic.Term) []chessdto.Term {
	out := make([]chessdto.Term, 0, len(terms))
	for _, t := range terms {
		out = append(out, chessdto.Term{Name: t.Name, Value: t.Value, Detail: t.Detail})
	}
	return out
}

func ToDTODecisions(ds []*domain.Decision) []*chessdto.Decision {
	out := make([]*chessdto.Decision, 0, len(ds))
	for _, d := range ds {
		out = append(out, &chessdto.Decision{
			Ply:       d.Ply,
			FENBefore: d.FENBefore,
			UCI:       d.UCI,
			SAN:       d.SAN,
			Outcome:   d.Outcome,
			Score:     d.Score,
			Terms:     ToDTOTerms(d.Terms),
			ElapsedMS: d.Elapsed.Milliseconds(),
		})
	}
	return out
}

func ToDTOExplanation(e msgcat.Explanation) *chessdto.Explanation {
	if e.Summary == "" {
		return nil
	}
	return &chessdto.Explanation{Summary: e.Summary, Reasons: append([]string(nil), e.Reasons...)}
}
