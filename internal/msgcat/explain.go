package msgcat

import (
	"fmt"

	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

type Explanation struct {
	Summary string   `json:"summary"`
	Reasons []string `json:"reasons,omitempty"`
}

// Explain renders a one-line summary of out and the n largest terms of tr.
func (c *Catalog) Explain(move string, out heuristic.Outcome, tr *heuristic.Trace, n int) (Explanation, error) {
	summary, err := c.Render("outcome."+out.Reason().String(), map[string]any{
		"Move":  move,
		"Score": out.Score(),
	})
	if err != nil {
		return Explanation{}, err
	}
	ex := Explanation{Summary: summary}
	if out.IsDecisive() {
		return ex, nil
	}
	for _, term := range tr.Top(n) {
		line, err := c.Render("terms."+term.Name, term)
		if err != nil {
			return Explanation{}, fmt.Errorf("term %s: %w", term.Name, err)
		}
		ex.Reasons = append(ex.Reasons, line)
	}
	return ex, nil
}
