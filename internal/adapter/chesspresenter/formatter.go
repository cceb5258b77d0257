package chesspresenter

import (
	"fmt"
	"strings"

	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

const recentMoveLimit = 8

// Formatter renders DTOs as plain text for terminals and logs.
type Formatter struct {
	// Verbose adds every scoring term below the move line.
	Verbose bool
}

func NewFormatter(verbose bool) *Formatter {
	return &Formatter{Verbose: verbose}
}

func (f *Formatter) Move(m *chessdto.BotMove) string {
	if m == nil {
		return "no move"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s (%s)  %s  score %+d  %d candidates", m.SAN, m.UCI, m.Outcome, m.Score, m.Candidates)
	if m.Ties > 1 {
		fmt.Fprintf(&sb, ", %d tied", m.Ties)
	}
	fmt.Fprintf(&sb, "  %dms", m.ElapsedMS)
	if m.Overrun {
		sb.WriteString(" (over budget)")
	}
	if m.OpeningCode != "" {
		fmt.Fprintf(&sb, "\n  opening %s %s", m.OpeningCode, m.OpeningName)
	}
	if m.BookMove != "" {
		fmt.Fprintf(&sb, "\n  book suggests %s", m.BookMove)
	}
	if e := m.Explanation; e != nil {
		sb.WriteString("\n  ")
		sb.WriteString(e.Summary)
		for _, r := range e.Reasons {
			sb.WriteString("\n    - ")
			sb.WriteString(r)
		}
	}
	if f != nil && f.Verbose {
		for _, t := range m.Terms {
			fmt.Fprintf(&sb, "\n    %-24s %+6d", t.Name, t.Value)
			if t.Detail != "" {
				sb.WriteString("  ")
				sb.WriteString(t.Detail)
			}
		}
	}
	return sb.String()
}

func (f *Formatter) Game(g *chessdto.GameState) string {
	if g == nil {
		return "no game"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "game %s  preset %s  bot %s", g.ID, g.Preset, g.BotSide)
	if g.Variant != "" && g.Variant != "none" {
		fmt.Fprintf(&sb, " (%s)", g.Variant)
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "moves: %s\n", formatRecentMoves(g.MovesSAN, startsWithBlack(g.StartFEN)))
	fmt.Fprintf(&sb, "material: %s\n", formatMaterial(g.Material))
	if g.Result != "" {
		sb.WriteString(formatOutcome(g.Result, g.BotSide))
	} else {
		fmt.Fprintf(&sb, "%s to move", g.ToMove)
	}
	return sb.String()
}

// Moves numbers a full SAN list, e.g. "1. e4 e5 2. Nf3".
func (f *Formatter) Moves(san []string, blackFirst bool) string {
	return numberMoves(san, firstPly(blackFirst))
}

func firstPly(blackFirst bool) int {
	if blackFirst {
		return 1
	}
	return 0
}

// numberMoves labels san whose first entry is ply (0 = white's first move).
func numberMoves(san []string, ply int) string {
	if len(san) == 0 {
		return "-"
	}
	var sb strings.Builder
	for i, mv := range san {
		if i > 0 {
			sb.WriteByte(' ')
		}
		p := ply + i
		switch {
		case p%2 == 0:
			fmt.Fprintf(&sb, "%d. ", p/2+1)
		case i == 0:
			fmt.Fprintf(&sb, "%d... ", p/2+1)
		}
		sb.WriteString(mv)
	}
	return sb.String()
}

func formatRecentMoves(san []string, blackFirst bool) string {
	offset := firstPly(blackFirst)
	if len(san) <= recentMoveLimit {
		return numberMoves(san, offset)
	}
	start := len(san) - recentMoveLimit
	if (start+offset)%2 == 1 {
		start--
	}
	return "… " + numberMoves(san[start:], start+offset)
}

func startsWithBlack(fen string) bool {
	fields := strings.Fields(fen)
	return len(fields) > 1 && fields[1] == "b"
}

func formatOutcome(result, botSide string) string {
	switch result {
	case "1/2-1/2":
		return "draw"
	case "1-0", "0-1":
		winner := "white"
		if result == "0-1" {
			winner = "black"
		}
		if winner == botSide {
			return result + ", bot wins"
		}
		return result + ", bot loses"
	default:
		return "game over"
	}
}

func formatMaterial(m chessdto.Material) string {
	diff := m.White - m.Black
	if diff == 0 {
		return fmt.Sprintf("%d vs %d (even)", m.White, m.Black)
	}
	return fmt.Sprintf("%d vs %d (%+d)", m.White, m.Black, diff)
}
