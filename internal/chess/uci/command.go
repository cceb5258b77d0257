package uci

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Position is the argument of a "position" command.
type Position struct {
	FEN   string
	Moves []string
}

// Limits holds the clock fields of a "go" command that affect the budget.
type Limits struct {
	MoveTime  time.Duration
	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

func parsePosition(args []string) (Position, error) {
	if len(args) == 0 {
		return Position{}, fmt.Errorf("position: missing startpos or fen")
	}
	var pos Position
	rest := args[1:]
	switch args[0] {
	case "startpos":
		pos.FEN = board.StartFEN
	case "fen":
		end := len(rest)
		for i, tok := range rest {
			if tok == "moves" {
				end = i
				break
			}
		}
		if end == 0 {
			return Position{}, fmt.Errorf("position: empty fen")
		}
		pos.FEN = strings.Join(rest[:end], " ")
		rest = rest[end:]
	default:
		return Position{}, fmt.Errorf("position: unexpected %q", args[0])
	}
	if len(rest) > 0 {
		if rest[0] != "moves" {
			return Position{}, fmt.Errorf("position: unexpected %q", rest[0])
		}
		pos.Moves = append([]string(nil), rest[1:]...)
	}
	return pos, nil
}

func parseGo(args []string) (Limits, error) {
	var l Limits
	for i := 0; i < len(args); i++ {
		key := args[i]
		var dst *time.Duration
		switch key {
		case "movetime":
			dst = &l.MoveTime
		case "wtime":
			dst = &l.WTime
		case "btime":
			dst = &l.BTime
		case "winc":
			dst = &l.WInc
		case "binc":
			dst = &l.BInc
		case "movestogo":
			if i+1 >= len(args) {
				return Limits{}, fmt.Errorf("go: %s needs a value", key)
			}
			n, err := strconv.Atoi(args[i+1])
			if err != nil {
				return Limits{}, fmt.Errorf("go: %s: %w", key, err)
			}
			l.MovesToGo = n
			i++
			continue
		case "depth", "nodes", "mate":
			// single-ply picker; the value is read and ignored
			i++
			continue
		default:
			continue
		}
		if i+1 >= len(args) {
			return Limits{}, fmt.Errorf("go: %s needs a value", key)
		}
		ms, err := strconv.Atoi(args[i+1])
		if err != nil {
			return Limits{}, fmt.Errorf("go: %s: %w", key, err)
		}
		*dst = time.Duration(ms) * time.Millisecond
		i++
	}
	return l, nil
}

// Budget converts the limits into a per-move time budget for side. Zero means
// the engine default.
func (l Limits) Budget(side board.Color) time.Duration {
	if l.MoveTime > 0 {
		return l.MoveTime
	}
	remaining, inc := l.WTime, l.WInc
	if side == board.Black {
		remaining, inc = l.BTime, l.BInc
	}
	if remaining <= 0 {
		return 0
	}
	moves := l.MovesToGo
	if moves <= 0 {
		moves = 30
	}
	return remaining/time.Duration(moves) + inc
}

// parseSetOption splits "name <words> value <words>".
func parseSetOption(args []string) (name, value string, err error) {
	if len(args) < 2 || args[0] != "name" {
		return "", "", fmt.Errorf("setoption: expected name")
	}
	rest := args[1:]
	for i, tok := range rest {
		if tok == "value" {
			return strings.Join(rest[:i], " "), strings.Join(rest[i+1:], " "), nil
		}
	}
	return strings.Join(rest, " "), "", nil
}

func formatInfo(score, candidates int, pv string) string {
	return fmt.Sprintf("info depth 1 score cp %d nodes %d pv %s", score, candidates, pv)
}
