package openingbook

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
)

// Variant names the opening plan a game commits to on its first move.
type Variant uint8

const (
	NoVariant Variant = iota
	KingsPawn
	QueensGambit
	English
	Sicilian
	OpenGame
	KingsIndian
	CaroKann
)

var variantNames = map[Variant]string{
	NoVariant:    "none",
	KingsPawn:    "kings-pawn",
	QueensGambit: "queens-gambit",
	English:      "english",
	Sicilian:     "sicilian",
	OpenGame:     "open-game",
	KingsIndian:  "kings-indian",
	CaroKann:     "caro-kann",
}

func (v Variant) String() string {
	if name, ok := variantNames[v]; ok {
		return name
	}
	return fmt.Sprintf("variant(%d)", uint8(v))
}

func ParseVariant(s string) (Variant, error) {
	token := strings.ToLower(strings.TrimSpace(s))
	for v, name := range variantNames {
		if name == token {
			return v, nil
		}
	}
	return NoVariant, fmt.Errorf("unknown opening variant: %s", s)
}

func (v Variant) MarshalText() ([]byte, error) { return []byte(v.String()), nil }

func (v *Variant) UnmarshalText(b []byte) error {
	parsed, err := ParseVariant(string(b))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Line lists the moves a variant wants on turns 1, 2, ... for one color.
type Line struct {
	Variant     Variant
	Color       board.Color
	Moves       []string
	Probability float64
}

const (
	firstTurnBonus = 60
	bonusStep      = 10
	minBonus       = 20
)

var defaultLines = []Line{
	{Variant: KingsPawn, Color: board.White, Moves: []string{"e2e4", "g1f3", "f1c4", "e1g1", "d2d3"}, Probability: 0.5},
	{Variant: QueensGambit, Color: board.White, Moves: []string{"d2d4", "c2c4", "b1c3", "g1f3", "c1g5"}, Probability: 0.35},
	{Variant: English, Color: board.White, Moves: []string{"c2c4", "g1f3", "g2g3", "f1g2", "e1g1"}, Probability: 0.15},
	{Variant: Sicilian, Color: board.Black, Moves: []string{"c7c5", "d7d6", "c5d4", "g8f6"}, Probability: 0.35},
	{Variant: OpenGame, Color: board.Black, Moves: []string{"e7e5", "b8c6", "g8f6", "f8e7"}, Probability: 0.3},
	{Variant: KingsIndian, Color: board.Black, Moves: []string{"g8f6", "g7g6", "f8g7", "d7d6"}, Probability: 0.2},
	{Variant: CaroKann, Color: board.Black, Moves: []string{"c7c6", "d7d5", "g8f6", "e7e6"}, Probability: 0.15},
}

type entryKey struct {
	variant Variant
	turn    int
	from    board.Square
	to      board.Square
}

// Table maps (variant, turn, from, to) to a score bonus.
type Table struct {
	lines   []Line
	entries map[entryKey]int
}

func DefaultLines() []Line {
	out := make([]Line, len(defaultLines))
	for i, l := range defaultLines {
		out[i] = l
		out[i].Moves = append([]string(nil), l.Moves...)
	}
	return out
}

func DefaultTable() *Table {
	t, err := NewTable(DefaultLines())
	if err != nil {
		panic(fmt.Sprintf("openingbook: default lines: %v", err))
	}
	return t
}

func NewTable(lines []Line) (*Table, error) {
	t := &Table{entries: make(map[entryKey]int)}
	for _, line := range lines {
		if err := validateLine(line); err != nil {
			return nil, err
		}
		for i, mv := range line.Moves {
			from, _ := board.ParseSquare(mv[:2])
			to, _ := board.ParseSquare(mv[2:4])
			bonus := firstTurnBonus - i*bonusStep
			if bonus < minBonus {
				bonus = minBonus
			}
			t.entries[entryKey{variant: line.Variant, turn: i + 1, from: from, to: to}] = bonus
		}
		t.lines = append(t.lines, line)
	}
	return t, nil
}

func validateLine(line Line) error {
	name := line.Variant.String()
	if line.Variant == NoVariant {
		return fmt.Errorf("opening line requires a variant")
	}
	if len(line.Moves) == 0 {
		return fmt.Errorf("opening line %s must define moves", name)
	}
	if line.Probability <= 0 || line.Probability > 1 || math.IsNaN(line.Probability) {
		return fmt.Errorf("opening line %s must have probability in (0,1]", name)
	}
	for i, mv := range line.Moves {
		mv = strings.TrimSpace(mv)
		if len(mv) != 4 {
			return fmt.Errorf("opening line %s has malformed move %q at index %d", name, mv, i)
		}
		if _, err := board.ParseSquare(mv[:2]); err != nil {
			return fmt.Errorf("opening line %s move %d: %w", name, i, err)
		}
		if _, err := board.ParseSquare(mv[2:4]); err != nil {
			return fmt.Errorf("opening line %s move %d: %w", name, i, err)
		}
	}
	return nil
}

// Bonus returns the table bonus for m on the given 1-based turn of variant v.
func (t *Table) Bonus(v Variant, turn int, m board.Move) int {
	if t == nil || v == NoVariant {
		return 0
	}
	return t.entries[entryKey{variant: v, turn: turn, from: m.From, to: m.To}]
}

// Choose picks a variant for color c weighted by line probability.
func (t *Table) Choose(c board.Color, r *rand.Rand) Variant {
	if t == nil {
		return NoVariant
	}
	total := 0.0
	for _, l := range t.lines {
		if l.Color == c {
			total += l.Probability
		}
	}
	if total == 0 {
		return NoVariant
	}
	pick := total / 2
	if r != nil {
		pick = r.Float64() * total
	}
	var last Variant
	for _, l := range t.lines {
		if l.Color != c {
			continue
		}
		last = l.Variant
		if pick < l.Probability {
			return l.Variant
		}
		pick -= l.Probability
	}
	return last
}

func (t *Table) Line(v Variant) (Line, bool) {
	if t == nil {
		return Line{}, false
	}
	for _, l := range t.lines {
		if l.Variant == v {
			return l, true
		}
	}
	return Line{}, false
}
