package chess

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
)

var ErrUnknownPreset = errors.New("unknown chess preset")

// Preset scales groups of heuristic weights. Percentages are applied to the
// base weights, so 100 leaves a group unchanged.
type Preset struct {
	Name        string
	Tie         heuristic.TieBreak
	Attack      int // checks, mating nets, promotions
	Caution     int // reply penalties, structure and king safety
	Development int // opening terms
	UseBook     bool
	UseVariants bool
}

var DefaultPresets = map[string]Preset{
	"cautious": {
		Tie:         heuristic.TieFirst,
		Attack:      80,
		Caution:     150,
		Development: 100,
		UseBook:     true,
		UseVariants: true,
	},
	"balanced": {
		Tie:         heuristic.TieFirst,
		Attack:      100,
		Caution:     100,
		Development: 100,
		UseBook:     true,
		UseVariants: true,
	},
	"aggressive": {
		Tie:         heuristic.TieRandom,
		Attack:      140,
		Caution:     70,
		Development: 80,
		UseBook:     false,
		UseVariants: true,
	},
}

func GetPreset(name string) (Preset, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	switch key {
	case "", "default":
		key = "balanced"
	case "safe":
		key = "cautious"
	case "sharp":
		key = "aggressive"
	}
	p, ok := DefaultPresets[key]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	p.Name = key
	return p, nil
}

func PresetNames() []string {
	names := make([]string, 0, len(DefaultPresets))
	for name := range DefaultPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ValidatePreset(p Preset) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("preset name required")
	case p.Attack <= 0 || p.Attack > 300:
		return fmt.Errorf("attack %d out of range 1-300", p.Attack)
	case p.Caution <= 0 || p.Caution > 300:
		return fmt.Errorf("caution %d out of range 1-300", p.Caution)
	case p.Development <= 0 || p.Development > 300:
		return fmt.Errorf("development %d out of range 1-300", p.Development)
	case p.Tie != heuristic.TieFirst && p.Tie != heuristic.TieRandom:
		return fmt.Errorf("unknown tie break %d", p.Tie)
	}
	return nil
}

// Apply returns base scaled by the preset.
func (p Preset) Apply(base heuristic.Weights) heuristic.Weights {
	w := base
	for _, v := range []*int{&w.Check, &w.PostureMate, &w.PromotionNext, &w.QueenPromotion, &w.OpponentKingMobility} {
		*v = percent(*v, p.Attack)
	}
	for _, v := range []*int{&w.CheckReply, &w.LoseBothCastling, &w.LoseOneCastling, &w.StackedPawns, &w.OpponentPromotion, &w.Repetition} {
		*v = percent(*v, p.Caution)
	}
	w.ReplyCaptureDivisor = divisor(w.ReplyCaptureDivisor, p.Caution)
	for _, v := range []*int{&w.Development, &w.RepeatDevelopment, &w.EarlyQueen, &w.Castle, &w.OpeningKingStep} {
		*v = percent(*v, p.Development)
	}
	if !p.UseBook {
		w.BookMove = 0
	}
	return w
}

func percent(v, pct int) int { return v * pct / 100 }

// divisor scales a divisor inversely so a higher percentage weighs more.
func divisor(d, pct int) int {
	scaled := d * 100 / pct
	if scaled < 1 {
		return 1
	}
	return scaled
}
