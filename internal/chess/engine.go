// Package chess wires the heuristic move picker to positions given as FEN
// plus UCI history, sessions, presets and the opening book.
package chess

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/chess/openingbook"
	"github.com/park285/cheese-heuristic-bot/internal/obslog"
)

const (
	defaultTimeBudget = 2 * time.Second
	bookMaxPly        = 16
	explainTerms      = 3
)

type Options struct {
	Preset   string
	Weights  *heuristic.Weights // nil uses heuristic.DefaultWeights
	TieBreak string             // overrides the preset when set
	Budget   time.Duration
	Seed     *int64
	Openings *openingbook.Table // nil uses openingbook.DefaultTable
	Logger   *zap.Logger
}

type Engine struct {
	preset   Preset
	tie      heuristic.TieBreak
	scorer   *heuristic.Scorer
	openings *openingbook.Table
	budget   time.Duration
	logger   *zap.Logger

	randMu sync.Mutex
	rand   *rand.Rand
}

func NewEngine(opts Options) (*Engine, error) {
	preset, err := GetPreset(opts.Preset)
	if err != nil {
		return nil, err
	}
	if err := ValidatePreset(preset); err != nil {
		return nil, err
	}
	tie := preset.Tie
	if opts.TieBreak != "" {
		if tie, err = heuristic.ParseTieBreak(opts.TieBreak); err != nil {
			return nil, err
		}
	}
	base := heuristic.DefaultWeights()
	if opts.Weights != nil {
		base = *opts.Weights
	}
	openings := opts.Openings
	if openings == nil {
		openings = openingbook.DefaultTable()
	}
	scorer, err := heuristic.NewScorer(preset.Apply(base), openings)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", preset.Name, err)
	}
	budget := opts.Budget
	if budget <= 0 {
		budget = defaultTimeBudget
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	return &Engine{
		preset:   preset,
		tie:      tie,
		scorer:   scorer,
		openings: openings,
		budget:   budget,
		logger:   obslog.Or(opts.Logger),
		rand:     rand.New(rand.NewSource(seed)),
	}, nil
}

func (e *Engine) Preset() Preset { return e.preset }

func (e *Engine) Weights() heuristic.Weights { return e.scorer.Weights }

func (e *Engine) random() *rand.Rand {
	e.randMu.Lock()
	seed := e.rand.Int63()
	e.randMu.Unlock()
	return rand.New(rand.NewSource(seed))
}

func (e *Engine) SetRandomSeed(seed int64) {
	e.randMu.Lock()
	e.rand = rand.New(rand.NewSource(seed))
	e.randMu.Unlock()
}

// NewSession starts a session for side, committing to an opening variant when
// the preset uses them.
func (e *Engine) NewSession(side board.Color) *heuristic.Session {
	variant := openingbook.NoVariant
	if e.preset.UseVariants {
		variant = e.openings.Choose(side, e.random())
	}
	return heuristic.NewSession(side, variant)
}

type MoveRequest struct {
	FEN     string
	Moves   []string
	Session *heuristic.Session // nil starts a fresh session for the side to move
	Budget  time.Duration
}

type MoveResult struct {
	Move        board.Move
	UCI         string
	SAN         string
	Outcome     heuristic.Outcome
	Trace       *heuristic.Trace
	Candidates  int
	Ties        int
	BookMove    string
	OpeningCode string
	OpeningName string
	FENBefore   string
	FENAfter    string
	GameOver    bool
	Session     *heuristic.Session
	Elapsed     time.Duration
	Overrun     bool
}

// SelectMove picks one move for the side to move and records it in the
// session. With no legal moves it returns board.NoMove and
// heuristic.ErrNoLegalMoves.
func (e *Engine) SelectMove(ctx context.Context, req MoveRequest) (MoveResult, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return MoveResult{Move: board.NoMove}, err
	}

	g, err := board.FromHistory(req.FEN, req.Moves)
	if err != nil {
		return MoveResult{Move: board.NoMove}, err
	}
	sess := req.Session
	if sess == nil {
		sess = e.NewSession(g.SideToMove())
		sess.Turn = g.FullmoveNumber()
	}
	sess.Observe(g)

	res := MoveResult{Move: board.NoMove, FENBefore: g.FEN(), Session: sess}
	log := e.logger.With(zap.String("game_id", sess.GameID), zap.Int("turn", sess.Turn), zap.Stringer("side", sess.Side))

	if e.preset.UseBook && len(req.Moves) < bookMaxPly {
		book, err := openingbook.Lookup(req.FEN, req.Moves)
		if err != nil {
			log.Warn("opening_book_lookup_failed", zap.Error(err))
		}
		res.BookMove = book.Move
	}
	if code, title, err := openingbook.Label(req.FEN, req.Moves); err != nil {
		log.Debug("opening_label_failed", zap.Error(err))
	} else {
		res.OpeningCode, res.OpeningName = code, title
	}

	sel, err := e.scorer.Select(g, sess, heuristic.Policy{
		Tie:      e.tie,
		Rand:     e.random(),
		BookMove: res.BookMove,
	})
	if err != nil {
		res.Elapsed = time.Since(start)
		if errors.Is(err, heuristic.ErrNoLegalMoves) {
			res.GameOver = true
			log.Info("bot_no_legal_moves", zap.Bool("checkmated", g.IsInCheckmate()))
			return res, err
		}
		log.Error("bot_move_failed", zap.Error(err))
		return res, err
	}

	res.Move = sel.Move
	res.UCI = sel.Move.UCI()
	res.SAN = g.SAN(sel.Move)
	res.Outcome = sel.Outcome
	res.Trace = sel.Trace
	res.Candidates = len(sel.Ranked)
	res.Ties = sel.Ties

	if err := g.Play(sel.Move); err != nil {
		return res, fmt.Errorf("play selected %s: %w", res.UCI, err)
	}
	sess.Record(sel.Move, g)
	res.FENAfter = g.FEN()
	res.GameOver = g.IsInCheckmate() || g.IsDraw()

	res.Elapsed = time.Since(start)
	budget := req.Budget
	if budget <= 0 {
		budget = e.budget
	}
	if res.Elapsed > budget {
		res.Overrun = true
		log.Warn("bot_turn_overrun", zap.Duration("elapsed", res.Elapsed), zap.Duration("budget", budget))
	}

	fields := []zap.Field{
		zap.String("move", res.UCI),
		zap.String("san", res.SAN),
		zap.Stringer("outcome", res.Outcome),
		zap.Int("candidates", res.Candidates),
		zap.Int("ties", res.Ties),
		zap.Duration("elapsed", res.Elapsed),
		zap.Int("material_deficit", sess.Deficit()),
	}
	if res.OpeningCode != "" {
		fields = append(fields, zap.String("eco", res.OpeningCode), zap.String("opening", res.OpeningName))
	}
	if res.BookMove != "" {
		fields = append(fields, zap.String("book_move", res.BookMove))
	}
	for _, term := range res.Trace.Top(explainTerms) {
		fields = append(fields, zap.Int("term_"+term.Name, term.Value))
	}
	log.Info("bot_move_selected", fields...)
	return res, nil
}
