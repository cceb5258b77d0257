// Package chess runs stored games between the bot and an opponent.
package chess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/decisionlog"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
	"github.com/park285/cheese-heuristic-bot/internal/msgcat"
	"github.com/park285/cheese-heuristic-bot/internal/obslog"
	"github.com/park285/cheese-heuristic-bot/internal/render"
	"github.com/park285/cheese-heuristic-bot/internal/sessionstore"
)

var (
	ErrGameFinished   = errors.New("game already finished")
	ErrNotPlayersTurn = errors.New("not the opponent's turn")
)

const (
	ResultWhiteWins = "1-0"
	ResultBlackWins = "0-1"
	ResultDraw      = "1/2-1/2"

	decisionTerms      = 5
	maxDecisionHistory = 100
)

type Config struct {
	DefaultPreset string
	// Engine carries the options shared by every preset's engine.
	Engine corechess.Options
}

type Service struct {
	cfg       Config
	store     sessionstore.Store
	decisions decisionlog.Repository
	catalog   *msgcat.Catalog
	renderer  render.Renderer
	logger    *zap.Logger

	enginesMu sync.Mutex
	engines   map[string]*corechess.Engine
}

func NewService(store sessionstore.Store, decisions decisionlog.Repository, catalog *msgcat.Catalog, renderer render.Renderer, cfg Config, logger *zap.Logger) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is required")
	}
	if decisions == nil {
		decisions = decisionlog.NewMemoryRepository()
	}
	if renderer == nil {
		renderer = render.NewRenderer()
	}
	logger = obslog.Or(logger)
	cfg.Engine.Logger = logger
	s := &Service{
		cfg:       cfg,
		store:     store,
		decisions: decisions,
		catalog:   catalog,
		renderer:  renderer,
		logger:    logger,
		engines:   make(map[string]*corechess.Engine),
	}
	p, err := s.engine(cfg.DefaultPreset)
	if err != nil {
		return nil, fmt.Errorf("default preset validation failed: %w", err)
	}
	s.cfg.DefaultPreset = p.Preset().Name
	return s, nil
}

// engine returns the shared engine for a preset, building it on first use.
func (s *Service) engine(preset string) (*corechess.Engine, error) {
	p, err := corechess.GetPreset(preset)
	if err != nil {
		return nil, err
	}
	s.enginesMu.Lock()
	defer s.enginesMu.Unlock()
	if e, ok := s.engines[p.Name]; ok {
		return e, nil
	}
	opts := s.cfg.Engine
	opts.Preset = p.Name
	e, err := corechess.NewEngine(opts)
	if err != nil {
		return nil, err
	}
	s.engines[p.Name] = e
	return e, nil
}

func (s *Service) presetOrDefault(preset string) string {
	if p := strings.TrimSpace(preset); p != "" {
		return p
	}
	return s.cfg.DefaultPreset
}

// Pick selects one move for a position without touching stored games.
func (s *Service) Pick(ctx context.Context, preset string, req corechess.MoveRequest) (corechess.MoveResult, error) {
	e, err := s.engine(s.presetOrDefault(preset))
	if err != nil {
		return corechess.MoveResult{Move: board.NoMove}, err
	}
	return e.SelectMove(ctx, req)
}

// Suggest picks a move for whichever side is to move in a stored game. The
// game and its session are left unchanged.
func (s *Service) Suggest(ctx context.Context, id string, budget time.Duration) (corechess.MoveResult, *domain.BotGame, error) {
	game, err := s.store.Load(ctx, id)
	if err != nil {
		return corechess.MoveResult{Move: board.NoMove}, nil, err
	}
	if game.Result != "" {
		return corechess.MoveResult{Move: board.NoMove}, game, ErrGameFinished
	}
	res, err := s.Pick(ctx, game.Preset, corechess.MoveRequest{
		FEN:    game.StartFEN,
		Moves:  game.Moves,
		Budget: budget,
	})
	return res, game, err
}

// StartGame stores a new game. When the bot plays the side to move it makes
// its first move immediately and the result is returned.
func (s *Service) StartGame(ctx context.Context, botSide board.Color, preset, startFEN string) (*domain.BotGame, *corechess.MoveResult, error) {
	e, err := s.engine(s.presetOrDefault(preset))
	if err != nil {
		return nil, nil, err
	}
	if strings.TrimSpace(startFEN) == "" {
		startFEN = board.StartFEN
	}
	g, err := board.FromFEN(startFEN)
	if err != nil {
		return nil, nil, err
	}

	sess := e.NewSession(botSide)
	sess.Turn = g.FullmoveNumber()
	game := &domain.BotGame{
		ID:       sess.GameID,
		Preset:   e.Preset().Name,
		StartFEN: g.FEN(),
		Moves:    []string{},
		MovesSAN: []string{},
		Session:  sess,
	}

	var reply *corechess.MoveResult
	if g.SideToMove() == botSide {
		res, err := s.botMove(ctx, e, game)
		if err != nil && !errors.Is(err, heuristic.ErrNoLegalMoves) {
			return nil, nil, err
		}
		reply = &res
	}
	if err := s.store.Save(ctx, game); err != nil {
		return nil, nil, err
	}
	s.logger.Info("bot_game_started",
		zap.String("game_id", game.ID),
		zap.String("preset", game.Preset),
		zap.Stringer("bot_side", botSide),
		zap.Stringer("variant", sess.Variant),
	)
	return game, reply, nil
}

func (s *Service) Status(ctx context.Context, id string) (*domain.BotGame, error) {
	return s.store.Load(ctx, id)
}

type PlaySummary struct {
	PlayerUCI string
	PlayerSAN string
	Reply     *corechess.MoveResult
	Game      *domain.BotGame
}

// Play applies the opponent's move and lets the bot answer.
func (s *Service) Play(ctx context.Context, id, moveText string) (*PlaySummary, error) {
	game, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.Result != "" {
		return nil, ErrGameFinished
	}
	e, err := s.engine(game.Preset)
	if err != nil {
		return nil, err
	}
	g, err := board.FromHistory(game.StartFEN, game.Moves)
	if err != nil {
		return nil, fmt.Errorf("replay game %s: %w", id, err)
	}
	if g.SideToMove() == game.Session.Side {
		return nil, ErrNotPlayersTurn
	}

	m, err := g.ParseMove(moveText)
	if err != nil {
		return nil, err
	}
	summary := &PlaySummary{PlayerUCI: m.UCI(), PlayerSAN: g.SAN(m), Game: game}
	if err := g.Play(m); err != nil {
		return nil, err
	}
	game.Moves = append(game.Moves, summary.PlayerUCI)
	game.MovesSAN = append(game.MovesSAN, summary.PlayerSAN)

	if game.Result = resultOf(g); game.Result == "" {
		res, err := s.botMove(ctx, e, game)
		if err != nil && !errors.Is(err, heuristic.ErrNoLegalMoves) {
			return nil, err
		}
		summary.Reply = &res
	}
	if err := s.store.Save(ctx, game); err != nil {
		return nil, err
	}
	if game.Result != "" {
		s.logger.Info("bot_game_finished", zap.String("game_id", game.ID), zap.String("result", game.Result))
	}
	return summary, nil
}

// Resign ends the game in the bot's favour.
func (s *Service) Resign(ctx context.Context, id string) (*domain.BotGame, error) {
	game, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	if game.Result != "" {
		return nil, ErrGameFinished
	}
	game.Result = ResultWhiteWins
	if game.Session.Side == board.Black {
		game.Result = ResultBlackWins
	}
	if err := s.store.Save(ctx, game); err != nil {
		return nil, err
	}
	s.logger.Info("bot_game_resigned", zap.String("game_id", game.ID))
	return game, nil
}

func (s *Service) Decisions(ctx context.Context, id string, limit int) ([]*domain.Decision, error) {
	if limit <= 0 || limit > maxDecisionHistory {
		limit = maxDecisionHistory
	}
	return s.decisions.RecentDecisions(ctx, id, limit)
}

// Explain renders the top terms of a selected move; it is empty without a catalog.
func (s *Service) Explain(res corechess.MoveResult) (msgcat.Explanation, error) {
	if s.catalog == nil || res.Move.IsNone() {
		return msgcat.Explanation{}, nil
	}
	return s.catalog.Explain(res.SAN, res.Outcome, res.Trace, decisionTerms)
}

// RenderGame draws the current position with the last move highlighted.
func (s *Service) RenderGame(ctx context.Context, game *domain.BotGame) ([]byte, error) {
	g, err := board.FromHistory(game.StartFEN, game.Moves)
	if err != nil {
		return nil, err
	}
	opts := render.Options{Flip: game.Session != nil && game.Session.Side == board.Black}
	if len(game.Moves) > 0 {
		if h, ok := lastMove(game.StartFEN, game.Moves); ok {
			opts.Highlight = &h
		}
	}
	return s.renderer.RenderPNG(ctx, g, opts)
}

// RenderFEN draws a standalone position.
func (s *Service) RenderFEN(ctx context.Context, fen string, flip bool) ([]byte, error) {
	g, err := board.FromFEN(fen)
	if err != nil {
		return nil, err
	}
	return s.renderer.RenderPNG(ctx, g, render.Options{Flip: flip})
}

func (s *Service) Close() error {
	return errors.Join(s.store.Close(), s.decisions.Close())
}

// botMove plays the bot's move in game and logs the decision.
func (s *Service) botMove(ctx context.Context, e *corechess.Engine, game *domain.BotGame) (corechess.MoveResult, error) {
	res, err := e.SelectMove(ctx, corechess.MoveRequest{
		FEN:     game.StartFEN,
		Moves:   game.Moves,
		Session: game.Session,
	})
	if err != nil {
		if errors.Is(err, heuristic.ErrNoLegalMoves) {
			if g, rerr := board.FromHistory(game.StartFEN, game.Moves); rerr == nil {
				game.Result = resultOf(g)
			}
		}
		return res, err
	}
	game.Moves = append(game.Moves, res.UCI)
	game.MovesSAN = append(game.MovesSAN, res.SAN)
	if res.GameOver {
		if g, err := board.FromHistory(game.StartFEN, game.Moves); err == nil {
			game.Result = resultOf(g)
		}
	}

	d := &domain.Decision{
		GameID:    game.ID,
		Ply:       len(game.Moves),
		FENBefore: res.FENBefore,
		UCI:       res.UCI,
		SAN:       res.SAN,
		Outcome:   res.Outcome.String(),
		Score:     res.Trace.Total(),
		Terms:     res.Trace.Top(decisionTerms),
		Elapsed:   res.Elapsed,
	}
	if err := s.decisions.SaveDecision(ctx, d); err != nil {
		s.logger.Warn("decision_log_failed", zap.String("game_id", game.ID), zap.Error(err))
	}
	return res, nil
}

// resultOf scores a finished position; it is empty while play continues.
func resultOf(g *board.Game) string {
	switch {
	case g.IsInCheckmate():
		if g.SideToMove() == board.White {
			return ResultBlackWins
		}
		return ResultWhiteWins
	case g.IsDraw():
		return ResultDraw
	}
	return ""
}

func lastMove(startFEN string, moves []string) (render.Highlight, bool) {
	n := len(moves)
	g, err := board.FromHistory(startFEN, moves[:n-1])
	if err != nil {
		return render.Highlight{}, false
	}
	m, ok := g.FindMove(moves[n-1])
	if !ok {
		return render.Highlight{}, false
	}
	return render.Highlight{From: m.From, To: m.To, Mover: g.SideToMove()}, true
}

