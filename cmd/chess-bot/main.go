package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/park285/cheese-heuristic-bot/internal/adapter/chesspresenter"
	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/chess/uci"
	"github.com/park285/cheese-heuristic-bot/internal/chessbuilder"
	appcfg "github.com/park285/cheese-heuristic-bot/internal/config"
	"github.com/park285/cheese-heuristic-bot/internal/httpapi"
	"github.com/park285/cheese-heuristic-bot/internal/obslog"
	"github.com/park285/cheese-heuristic-bot/internal/render"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

const usage = `usage: chess-bot <command> [flags]

commands:
  serve     run the HTTP API
  pick      choose one move for a position
  selfplay  let two presets play each other
  uci       speak UCI on stdin/stdout`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cmd, args := os.Args[1], os.Args[2:]

	logOpts := obslog.OptionsFromEnv()
	logOpts.Stderr = cmd != "serve"
	logger, err := obslog.New(logOpts)
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	obslog.Set(logger)
	defer func() { _ = logger.Sync() }()

	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case "serve":
		err = runServe(ctx, cfg, args)
	case "pick":
		err = runPick(ctx, cfg, args)
	case "selfplay":
		err = runSelfplay(ctx, cfg, args)
	case "uci":
		err = runUCI(ctx, cfg, args)
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", cmd, usage)
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

func runServe(ctx context.Context, cfg *appcfg.AppConfig, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.HTTPAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}
	logger := obslog.L()
	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("shutdown_close_failed", zap.Error(err))
		}
	}()
	return httpapi.NewServer(deps.Service, logger).ListenAndServe(ctx, *addr)
}

func runPick(ctx context.Context, cfg *appcfg.AppConfig, args []string) error {
	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	fen := fs.String("fen", "", "start position (default: initial position)")
	moves := fs.String("moves", "", "space separated UCI moves played from -fen")
	preset := fs.String("preset", cfg.BotPreset, "preset name")
	asJSON := fs.Bool("json", false, "print the result as JSON")
	verbose := fs.Bool("v", false, "list every scoring term")
	pngPath := fs.String("png", "", "write the position after the move to this file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	deps, err := chessbuilder.New(ctx, memoryOnly(cfg), obslog.L())
	if err != nil {
		return err
	}
	defer deps.Close()

	res, err := deps.Service.Pick(ctx, *preset, corechess.MoveRequest{FEN: *fen, Moves: strings.Fields(*moves)})
	if errors.Is(err, heuristic.ErrNoLegalMoves) {
		fmt.Println("no legal moves")
		return nil
	}
	if err != nil {
		return err
	}

	move := chesspresenter.ToDTOMove(&res)
	if expl, err := deps.Service.Explain(res); err == nil {
		move.Explanation = chesspresenter.ToDTOExplanation(expl)
	}
	var png []byte
	if *pngPath != "" {
		if png, err = deps.Service.RenderFEN(ctx, res.FENAfter, res.Session.Side == board.Black); err != nil {
			return err
		}
	}
	if *asJSON {
		out, err := json.MarshalIndent(chessdto.MoveResponse{Move: move, GameOver: res.GameOver}, "", "  ")
		if err != nil {
			return err
		}
		return chesspresenter.NewPresenter(os.Stdout, nil).Board(string(out), png, *pngPath)
	}
	return chesspresenter.NewPresenter(os.Stdout, nil).Board(chesspresenter.NewFormatter(*verbose).Move(move), png, *pngPath)
}

func runUCI(ctx context.Context, cfg *appcfg.AppConfig, args []string) error {
	fs := flag.NewFlagSet("uci", flag.ExitOnError)
	preset := fs.String("preset", cfg.BotPreset, "initial preset")
	if err := fs.Parse(args); err != nil {
		return err
	}
	deps, err := chessbuilder.New(ctx, memoryOnly(cfg), obslog.L())
	if err != nil {
		return err
	}
	defer deps.Close()
	err = uci.NewServer(deps.Service, *preset, obslog.L()).Run(ctx, os.Stdin, os.Stdout)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// memoryOnly copies cfg without external stores for one-shot commands.
func memoryOnly(cfg *appcfg.AppConfig) *appcfg.AppConfig {
	c := *cfg
	c.SessionBackend = appcfg.BackendMemory
	c.DatabaseURL = ""
	return &c
}

func runSelfplay(ctx context.Context, cfg *appcfg.AppConfig, args []string) error {
	fs := flag.NewFlagSet("selfplay", flag.ExitOnError)
	white := fs.String("white", cfg.BotPreset, "preset playing white")
	black := fs.String("black", cfg.BotPreset, "preset playing black")
	fen := fs.String("fen", board.StartFEN, "start position")
	maxPlies := fs.Int("max-plies", 300, "stop after this many plies")
	pngPath := fs.String("png", "", "write the final position to this file")
	verbose := fs.Bool("v", false, "print every move")
	if err := fs.Parse(args); err != nil {
		return err
	}

	logger := obslog.L()
	base, err := chessbuilder.EngineOptions(cfg, logger)
	if err != nil {
		return err
	}
	engines := [2]*corechess.Engine{}
	for i, preset := range []string{*white, *black} {
		opts := base
		opts.Preset = preset
		if engines[i], err = corechess.NewEngine(opts); err != nil {
			return fmt.Errorf("%s engine: %w", board.Color(i), err)
		}
	}

	start, err := board.FromFEN(*fen)
	if err != nil {
		return err
	}
	sessions := [2]*heuristic.Session{
		engines[board.White].NewSession(board.White),
		engines[board.Black].NewSession(board.Black),
	}
	for _, s := range sessions {
		s.Turn = start.FullmoveNumber()
	}

	formatter := chesspresenter.NewFormatter(false)
	var played, san []string
	began := time.Now()
	for ply := 0; ply < *maxPlies; ply++ {
		g, err := board.FromHistory(*fen, played)
		if err != nil {
			return err
		}
		side := g.SideToMove()
		res, err := engines[side].SelectMove(ctx, corechess.MoveRequest{FEN: *fen, Moves: played, Session: sessions[side]})
		if errors.Is(err, heuristic.ErrNoLegalMoves) {
			break
		}
		if err != nil {
			return err
		}
		played = append(played, res.UCI)
		san = append(san, res.SAN)
		if *verbose {
			fmt.Printf("%3d %-5s %s\n", ply+1, side, formatter.Move(chesspresenter.ToDTOMove(&res)))
		}
		if res.GameOver {
			break
		}
	}

	final, err := board.FromHistory(*fen, played)
	if err != nil {
		return err
	}
	result := "*"
	switch {
	case final.IsInCheckmate() && final.SideToMove() == board.White:
		result = "0-1"
	case final.IsInCheckmate():
		result = "1-0"
	case final.IsDraw():
		result = "1/2-1/2"
	}
	logger.Info("selfplay_finished",
		zap.String("white", *white),
		zap.String("black", *black),
		zap.Int("plies", len(played)),
		zap.String("result", result),
		zap.Duration("elapsed", time.Since(began)),
	)

	text := fmt.Sprintf("%s vs %s: %s after %d plies\n%s\n%s",
		*white, *black, result, len(played),
		formatter.Moves(san, start.SideToMove() == board.Black),
		final.FEN())
	var png []byte
	if *pngPath != "" {
		if png, err = render.NewRenderer().RenderPNG(ctx, final, render.Options{}); err != nil {
			return err
		}
	}
	return chesspresenter.NewPresenter(os.Stdout, nil).Board(text, png, *pngPath)
}
