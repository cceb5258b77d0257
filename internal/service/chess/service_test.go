package chess

import (
	"context"
	"errors"
	"testing"
	"time"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/decisionlog"
	"github.com/park285/cheese-heuristic-bot/internal/msgcat"
	"github.com/park285/cheese-heuristic-bot/internal/render"
	"github.com/park285/cheese-heuristic-bot/internal/sessionstore"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	seed := int64(7)
	svc, err := NewService(
		sessionstore.NewMemoryStore(time.Hour),
		decisionlog.NewMemoryRepository(),
		catalog,
		render.NewRendererSize(16),
		Config{DefaultPreset: "balanced", Engine: corechess.Options{Seed: &seed}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestStartGameBotWhiteMovesFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, reply, err := svc.StartGame(ctx, board.White, "", "")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if reply == nil || reply.UCI == "" {
		t.Fatalf("bot playing white did not open")
	}
	if len(game.Moves) != 1 || game.Moves[0] != reply.UCI {
		t.Fatalf("moves = %v", game.Moves)
	}
	stored, err := svc.Status(ctx, game.ID)
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if stored.Preset != "balanced" || len(stored.MovesSAN) != 1 {
		t.Fatalf("stored game = %+v", stored)
	}
	decisions, err := svc.Decisions(ctx, game.ID, 0)
	if err != nil || len(decisions) != 1 || decisions[0].Ply != 1 {
		t.Fatalf("decisions = %+v, %v", decisions, err)
	}
}

func TestPlayBotReplies(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, reply, err := svc.StartGame(ctx, board.Black, "cautious", "")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if reply != nil {
		t.Fatalf("bot playing black moved first")
	}

	summary, err := svc.Play(ctx, game.ID, "e4")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if summary.PlayerUCI != "e2e4" || summary.PlayerSAN != "e4" {
		t.Fatalf("player move = %s/%s", summary.PlayerUCI, summary.PlayerSAN)
	}
	if summary.Reply == nil || summary.Reply.UCI == "" {
		t.Fatalf("bot did not reply")
	}
	if got := summary.Game.Moves; len(got) != 2 {
		t.Fatalf("moves = %v", got)
	}
	if summary.Game.Session.Turn != 2 {
		t.Fatalf("session turn = %d", summary.Game.Session.Turn)
	}

	if _, err := svc.Play(ctx, game.ID, "e4e5"); !errors.Is(err, board.ErrIllegalMove) {
		t.Fatalf("illegal move err = %v", err)
	}
	if _, err := svc.Play(ctx, "missing", "e4"); !errors.Is(err, sessionstore.ErrSessionNotFound) {
		t.Fatalf("missing game err = %v", err)
	}
}

func TestPlayMateFinishesGame(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, _, err := svc.StartGame(ctx, board.Black, "", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	summary, err := svc.Play(ctx, game.ID, "a1a8")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if summary.Reply != nil || summary.Game.Result != ResultWhiteWins {
		t.Fatalf("result = %q reply = %v", summary.Game.Result, summary.Reply)
	}
	if _, err := svc.Play(ctx, game.ID, "Kg2"); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("play after mate err = %v", err)
	}
}

func TestBotDeliversMateAndResult(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, reply, err := svc.StartGame(ctx, board.White, "", "6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if reply.UCI != "a1a8" || game.Result != ResultWhiteWins {
		t.Fatalf("reply = %s result = %q", reply.UCI, game.Result)
	}
	expl, err := svc.Explain(*reply)
	if err != nil || expl.Summary == "" {
		t.Fatalf("Explain = %+v, %v", expl, err)
	}
}

func TestResign(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, _, err := svc.StartGame(ctx, board.Black, "", "")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	game, err = svc.Resign(ctx, game.ID)
	if err != nil || game.Result != ResultBlackWins {
		t.Fatalf("Resign = %+v, %v", game, err)
	}
	if _, err := svc.Resign(ctx, game.ID); !errors.Is(err, ErrGameFinished) {
		t.Fatalf("second resign err = %v", err)
	}
}

func TestNotPlayersTurn(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, _, err := svc.StartGame(ctx, board.Black, "", "")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	game.Moves = append(game.Moves, "e2e4")
	if err := svc.store.Save(ctx, game); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := svc.Play(ctx, game.ID, "e7e5"); !errors.Is(err, ErrNotPlayersTurn) {
		t.Fatalf("err = %v", err)
	}
}

func TestRenderGame(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	game, _, err := svc.StartGame(ctx, board.White, "", "")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	png, err := svc.RenderGame(ctx, game)
	if err != nil || len(png) == 0 {
		t.Fatalf("RenderGame: %d bytes, %v", len(png), err)
	}
	if _, err := svc.RenderFEN(ctx, "not a fen", false); err == nil {
		t.Fatalf("expected FEN error")
	}
}

func TestUnknownPreset(t *testing.T) {
	svc := newTestService(t)
	if _, _, err := svc.StartGame(context.Background(), board.White, "grandmaster", ""); !errors.Is(err, corechess.ErrUnknownPreset) {
		t.Fatalf("err = %v", err)
	}
}
