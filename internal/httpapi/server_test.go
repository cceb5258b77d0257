package httpapi

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net"
	"testing"
	"time"

	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/botclient"
	"github.com/park285/cheese-heuristic-bot/internal/decisionlog"
	"github.com/park285/cheese-heuristic-bot/internal/msgcat"
	"github.com/park285/cheese-heuristic-bot/internal/render"
	svc "github.com/park285/cheese-heuristic-bot/internal/service/chess"
	"github.com/park285/cheese-heuristic-bot/internal/sessionstore"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	catalog, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat.New: %v", err)
	}
	seed := int64(3)
	games, err := svc.NewService(
		sessionstore.NewMemoryStore(time.Hour),
		decisionlog.NewMemoryRepository(),
		catalog,
		render.NewRendererSize(16),
		svc.Config{DefaultPreset: "balanced", Engine: corechess.Options{Seed: &seed}},
		nil,
	)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewServer(games, nil)
}

// startInMemory serves s on an in-memory listener and returns a client for it.
func startInMemory(t *testing.T, s *Server) *botclient.Client {
	t.Helper()
	ln := fasthttputil.NewInmemoryListener()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Serve(ctx, ln)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return botclient.NewClient("http://bot.test",
		botclient.WithRetry(1),
		botclient.WithDialer(func(string) (net.Conn, error) { return ln.Dial() }),
	)
}

func do(s *Server, method, uri, body string) *fasthttp.RequestCtx {
	var rc fasthttp.RequestCtx
	rc.Request.Header.SetMethod(method)
	rc.Request.SetRequestURI(uri)
	if body != "" {
		rc.Request.SetBodyString(body)
	}
	s.Handler(&rc)
	return &rc
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	rc := do(s, fasthttp.MethodGet, "/healthz", "")
	if rc.Response.StatusCode() != fasthttp.StatusOK || string(rc.Response.Body()) != "ok" {
		t.Fatalf("healthz = %d %q", rc.Response.StatusCode(), rc.Response.Body())
	}
}

func TestStatusMapping(t *testing.T) {
	s := newTestServer(t)
	cases := []struct {
		name   string
		method string
		uri    string
		body   string
		status int
	}{
		{"empty body", fasthttp.MethodPost, "/v1/move", "", fasthttp.StatusBadRequest},
		{"bad json", fasthttp.MethodPost, "/v1/move", "{", fasthttp.StatusBadRequest},
		{"no legal moves", fasthttp.MethodPost, "/v1/move", `{"fen":"7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"}`, fasthttp.StatusConflict},
		{"illegal history", fasthttp.MethodPost, "/v1/move", `{"moves":["e2e5"]}`, fasthttp.StatusBadRequest},
		{"unknown preset", fasthttp.MethodPost, "/v1/move", `{"preset":"nope"}`, fasthttp.StatusBadRequest},
		{"missing game", fasthttp.MethodGet, "/v1/games/nope", "", fasthttp.StatusNotFound},
		{"bad side", fasthttp.MethodPost, "/v1/games", `{"bot_side":"green"}`, fasthttp.StatusBadRequest},
		{"bad fen render", fasthttp.MethodGet, "/v1/render?fen=xyz", "", fasthttp.StatusBadRequest},
		{"unknown route", fasthttp.MethodGet, "/v2/nothing", "", fasthttp.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rc := do(s, tc.method, tc.uri, tc.body)
			if got := rc.Response.StatusCode(); got != tc.status {
				t.Fatalf("status = %d, want %d (%s)", got, tc.status, rc.Response.Body())
			}
		})
	}
}

func TestClassifyInternal(t *testing.T) {
	status, de := classify(errors.New("boom"))
	if status != fasthttp.StatusInternalServerError || de.Code != chessdto.CodeInternal {
		t.Fatalf("classify = %d %+v", status, de)
	}
}

func TestMoveOverClient(t *testing.T) {
	client := startInMemory(t, newTestServer(t))
	ctx := context.Background()

	if err := client.Health(ctx); err != nil {
		t.Fatalf("Health: %v", err)
	}
	resp, err := client.Move(ctx, chessdto.MoveRequest{
		FEN:     "r1bqkbnr/pppp1ppp/2n5/4p2Q/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 3 3",
		Moves:   []string{"g8f6"},
		Explain: true,
	})
	if err != nil {
		t.Fatalf("Move: %v", err)
	}
	if resp.Move == nil || resp.Move.UCI != "h5f7" || !resp.GameOver {
		t.Fatalf("move = %+v", resp.Move)
	}
	if resp.Move.Explanation == nil || resp.Move.Explanation.Summary == "" {
		t.Fatalf("missing explanation")
	}

	var apiErr *botclient.APIError
	_, err = client.Move(ctx, chessdto.MoveRequest{FEN: "7k/5Q2/6K1/8/8/8/8/8 b - - 0 1"})
	if !errors.As(err, &apiErr) || apiErr.Code != chessdto.CodeNoLegalMoves {
		t.Fatalf("stalemate err = %v", err)
	}
}

func TestGameFlowOverClient(t *testing.T) {
	client := startInMemory(t, newTestServer(t))
	ctx := context.Background()

	started, err := client.StartGame(ctx, chessdto.StartGameRequest{BotSide: "black"})
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if started.Opening != nil || started.Game.BotSide != "black" || started.Game.ToMove != "white" {
		t.Fatalf("started = %+v", started.Game)
	}

	played, err := client.Play(ctx, started.Game.ID, "d4")
	if err != nil {
		t.Fatalf("Play: %v", err)
	}
	if played.PlayerUCI != "d2d4" || played.Reply == nil || len(played.Game.MovesUCI) != 2 {
		t.Fatalf("played = %+v", played)
	}
	if played.Game.ToMove != "white" {
		t.Fatalf("to move = %s", played.Game.ToMove)
	}

	state, err := client.Game(ctx, started.Game.ID)
	if err != nil {
		t.Fatalf("Game: %v", err)
	}
	if state.FEN != played.Reply.FENAfter {
		t.Fatalf("stored FEN %q, reply FEN %q", state.FEN, played.Reply.FENAfter)
	}

	var apiErr *botclient.APIError
	if _, err := client.Play(ctx, started.Game.ID, "Ke3"); !errors.As(err, &apiErr) || apiErr.Code != chessdto.CodeIllegalMove {
		t.Fatalf("illegal move err = %v", err)
	}
}

func TestRenderOverClient(t *testing.T) {
	client := startInMemory(t, newTestServer(t))
	data, err := client.RenderFEN(context.Background(), "8/8/8/4k3/8/8/8/4K2R w K - 0 1")
	if err != nil {
		t.Fatalf("RenderFEN: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}
