// Package httpapi exposes the bot over HTTP with fasthttp.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/park285/cheese-heuristic-bot/internal/adapter/chesspresenter"
	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
	"github.com/park285/cheese-heuristic-bot/internal/obslog"
	svc "github.com/park285/cheese-heuristic-bot/internal/service/chess"
	"github.com/park285/cheese-heuristic-bot/internal/sessionstore"
	"github.com/park285/cheese-heuristic-bot/pkg/chessdto"
)

const (
	gamesPrefix     = "/v1/games/"
	maxBodyBytes    = 64 << 10
	requestTimeout  = 30 * time.Second
	contentTypeJSON = "application/json"
)

type Server struct {
	games  *svc.Service
	logger *zap.Logger
	srv    *fasthttp.Server
}

func NewServer(games *svc.Service, logger *zap.Logger) *Server {
	s := &Server{games: games, logger: obslog.Or(logger)}
	s.srv = &fasthttp.Server{
		Handler:            s.Handler,
		Name:               "cheese-heuristic-bot",
		ReadTimeout:        10 * time.Second,
		WriteTimeout:       requestTimeout,
		MaxRequestBodySize: maxBodyBytes,
	}
	return s
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(ln) }()
	select {
	case <-ctx.Done():
		if err := s.srv.ShutdownWithContext(context.Background()); err != nil {
			return err
		}
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.logger.Info("http_listening", zap.String("addr", ln.Addr().String()))
	return s.Serve(ctx, ln)
}

// Handler routes requests.
func (s *Server) Handler(rc *fasthttp.RequestCtx) {
	start := time.Now()
	path := string(rc.Path())
	method := string(rc.Method())

	switch {
	case path == "/healthz":
		rc.SetStatusCode(fasthttp.StatusOK)
		rc.SetBodyString("ok")
	case path == "/v1/move" && method == fasthttp.MethodPost:
		s.handleMove(rc)
	case path == "/v1/games" && method == fasthttp.MethodPost:
		s.handleStartGame(rc)
	case path == "/v1/render" && method == fasthttp.MethodGet:
		s.handleRender(rc)
	case strings.HasPrefix(path, gamesPrefix):
		s.routeGame(rc, method, strings.Split(strings.TrimPrefix(path, gamesPrefix), "/"))
	default:
		writeError(rc, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "no route for " + method + " " + path})
	}

	s.logger.Debug("http_request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", rc.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) routeGame(rc *fasthttp.RequestCtx, method string, parts []string) {
	id := parts[0]
	action := ""
	if len(parts) > 1 {
		action = parts[1]
	}
	switch {
	case id == "" || len(parts) > 2:
		writeError(rc, fasthttp.StatusNotFound, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "bad game path"})
	case action == "" && method == fasthttp.MethodGet:
		s.handleGame(rc, id)
	case action == "play" && method == fasthttp.MethodPost:
		s.handlePlay(rc, id)
	case action == "resign" && method == fasthttp.MethodPost:
		s.handleResign(rc, id)
	case action == "decisions" && method == fasthttp.MethodGet:
		s.handleDecisions(rc, id)
	case action == "board.png" && method == fasthttp.MethodGet:
		s.handleGameBoard(rc, id)
	default:
		writeError(rc, fasthttp.StatusMethodNotAllowed, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "unsupported method"})
	}
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

func (s *Server) handleMove(rc *fasthttp.RequestCtx) {
	var req chessdto.MoveRequest
	if !decodeBody(rc, &req) {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()
	budget := time.Duration(req.BudgetMillis) * time.Millisecond

	var (
		res  corechess.MoveResult
		game *domain.BotGame
		err  error
	)
	if strings.TrimSpace(req.GameID) != "" {
		res, game, err = s.games.Suggest(ctx, req.GameID, budget)
	} else {
		res, err = s.games.Pick(ctx, req.Preset, corechess.MoveRequest{FEN: req.FEN, Moves: req.Moves, Budget: budget})
	}
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusOK, chessdto.MoveResponse{
		Move:     s.botMove(&res, req.Explain),
		Game:     chesspresenter.ToDTOGame(game),
		GameOver: res.GameOver,
	})
}

func (s *Server) handleStartGame(rc *fasthttp.RequestCtx) {
	var req chessdto.StartGameRequest
	if !decodeBody(rc, &req) {
		return
	}
	side, err := board.ParseColor(req.BotSide)
	if err != nil {
		writeError(rc, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: err.Error()})
		return
	}
	ctx, cancel := requestContext()
	defer cancel()
	game, opening, err := s.games.StartGame(ctx, side, req.Preset, req.StartFEN)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusCreated, chessdto.StartGameResponse{
		Game:    chesspresenter.ToDTOGame(game),
		Opening: s.botMove(opening, false),
	})
}

func (s *Server) handleGame(rc *fasthttp.RequestCtx, id string) {
	ctx, cancel := requestContext()
	defer cancel()
	game, err := s.games.Status(ctx, id)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusOK, chesspresenter.ToDTOGame(game))
}

func (s *Server) handlePlay(rc *fasthttp.RequestCtx, id string) {
	var req chessdto.PlayRequest
	if !decodeBody(rc, &req) {
		return
	}
	ctx, cancel := requestContext()
	defer cancel()
	summary, err := s.games.Play(ctx, id, req.Move)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusOK, chessdto.PlayResponse{
		PlayerUCI: summary.PlayerUCI,
		PlayerSAN: summary.PlayerSAN,
		Reply:     s.botMove(summary.Reply, true),
		Game:      chesspresenter.ToDTOGame(summary.Game),
	})
}

func (s *Server) handleResign(rc *fasthttp.RequestCtx, id string) {
	ctx, cancel := requestContext()
	defer cancel()
	game, err := s.games.Resign(ctx, id)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusOK, chesspresenter.ToDTOGame(game))
}

func (s *Server) handleDecisions(rc *fasthttp.RequestCtx, id string) {
	ctx, cancel := requestContext()
	defer cancel()
	limit := rc.QueryArgs().GetUintOrZero("limit")
	decisions, err := s.games.Decisions(ctx, id, limit)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writeJSON(rc, fasthttp.StatusOK, chessdto.DecisionsResponse{Decisions: chesspresenter.ToDTODecisions(decisions)})
}

func (s *Server) handleGameBoard(rc *fasthttp.RequestCtx, id string) {
	ctx, cancel := requestContext()
	defer cancel()
	game, err := s.games.Status(ctx, id)
	if err != nil {
		s.fail(rc, err)
		return
	}
	png, err := s.games.RenderGame(ctx, game)
	if err != nil {
		s.fail(rc, err)
		return
	}
	writePNG(rc, png)
}

func (s *Server) handleRender(rc *fasthttp.RequestCtx) {
	fen := string(rc.QueryArgs().Peek("fen"))
	if strings.TrimSpace(fen) == "" {
		fen = board.StartFEN
	}
	ctx, cancel := requestContext()
	defer cancel()
	png, err := s.games.RenderFEN(ctx, fen, rc.QueryArgs().GetBool("flip"))
	if err != nil {
		s.fail(rc, err)
		return
	}
	writePNG(rc, png)
}

// botMove converts a result for the wire, with explanation when asked.
func (s *Server) botMove(res *corechess.MoveResult, explain bool) *chessdto.BotMove {
	out := chesspresenter.ToDTOMove(res)
	if out == nil || !explain {
		return out
	}
	expl, err := s.games.Explain(*res)
	if err != nil {
		s.logger.Warn("explain_failed", zap.String("move", res.UCI), zap.Error(err))
		return out
	}
	out.Explanation = chesspresenter.ToDTOExplanation(expl)
	return out
}

// fail maps service errors to status codes.
func (s *Server) fail(rc *fasthttp.RequestCtx, err error) {
	status, de := classify(err)
	if status >= fasthttp.StatusInternalServerError {
		s.logger.Error("http_request_failed", zap.String("path", string(rc.Path())), zap.Error(err))
	}
	writeError(rc, status, de)
}

func classify(err error) (int, chessdto.DomainError) {
	de := chessdto.DomainError{Message: err.Error()}
	switch {
	case errors.Is(err, heuristic.ErrNoLegalMoves):
		de.Code = chessdto.CodeNoLegalMoves
		return fasthttp.StatusConflict, de
	case errors.Is(err, svc.ErrGameFinished):
		de.Code = chessdto.CodeGameFinished
		return fasthttp.StatusConflict, de
	case errors.Is(err, svc.ErrNotPlayersTurn), errors.Is(err, heuristic.ErrWrongSide):
		de.Code = chessdto.CodeWrongSide
		return fasthttp.StatusConflict, de
	case errors.Is(err, sessionstore.ErrSessionNotFound):
		de.Code = chessdto.CodeGameNotFound
		return fasthttp.StatusNotFound, de
	case errors.Is(err, board.ErrIllegalMove):
		de.Code = chessdto.CodeIllegalMove
		return fasthttp.StatusBadRequest, de
	case errors.Is(err, board.ErrInvalidFEN):
		de.Code = chessdto.CodeBadRequest
		return fasthttp.StatusBadRequest, de
	case errors.Is(err, corechess.ErrUnknownPreset):
		de.Code = chessdto.CodeUnknownPreset
		return fasthttp.StatusBadRequest, de
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		de.Code = chessdto.CodeRequestTimeout
		de.Retryable = true
		return fasthttp.StatusServiceUnavailable, de
	}
	de.Code = chessdto.CodeInternal
	return fasthttp.StatusInternalServerError, de
}

func decodeBody(rc *fasthttp.RequestCtx, dst any) bool {
	body := rc.PostBody()
	if len(body) == 0 {
		writeError(rc, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "empty body"})
		return false
	}
	if err := json.Unmarshal(body, dst); err != nil {
		writeError(rc, fasthttp.StatusBadRequest, chessdto.DomainError{Code: chessdto.CodeBadRequest, Message: "invalid json: " + err.Error()})
		return false
	}
	return true
}

func writeJSON(rc *fasthttp.RequestCtx, status int, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		rc.SetStatusCode(fasthttp.StatusInternalServerError)
		rc.SetBodyString(`{"error":{"code":"internal","message":"encode response"}}`)
		return
	}
	rc.SetStatusCode(status)
	rc.SetContentType(contentTypeJSON)
	rc.SetBody(payload)
}

func writeError(rc *fasthttp.RequestCtx, status int, de chessdto.DomainError) {
	writeJSON(rc, status, chessdto.ErrorResponse{Error: de})
}

func writePNG(rc *fasthttp.RequestCtx, png []byte) {
	rc.SetStatusCode(fasthttp.StatusOK)
	rc.SetContentType("image/png")
	rc.SetBody(png)
}
