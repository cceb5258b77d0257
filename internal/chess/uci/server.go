// Package uci speaks the UCI protocol on a line stream so chess GUIs can drive
// the heuristic picker.
package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/zap"

	corechess "github.com/park285/cheese-heuristic-bot/internal/chess"
	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/obslog"
)

const (
	engineName   = "Cheese Heuristic"
	engineAuthor = "park285"
	nullMove     = "0000"
)

// Picker chooses one move for a position under a preset.
type Picker interface {
	Pick(ctx context.Context, preset string, req corechess.MoveRequest) (corechess.MoveResult, error)
}

type Server struct {
	picker Picker
	logger *zap.Logger

	mu      sync.Mutex
	out     io.Writer
	preset  string
	pos     Position
	session *heuristic.Session
}

func NewServer(picker Picker, preset string, logger *zap.Logger) *Server {
	if strings.TrimSpace(preset) == "" {
		preset = "balanced"
	}
	return &Server{
		picker: picker,
		logger: obslog.Or(logger),
		preset: preset,
		pos:    Position{FEN: board.StartFEN},
	}
}

// Run reads commands from in until "quit", EOF or ctx ends.
func (s *Server) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.out = out
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return <-readErr
			}
			quit, err := s.handle(ctx, line)
			if err != nil {
				s.logger.Warn("uci_command_failed", zap.String("line", line), zap.Error(err))
				s.send("info string error %s", err)
			}
			if quit {
				return nil
			}
		}
	}
}

func (s *Server) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]
	switch cmd {
	case "uci":
		s.send("id name %s", engineName)
		s.send("id author %s", engineAuthor)
		s.send("option name Preset type combo default %s%s", s.preset, presetVars())
		s.send("uciok")
	case "isready":
		s.send("readyok")
	case "ucinewgame":
		s.mu.Lock()
		s.session = nil
		s.pos = Position{FEN: board.StartFEN}
		s.mu.Unlock()
	case "setoption":
		return false, s.setOption(args)
	case "position":
		pos, err := parsePosition(args)
		if err != nil {
			return false, err
		}
		s.mu.Lock()
		s.pos = pos
		s.mu.Unlock()
	case "go":
		return false, s.search(ctx, args)
	case "stop", "ponderhit", "debug", "register":
	case "quit":
		return true, nil
	default:
		return false, fmt.Errorf("unknown command %q", cmd)
	}
	return false, nil
}

func (s *Server) setOption(args []string) error {
	name, value, err := parseSetOption(args)
	if err != nil {
		return err
	}
	if !strings.EqualFold(name, "Preset") {
		return fmt.Errorf("unknown option %q", name)
	}
	p, err := corechess.GetPreset(value)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.preset = p.Name
	s.session = nil
	s.mu.Unlock()
	return nil
}

func (s *Server) search(ctx context.Context, args []string) error {
	limits, err := parseGo(args)
	if err != nil {
		return err
	}
	s.mu.Lock()
	pos, preset, sess := s.pos, s.preset, s.session
	s.mu.Unlock()

	g, err := board.FromHistory(pos.FEN, pos.Moves)
	if err != nil {
		s.send("bestmove %s", nullMove)
		return err
	}
	side := g.SideToMove()
	if sess != nil && sess.Side != side {
		sess = nil
	}

	res, err := s.picker.Pick(ctx, preset, corechess.MoveRequest{
		FEN:     pos.FEN,
		Moves:   pos.Moves,
		Session: sess,
		Budget:  limits.Budget(side),
	})
	if errors.Is(err, heuristic.ErrNoLegalMoves) {
		s.send("bestmove %s", nullMove)
		return nil
	}
	if err != nil {
		s.send("bestmove %s", nullMove)
		return err
	}

	s.mu.Lock()
	s.session = res.Session
	s.mu.Unlock()

	score := 0
	if res.Trace != nil {
		score = res.Trace.Total()
	}
	s.send("%s", formatInfo(score, res.Candidates, res.UCI))
	s.send("info string %s", res.Outcome)
	s.send("bestmove %s", res.UCI)
	return nil
}

func (s *Server) send(format string, args ...any) {
	if s.out == nil {
		return
	}
	if _, err := fmt.Fprintf(s.out, format+"\n", args...); err != nil {
		s.logger.Warn("uci_write_failed", zap.Error(err))
	}
}

func presetVars() string {
	var sb strings.Builder
	for _, name := range corechess.PresetNames() {
		sb.WriteString(" var ")
		sb.WriteString(name)
	}
	return sb.String()
}
