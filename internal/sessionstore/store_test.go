package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-heuristic-bot/internal/chess/board"
	"github.com/park285/cheese-heuristic-bot/internal/chess/heuristic"
	"github.com/park285/cheese-heuristic-bot/internal/chess/openingbook"
	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

func sampleGame() *domain.BotGame {
	sess := heuristic.NewSession(board.Black, openingbook.Sicilian)
	sess.Turn = 3
	sess.PawnAge = 2
	sess.Moved[board.NewSquare(2, 4)] = true
	return &domain.BotGame{
		ID:       sess.GameID,
		Preset:   "balanced",
		StartFEN: board.StartFEN,
		Moves:    []string{"e2e4", "c7c5", "g1f3"},
		MovesSAN: []string{"e4", "c5", "Nf3"},
		Session:  sess,
	}
}

func exerciseStore(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	game := sampleGame()

	if _, err := s.Load(ctx, game.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load before save: err = %v", err)
	}
	if err := s.Save(ctx, game); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if game.CreatedAt.IsZero() || game.UpdatedAt.IsZero() {
		t.Fatalf("timestamps not set")
	}

	got, err := s.Load(ctx, game.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != game.ID || len(got.Moves) != 3 || got.MovesSAN[2] != "Nf3" {
		t.Fatalf("loaded game = %+v", got)
	}
	sess := got.Session
	if sess == nil || sess.Side != board.Black || sess.Variant != openingbook.Sicilian || sess.Turn != 3 || sess.PawnAge != 2 {
		t.Fatalf("loaded session = %+v", sess)
	}
	if !sess.HasMoved(board.NewSquare(2, 4)) {
		t.Fatalf("moved set lost: %v", sess.Moved)
	}

	if err := s.Save(ctx, &domain.BotGame{}); err == nil {
		t.Fatalf("expected error saving game without id")
	}
	if err := s.Delete(ctx, game.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Load(ctx, game.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("Load after delete: err = %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(time.Hour))
}

func TestMemoryStoreExpires(t *testing.T) {
	s := NewMemoryStore(time.Minute)
	now := time.Now()
	s.now = func() time.Time { return now }
	game := sampleGame()
	if err := s.Save(context.Background(), game); err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := s.Load(context.Background(), game.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session still loaded: %v", err)
	}
}

func TestRedisStore(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()

	s, err := NewRedisStore(context.Background(), fmt.Sprintf("redis://%s/0", mr.Addr()), time.Hour)
	if err != nil {
		t.Fatalf("NewRedisStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)

	game := sampleGame()
	if err := s.Save(context.Background(), game); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !mr.Exists("bot:session:" + game.ID) {
		t.Fatalf("key not written")
	}
	if ttl := mr.TTL("bot:session:" + game.ID); ttl != time.Hour {
		t.Fatalf("ttl = %v", ttl)
	}
	mr.FastForward(2 * time.Hour)
	if _, err := s.Load(context.Background(), game.ID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expired session still loaded: %v", err)
	}
}

func TestRedisStoreFromClient(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	defer mr.Close()
	s := NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), 0)
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStore(t *testing.T) {
	s, err := NewBadgerStore("", time.Hour)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	defer s.Close()
	exerciseStore(t, s)
}

func TestBadgerStoreOnDisk(t *testing.T) {
	dir := t.TempDir()
	s, err := NewBadgerStore(dir, 0)
	if err != nil {
		t.Fatalf("NewBadgerStore: %v", err)
	}
	game := sampleGame()
	if err := s.Save(context.Background(), game); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	s, err = NewBadgerStore(dir, 0)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.Load(context.Background(), game.ID); err != nil {
		t.Fatalf("Load after reopen: %v", err)
	}
}

func TestParseRedisURL(t *testing.T) {
	opts, err := ParseRedisURL("redis://:secret@cache.local/2")
	if err != nil {
		t.Fatalf("ParseRedisURL: %v", err)
	}
	if opts.Addr != "cache.local:6379" || opts.Password != "secret" || opts.DB != 2 {
		t.Fatalf("opts = %+v", opts)
	}
	if _, err := ParseRedisURL("http://cache.local"); err == nil {
		t.Fatalf("expected scheme error")
	}
}
