package sessionstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/park285/cheese-heuristic-bot/internal/domain"
)

// MemoryStore is a development-only store. Games are stored as JSON so
// callers never share mutable state with the store.
type MemoryStore struct {
	mu    sync.RWMutex
	ttl   time.Duration
	now   func() time.Time
	games map[string]memEntry
}

type memEntry struct {
	raw     []byte
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, games: make(map[string]memEntry)}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*domain.BotGame, error) {
	key := sessionKey(id)
	s.mu.RLock()
	e, ok := s.games[key]
	s.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && s.now().After(e.expires)) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	var game domain.BotGame
	if err := json.Unmarshal(e.raw, &game); err != nil {
		return nil, err
	}
	return &game, nil
}

func (s *MemoryStore) Save(_ context.Context, game *domain.BotGame) error {
	if game == nil || strings.TrimSpace(game.ID) == "" {
		return fmt.Errorf("cannot save session without id")
	}
	touch(game)
	raw, err := json.Marshal(game)
	if err != nil {
		return err
	}
	e := memEntry{raw: raw}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.games[sessionKey(game.ID)] = e
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.games, sessionKey(id))
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) Close() error { return nil }
